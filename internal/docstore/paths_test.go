package docstore

import "testing"

func TestPathResolution(t *testing.T) {
	tests := []struct {
		name string
		got  Path
		want string
	}{
		{"base path", BasePath("my-app"), "artifacts/my-app/public/data"},
		{"base path default tenant", BasePath(""), "artifacts/trade-plan-v0/public/data"},
		{"users collection", UsersPath("my-app"), "artifacts/my-app/public/data/users"},
		{"user profile", UserProfilePath("my-app", "42"), "artifacts/my-app/public/data/users/42"},
		{"user plans", UserPlansPath("my-app", "42"), "artifacts/my-app/public/data/users/42/plans"},
		{"one plan", PlanPath("my-app", "42", "p1"), "artifacts/my-app/public/data/users/42/plans/p1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.String() != tt.want {
				t.Errorf("got %q, want %q", tt.got.String(), tt.want)
			}
		})
	}
}

// Same inputs must always resolve to the same path, and different users
// must never share a plan subtree.
func TestPathDeterminismAndIsolation(t *testing.T) {
	a := PlanPath("app", "alice", "p1")
	b := PlanPath("app", "alice", "p1")
	if a.String() != b.String() {
		t.Errorf("same inputs resolved differently: %q vs %q", a, b)
	}

	alice := UserPlansPath("app", "alice").String()
	bob := UserPlansPath("app", "bob").String()
	if alice == bob {
		t.Errorf("plan collections for different users collide: %q", alice)
	}
}

func TestPathChildDoesNotAliasParent(t *testing.T) {
	base := BasePath("app")
	c1 := base.Child("users")
	c2 := base.Child("trades")

	if c1.String() != "artifacts/app/public/data/users" {
		t.Errorf("unexpected child path: %q", c1)
	}
	// Appending to one child must not corrupt a sibling built from the
	// same parent.
	if c2.String() != "artifacts/app/public/data/trades" {
		t.Errorf("sibling path corrupted: %q", c2)
	}
}
