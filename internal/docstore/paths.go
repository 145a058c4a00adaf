package docstore

import "tradeplan/internal/config"

// Path layout
//
//	artifacts/<appID>/public/data/users/<userID>                user profile
//	artifacts/<appID>/public/data/users/<userID>/plans          plan collection
//	artifacts/<appID>/public/data/users/<userID>/plans/<planID> one plan
//
// Plans live under per-user subtrees. A single shared plan collection would
// let any session enumerate or overwrite any other user's records, so the
// isolation is enforced here, structurally, rather than in application
// logic.

// BasePath returns the fixed hierarchical prefix for an application's data
// partition. An empty appID falls back to the default partition.
func BasePath(appID string) Path {
	if appID == "" {
		appID = config.DefaultAppID
	}
	return Path{"artifacts", appID, "public", "data"}
}

// UsersPath returns the path to the user collection.
func UsersPath(appID string) Path {
	return BasePath(appID).Child("users")
}

// UserProfilePath returns the path to one user's profile document.
func UserProfilePath(appID, userID string) Path {
	return UsersPath(appID).Child(userID)
}

// UserPlansPath returns the path to the plan collection owned by userID.
func UserPlansPath(appID, userID string) Path {
	return UserProfilePath(appID, userID).Child("plans")
}

// PlanPath returns the path to one specific plan record.
func PlanPath(appID, userID, planID string) Path {
	return UserPlansPath(appID, userID).Child(planID)
}
