package models

import "time"

// UserProfile is the persisted record of a platform user who has opened
// the app. CreatedAt is written once on first sight; LastSeenAt is
// refreshed on every session.
type UserProfile struct {
	SocialID      string    `json:"socialId"`
	Username      string    `json:"username,omitempty"`
	DisplayName   string    `json:"displayName,omitempty"`
	AvatarURL     string    `json:"avatarUrl,omitempty"`
	WalletAddress string    `json:"walletAddress,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
	LastSeenAt    time.Time `json:"lastSeenAt"`
}
