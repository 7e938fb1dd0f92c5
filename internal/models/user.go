package models

import "time"

// GlobalRole is a user's system-wide role. It is informational and does not
// by itself grant rights inside any workspace.
type GlobalRole string

const (
	GlobalAdmin  GlobalRole = "admin"
	GlobalMember GlobalRole = "member"
)

// User represents an application user. PasswordHash is never serialized.
type User struct {
	ID           string     `bson:"_id,omitempty" json:"id"`
	Email        string     `bson:"email" json:"email"`
	PasswordHash string     `bson:"passwordHash" json:"-"`
	Role         GlobalRole `bson:"role" json:"role"`
	UserName     string     `bson:"userName,omitempty" json:"userName,omitempty"`
	FirstName    string     `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName     string     `bson:"lastName,omitempty" json:"lastName,omitempty"`
	AvatarURL    string     `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}
