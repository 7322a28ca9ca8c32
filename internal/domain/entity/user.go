package entity

import (
	"time"
)

// User represents a registered member of the network
type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Username     string    `bson:"username" json:"username"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Bio          *string   `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfileImage *string   `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// Handle returns the @-prefixed username shown next to posts and comments.
func (u User) Handle() string {
	return "@" + u.Username
}

// Follow links a follower to the user they follow.
type Follow struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	FollowerID  string    `bson:"follower_id" json:"followerId"`
	FollowingID string    `bson:"following_id" json:"followingId"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

// ProfileStats aggregates the counters displayed on a profile page.
type ProfileStats struct {
	Reviews     int64 `json:"reviews"`
	Likes       int64 `json:"likes"`
	Collections int64 `json:"collections"`
	Saved       int64 `json:"saved"`
	Comments    int64 `json:"comments"`
	Followers   int64 `json:"followers"`
	Following   int64 `json:"following"`
}

// Registration is what a new member fills in on sign-up.
// Username is stored without the leading @.
type Registration struct {
	Email        string
	Password     string
	Username     string
	Name         string
	ProfileImage *string
}

// ProfileUpdate carries the profile fields a member may edit. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name         *string `json:"name,omitempty"`
	Username     *string `json:"username,omitempty"`
	Email        *string `json:"email,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.Username == nil && u.Email == nil && u.Bio == nil && u.ProfileImage == nil
}
