package entity

import "time"

type User struct {
	ID              string     `json:"id" bson:"_id"`
	Username        string     `json:"username" bson:"username"`
	Email           string     `json:"email" bson:"email"`
	CanonicalEmail  string     `json:"canonical_email" bson:"canonical_email"`
	PasswordHash    string     `json:"password_hash" bson:"password_hash"`
	Verified        bool       `json:"verified" bson:"verified"`
	Theme           string     `json:"theme,omitempty" bson:"theme,omitempty"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty" bson:"verified_at,omitempty"`
	PasswordResetAt *time.Time `json:"password_reset_at,omitempty" bson:"password_reset_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Username        *string
	PasswordHash    *string
	Theme           *string
	PasswordResetAt *time.Time
	UpdatedAt       time.Time
}

// Apply copies the set fields of u onto user.
func (u UserUpdate) Apply(user *User) {
	if u.Username != nil {
		user.Username = *u.Username
	}
	if u.PasswordHash != nil {
		user.PasswordHash = *u.PasswordHash
	}
	if u.Theme != nil {
		user.Theme = *u.Theme
	}
	if u.PasswordResetAt != nil {
		at := *u.PasswordResetAt
		user.PasswordResetAt = &at
	}
	updatedAt := u.UpdatedAt
	user.UpdatedAt = &updatedAt
}

type Session struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
