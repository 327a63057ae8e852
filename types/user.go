package types

import "time"

// User represents an account in the playground.
type User struct {
	// ID is the unique identifier of the user, a UUID string.
	ID string `json:"_id" bson:"_id" db:"id"`

	// Email is the login name of the user. Unique across accounts and
	// compared exactly as stored.
	Email string `json:"email" bson:"email" db:"email"`

	// FullName is the display name entered at sign up.
	FullName string `json:"fullName" bson:"fullName" db:"full_name"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" bson:"password" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"date" bson:"date" db:"created_at"`
}
