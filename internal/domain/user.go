package domain

import (
	"time"

	"github.com/google/uuid"
)

// Title is the honorific stored on a user profile.
type Title string

// Supported titles. The empty title is valid.
const (
	TitleNone Title = ""
	TitleMr   Title = "mr"
	TitleMiss Title = "miss"
	TitleDr   Title = "dr"
)

// Gender is the optional gender stored on a user profile.
type Gender string

// Supported genders.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Location is the optional postal location of a user.
type Location struct {
	Street   string `json:"street,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Country  string `json:"country,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// IsZero reports whether no location field is set.
func (l Location) IsZero() bool {
	return l == Location{}
}

// User is a member of the network. Email is globally unique; IdempotencyKey
// is unique when present.
type User struct {
	ID             uuid.UUID
	IdempotencyKey string
	Title          Title
	FirstName      string
	LastName       string
	Gender         Gender
	Email          string
	DateOfBirth    *time.Time
	RegisterDate   time.Time
	Phone          string
	Picture        string
	Location       *Location
	// PasswordHash is a bcrypt hash; empty for users created without a password.
	PasswordHash string
}

// NewUser returns a user with a fresh identifier registered at now.
func NewUser(firstName, lastName, email string, now time.Time) *User {
	return &User{
		ID:           uuid.New(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		RegisterDate: now.UTC(),
	}
}

// HasPassword reports whether the user can be authenticated with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
