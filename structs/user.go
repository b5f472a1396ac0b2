package structs

import (
	"slices"
	"time"
)

// Member-set fields of a user.
const (
	FieldFollowers = "followers"
	FieldFollowing = "following"
)

// DefaultProfilePic is assigned at registration.
const DefaultProfilePic = "https://source.unsplash.com/100x100/?face"

// User is the public profile document.
type User struct {
	UID        string    `json:"uid" bson:"_id"`
	Name       string    `json:"name" bson:"name"`
	Username   string    `json:"username" bson:"username"`
	Email      string    `json:"email" bson:"email"`
	DOB        string    `json:"dob" bson:"dob"`
	ProfilePic string    `json:"profilePic" bson:"profilePic"`
	Followers  []string  `json:"followers" bson:"followers"`
	Following  []string  `json:"following" bson:"following"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// Profile is the subset of a user shown next to content.
type Profile struct {
	UID        string `json:"uid"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic"`
}

// Profile returns the display subset of u.
func (u *User) Profile() *Profile {
	return &Profile{UID: u.UID, Name: u.Name, Username: u.Username, ProfilePic: u.ProfilePic}
}

// Members returns the member set named by field.
func (u *User) Members(field string) []string {
	switch field {
	case FieldFollowers:
		return u.Followers
	case FieldFollowing:
		return u.Following
	}
	return nil
}

// SetMembers replaces the member set named by field.
func (u *User) SetMembers(field string, members []string) {
	switch field {
	case FieldFollowers:
		u.Followers = members
	case FieldFollowing:
		u.Following = members
	}
}

// IsFollowing reports whether u follows uid.
func (u *User) IsFollowing(uid string) bool {
	return slices.Contains(u.Following, uid)
}

// Clone returns a deep copy.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Followers = slices.Clone(u.Followers)
	c.Following = slices.Clone(u.Following)
	return &c
}

// IsUserField reports whether field is a user member set.
func IsUserField(field string) bool {
	return field == FieldFollowers || field == FieldFollowing
}

// Account is the identity provider record behind a user.
type Account struct {
	UID          string    `json:"uid" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// RegisterBody is the registration form.
type RegisterBody struct {
	Name            string `json:"name" validate:"required,min=6"`
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	DOB             string `json:"dob" validate:"required,minage=16"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

// LoginBody is the sign-in form.
type LoginBody struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session describes the signed-in user.
type Session struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}
