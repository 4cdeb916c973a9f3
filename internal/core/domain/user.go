package domain

import "time"

// Password policy applied on registration and profile updates.
const (
	MinPasswordLength     = 6
	ForbiddenPasswordWord = "password"
)

// MaxAvatarBytes caps the size of an uploaded avatar image.
const MaxAvatarBytes = 1_000_000

// SessionToken is a single issued bearer token held in a user's token set.
type SessionToken struct {
	Token string `json:"-"`
}

// User models an account holder. The JSON form is the public projection:
// the password hash, the token set and the avatar blob never leave the service.
type User struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Age          int            `json:"age"`
	PasswordHash string         `json:"-"`
	Avatar       []byte         `json:"-"`
	Tokens       []SessionToken `json:"-"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// HasToken reports whether token is part of the user's live token set.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t.Token == token {
			return true
		}
	}
	return false
}

// UserChanges carries the fields of a partial profile update. Nil fields are
// left untouched by the repository.
type UserChanges struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Age          *int
}

// Empty reports whether no field is set.
func (c UserChanges) Empty() bool {
	return c.Name == nil && c.Email == nil && c.PasswordHash == nil && c.Age == nil
}
