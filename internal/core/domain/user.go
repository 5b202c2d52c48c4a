package domain

import "time"

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// SeededRoles are created at startup when absent. Role names are unique.
var SeededRoles = []string{RoleAdmin, RoleUser}

// User models a registered identity. Username and Email hold the same
// value; the username is immutable after creation.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	SecurityStamp string    `json:"-"`
	Roles         []string  `json:"roles"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasRole reports whether the user holds the named role. Role checks are a
// literal membership test: Admin does not imply User.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}
