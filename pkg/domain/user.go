package domain

import (
	"encoding/json"
	"fmt"
)

// Role is the closed set of roles a signed-in user can hold.
// A guest is represented by the absence of a User, never by a Role value.
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleAdmin
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RoleAdmin}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// ParseRole maps the wire name of a role to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("domain: unknown role %q", s)
}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("domain: cannot marshal invalid role %d", uint8(r))
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("domain: role: %w", err)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User is a registered diner or administrator.
type User struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Role         Role   `json:"role"`
	ProfileImage string `json:"profileImage,omitempty"`
	IsVerified   bool   `json:"isVerified,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserRef is a booking's owner. The server sends either a bare id or a
// populated user object; both decode into UserRef.
type UserRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (u *UserRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*u = UserRef{ID: id}
		return nil
	}
	type plain UserRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("domain: user ref: %w", err)
	}
	*u = UserRef(p)
	return nil
}
