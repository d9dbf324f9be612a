package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// RoleAdmin is the role that unlocks event management.
const RoleAdmin = "ROLE_ADMIN"

// Role is either a bare role name ("ROLE_USER") or an object ({"name":"ROLE_USER"}).
// The backend has emitted both shapes; Name is the single way to read it.
type Role struct {
	name   string
	object bool
}

// RoleName builds the string form of a role.
func RoleName(name string) Role { return Role{name: name} }

// RoleObject builds the object form of a role.
func RoleObject(name string) Role { return Role{name: name, object: true} }

func (r Role) Name() string { return r.name }

func (r Role) IsObject() bool { return r.object }

func (r Role) String() string { return r.name }

func (r Role) MarshalJSON() ([]byte, error) {
	if r.object {
		return json.Marshal(struct {
			Name string `json:"name"`
		}{r.name})
	}
	return json.Marshal(r.name)
}

func (r *Role) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = Role{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RoleName(s)
		return nil
	case len(data) > 0 && data[0] == '{':
		var o struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &o); err != nil {
			return err
		}
		*r = RoleObject(o.Name)
		return nil
	default:
		return fmt.Errorf("role must be a string or an object with a name, got %s", data)
	}
}

// User is the cached profile of the signed-in account.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Roles    []Role    `json:"roles,omitempty"`
}

func (u *User) HasRole(name string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r.Name() == name {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }
