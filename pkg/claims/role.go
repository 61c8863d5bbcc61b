package claims

import "fmt"

// Role is the closed set of account kinds. The zero value is not a valid role.
type Role int

const (
	RoleUnknown Role = iota
	RoleUser
	RoleOrganizer
	RoleAdmin
)

func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "organizer":
		return RoleOrganizer, nil
	case "admin":
		return RoleAdmin, nil
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleOrganizer:
		return "organizer"
	case RoleAdmin:
		return "admin"
	}
	return ""
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleOrganizer || r == RoleAdmin
}

// LoginPath is the page a signed-out visitor of this role is sent to.
func (r Role) LoginPath() string {
	switch r {
	case RoleAdmin:
		return "/admin-login"
	case RoleOrganizer:
		return "/organizer/login"
	}
	return "/login"
}

func (r Role) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleOrganizer:
		return "/organizer/dashboard"
	case RoleUser:
		return "/user/dashboard"
	}
	return "/"
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
