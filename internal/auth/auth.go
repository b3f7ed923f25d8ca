// Package auth defines the authorization contract consumed by the POS
// core. Authentication and role lookup live outside this repository; the
// core only needs the current user's id and role.
package auth

import "context"

// Role is the numeric role id handed out by the external auth service.
type Role int

const (
	RoleAdmin      Role = 1
	RoleCashier    Role = 2
	RoleServer     Role = 3
	RoleBar        Role = 4
	RoleKitchen    Role = 5
	RoleOperations Role = 6
)

// String returns the role name used in logs and CLI flags.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleCashier:
		return "cajero"
	case RoleServer:
		return "mesero"
	case RoleBar:
		return "bar"
	case RoleKitchen:
		return "cocina"
	case RoleOperations:
		return "operaciones"
	}
	return "desconocido"
}

// CanApproveCancellations reports whether the role may approve or reject
// cancellation requests.
func (r Role) CanApproveCancellations() bool {
	return r == RoleAdmin || r == RoleOperations
}

// CanRequestCancellations reports whether the role may open cancellation
// requests.
func (r Role) CanRequestCancellations() bool {
	return r == RoleAdmin || r == RoleServer || r == RoleOperations
}

// User is the identity attached to every mutating operation.
type User struct {
	ID   string
	Role Role
}

// Authorizer resolves the user behind the current terminal action.
type Authorizer interface {
	CurrentUser(ctx context.Context) (User, error)
}

// Static is an Authorizer that always returns the same user. The CLI
// builds one from its --user/--role flags; tests build one per scenario.
type Static struct {
	User User
}

// CurrentUser implements Authorizer.
func (s Static) CurrentUser(context.Context) (User, error) {
	return s.User, nil
}
