// Package identity implements the identity pillar: users, roles,
// permissions, sessions, and the per-agent service accounts.
package identity

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists is returned when registering a duplicate email.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned when an email is not registered.
	ErrUserNotFound = errors.New("user not found")

	// ErrSessionInvalid is returned for unknown or expired sessions.
	ErrSessionInvalid = errors.New("session invalid or expired")

	// ErrNotInitialized is returned when an operation runs before
	// Initialize or after Shutdown.
	ErrNotInitialized = errors.New("identity gate not initialized")
)

// Permission is a single grantable capability.
type Permission string

const (
	PermReadKnowledge      Permission = "read_knowledge"
	PermWriteKnowledge     Permission = "write_knowledge"
	PermExecuteWorkflow    Permission = "execute_workflow"
	PermManageAgents       Permission = "manage_agents"
	PermAccessPayments     Permission = "access_payments"
	PermViewAnalytics      Permission = "view_analytics"
	PermManageOrganization Permission = "manage_organization"
	PermAdminAccess        Permission = "admin_access"
)

// AllPermissions lists every permission in the catalog.
var AllPermissions = []Permission{
	PermReadKnowledge,
	PermWriteKnowledge,
	PermExecuteWorkflow,
	PermManageAgents,
	PermAccessPayments,
	PermViewAnalytics,
	PermManageOrganization,
	PermAdminAccess,
}

// Role is a fixed set of permissions. A user holds exactly one role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
	RoleAgent  Role = "agent"
)

var rolePermissions = map[Role][]Permission{
	RoleAdmin:  AllPermissions,
	RoleUser:   {PermReadKnowledge, PermWriteKnowledge, PermExecuteWorkflow, PermViewAnalytics},
	RoleViewer: {PermReadKnowledge, PermViewAnalytics},
	RoleAgent:  {PermReadKnowledge, PermExecuteWorkflow},
}

// Permissions returns the role's permission set.
func (r Role) Permissions() []Permission {
	return rolePermissions[r]
}

// Has reports whether the role grants the permission. Pure set
// membership, no side effects.
func (r Role) Has(p Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

// Valid reports whether the role is part of the fixed catalog.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// User is an authenticated principal.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ServiceAccount is a machine identity backing one core agent.
type ServiceAccount struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Agent  string `json:"agent"`
	Active bool   `json:"active"`
}

// Session is a server-side login session.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
