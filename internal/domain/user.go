package domain

import (
	"errors"
	"time"
)

// User represents a system identity able to call the API.
type User struct {
	ID             string
	Email          string
	Name           string
	HashedPassword string
	Role           Role
	// ClientID links a client-role user to its Client row. Empty for staff.
	ClientID  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role represents a user's access level.
type Role string

const (
	// RoleAdmin has full access, including rate publication and account management.
	RoleAdmin Role = "admin"

	// RoleOperator can execute buy/sell operations on any client's behalf.
	RoleOperator Role = "operator"

	// RoleClient can only operate on accounts it owns.
	RoleClient Role = "client"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleClient:   true,
}

// IsValid checks if the role is a known role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// IsStaff reports whether the role may act on accounts it does not own.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleOperator
}

// CanPublishRates checks if the role can publish exchange-rate snapshots.
func (r Role) CanPublishRates() bool {
	return r == RoleAdmin
}

// CanManageAccounts checks if the role can deactivate or block accounts.
func (r Role) CanManageAccounts() bool {
	return r == RoleAdmin
}

// AuthorizationPolicy decides whether an actor may operate on an account.
// Keeping the decision here keeps role logic out of the balance math.
type AuthorizationPolicy struct{}

// CanOperate reports whether actor may debit or credit the given account.
func (AuthorizationPolicy) CanOperate(actor *User, account *Account) bool {
	if actor == nil || !actor.Active {
		return false
	}

	if actor.Role.IsStaff() {
		return true
	}

	return actor.ClientID != "" && actor.ClientID == account.ClientID
}

// Authentication errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRole        = errors.New("invalid role")
)
