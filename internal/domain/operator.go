package domain

import (
	"context"
	"errors"
)

// Operator is an authenticated back-office user acting on payouts. Token
// issuance happens outside this service; we only verify and carry identity.
type Operator struct {
	ID    string
	Email string
	Role  Role
}

// Role represents an operator's access level
type Role string

const (
	// RoleAdmin can decide payouts and view everything
	RoleAdmin Role = "admin"

	// RoleSupport can view wallets and payouts but cannot decide them
	RoleSupport Role = "support"
)

var validRoles = map[Role]bool{
	RoleAdmin:   true,
	RoleSupport: true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanDecidePayouts checks if the role may approve or reject payout requests
func (r Role) CanDecidePayouts() bool {
	return r == RoleAdmin
}

type operatorContextKey struct{}

// WithOperator stores the authenticated operator in the context.
func WithOperator(ctx context.Context, op *Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, op)
}

// OperatorFromContext retrieves the authenticated operator, if any.
func OperatorFromContext(ctx context.Context) (*Operator, bool) {
	op, ok := ctx.Value(operatorContextKey{}).(*Operator)
	return op, ok
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
