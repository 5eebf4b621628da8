package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-chi/jwtauth/v5"
)

// Role enum
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
	RoleEmployee   Role = "employee"
	RoleUnknown    Role = "unknown"
)

func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleAccountant):
		return RoleAccountant
	case string(RoleEmployee):
		return RoleEmployee
	default:
		return RoleUnknown
	}
}

// Capabilities is the single authoritative capability set for a session,
// resolved once from the token claims. Call sites check these flags instead
// of re-deriving rights from the role string.
type Capabilities struct {
	CanVoid           bool
	CanProcessPayroll bool
	CanViewHistory    bool
}

// Session identifies the caller and their resolved capabilities. UserID is
// also the durable draft slot key: one in-progress workflow per session.
type Session struct {
	UserID string
	Role   Role
	Capabilities
}

// Resolve maps a role onto its capability set. Unknown roles get nothing.
func Resolve(role Role) Capabilities {
	switch role {
	case RoleAdmin:
		return Capabilities{CanVoid: true, CanProcessPayroll: true, CanViewHistory: true}
	case RoleAccountant:
		return Capabilities{CanProcessPayroll: true, CanViewHistory: true}
	case RoleEmployee:
		return Capabilities{CanViewHistory: true}
	default:
		return Capabilities{}
	}
}

// FromContext extracts the session from verified JWT claims.
func FromContext(ctx context.Context) (Session, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Session{}, fmt.Errorf("user_id claim is missing or invalid")
	}

	roleStr, _ := claims["role"].(string)
	role := ParseRole(roleStr)

	return Session{
		UserID:       userID,
		Role:         role,
		Capabilities: Resolve(role),
	}, nil
}

// ErrInvalidToken is returned when the request carries no usable access token.
var ErrInvalidToken = errors.New("invalid or missing token")
