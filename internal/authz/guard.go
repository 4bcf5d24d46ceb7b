// Package authz centralizes role, status and ownership decisions. Every
// check is a pure function over a resolved user; callers log the returned
// error, which carries the actor and resource context for auditing.
package authz

import (
	"errors"
	"fmt"

	"github.com/avaldes/remarket-api/internal/models"
)

var (
	ErrAccountInactive  = errors.New("account is not active")
	ErrInsufficientRole = errors.New("insufficient role")
	ErrForbidden        = errors.New("forbidden")
)

// DenialError wraps a guard sentinel with the context an audit log needs.
type DenialError struct {
	UserID  int64
	OwnerID int64
	Require string
	Err     error
}

func (e *DenialError) Error() string {
	if e.OwnerID != 0 {
		return fmt.Sprintf("user %d denied (%s, resource owner %d): %v", e.UserID, e.Require, e.OwnerID, e.Err)
	}
	return fmt.Sprintf("user %d denied (%s): %v", e.UserID, e.Require, e.Err)
}

func (e *DenialError) Unwrap() error {
	return e.Err
}

// RequireActive passes only users with ACTIVE status.
func RequireActive(user *models.User) error {
	if user.IsActive() {
		return nil
	}
	return &DenialError{UserID: user.ID, Require: "status " + models.StatusActive, Err: ErrAccountInactive}
}

// RequireAdmin passes only users with the ADMIN role.
func RequireAdmin(user *models.User) error {
	if user.IsAdmin() {
		return nil
	}
	return &DenialError{UserID: user.ID, Require: "role " + models.RoleAdmin, Err: ErrInsufficientRole}
}

// RequireOwnerOrAdmin passes the resource owner and any admin.
func RequireOwnerOrAdmin(ownerID int64, user *models.User) error {
	if user.IsAdmin() || user.ID == ownerID {
		return nil
	}
	return &DenialError{UserID: user.ID, OwnerID: ownerID, Require: "ownership", Err: ErrForbidden}
}
