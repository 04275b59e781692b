package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/models"
)

// Privilege is the three-valued admin state. Presentation code consumes it
// directly; privileged controls stay hidden while the value is Unknown.
type Privilege int

const (
	PrivilegeUnknown Privilege = iota
	PrivilegeNotAdmin
	PrivilegeAdmin
)

func (p Privilege) String() string {
	switch p {
	case PrivilegeAdmin:
		return "admin"
	case PrivilegeNotAdmin:
		return "not_admin"
	default:
		return "unknown"
	}
}

// IsAdmin reports whether the privilege has resolved to admin. Unknown is
// not admin.
func (p Privilege) IsAdmin() bool {
	return p == PrivilegeAdmin
}

// RoleStore is the one-row role lookup the resolver needs.
type RoleStore interface {
	FindRole(ctx context.Context, userID uuid.UUID) (string, error)
}

// RoleResolver derives the viewer's privilege from the role table. Failures
// fail closed: absence of proof of the admin role means not admin, so a
// transient backend error can never grant privilege.
type RoleResolver struct {
	roles  RoleStore
	logger zerolog.Logger
}

func NewRoleResolver(roles RoleStore) *RoleResolver {
	return &RoleResolver{
		roles:  roles,
		logger: log.With().Str("serviceName", "roleResolver").Logger(),
	}
}

// Resolve returns the privilege for an identity. A nil identity short-
// circuits without querying.
func (r *RoleResolver) Resolve(ctx context.Context, identity *Identity) Privilege {
	if identity == nil {
		return PrivilegeNotAdmin
	}

	role, err := r.roles.FindRole(ctx, identity.UserID)
	if err != nil {
		r.logger.Warn().Err(err).Str("userID", identity.UserID.String()).Msg("role lookup failed, treating as non-admin")
		return PrivilegeNotAdmin
	}

	if role == models.RoleAdmin {
		return PrivilegeAdmin
	}
	return PrivilegeNotAdmin
}
