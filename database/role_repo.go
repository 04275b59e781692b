package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-backend/models"
)

type RoleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

// FindRole fetches at most one role row for the given user. Zero rows is not
// an error; the role string comes back empty.
func (r *RoleRepo) FindRole(ctx context.Context, userID uuid.UUID) (string, error) {
	var row models.UserRole
	err := r.db.WithContext(ctx).Limit(1).Find(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.Role, nil
}
