package models

import "github.com/google/uuid"

// RoleAdmin is the single privileged role value
const RoleAdmin = "admin"

// UserRole attaches a single authorization attribute to an identity.
// One row per user, seeded out-of-band; this service only reads it.
type UserRole struct {
	UserID uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;primaryKey;not null"`
	Role   string    `json:"role" db:"role" gorm:"type:text;not null"`
}

// TableName keeps the table name the role seeding scripts use.
func (UserRole) TableName() string {
	return "user_roles"
}
