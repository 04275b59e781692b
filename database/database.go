package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/portfolio-backend/feed"
)

// ProjectsCollection is the change feed channel for project mutations.
const ProjectsCollection = "projects"

type Database struct {
	projectRepo *ProjectRepo
	userRepo    *UserRepo
	roleRepo    *RoleRepo
}

// New initializes a new Database struct with each repository using a shared
// GORM database instance. Mutating repositories publish change events to the
// given notifier.
func New(db *gorm.DB, notifier feed.Notifier) Database {
	return Database{
		projectRepo: NewProjectRepo(db, notifier),
		userRepo:    NewUserRepo(db),
		roleRepo:    NewRoleRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) RoleRepo() *RoleRepo {
	return d.roleRepo
}

// UseReplica routes reads to a replica DSN via dbresolver. Writes stay on
// the primary.
func UseReplica(db *gorm.DB, replicaDSN string) error {
	return db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: []gorm.Dialector{postgres.Open(replicaDSN)},
		Policy:   dbresolver.RandomPolicy{},
	}))
}

// Migrate applies the idempotent schema. Schema drift (such as an older
// projects table without the featured column) is handled here at startup,
// never in the request path.
func Migrate(db *gorm.DB) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,
		`CREATE TABLE IF NOT EXISTS users (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			email text UNIQUE NOT NULL,
			password_hash text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_roles (
			user_id uuid PRIMARY KEY,
			role text NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			title text NOT NULL,
			description text,
			github_url text,
			cover_url text,
			tools text[],
			published boolean NOT NULL DEFAULT true,
			created_at timestamptz NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`ALTER TABLE projects ADD COLUMN IF NOT EXISTS featured boolean NOT NULL DEFAULT false`,
		`CREATE INDEX IF NOT EXISTS projects_created_at_idx ON projects (created_at DESC)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
