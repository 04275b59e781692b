package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/feed"
	"github.com/rpupo63/portfolio-backend/models"
)

type ProjectRepo struct {
	db       *gorm.DB
	notifier feed.Notifier
}

func NewProjectRepo(db *gorm.DB, notifier feed.Notifier) *ProjectRepo {
	return &ProjectRepo{db: db, notifier: notifier}
}

// FindPublished returns published projects, newest first. limit <= 0 means
// no limit. Unpublished rows never appear in the result.
func (r *ProjectRepo) FindPublished(ctx context.Context, limit int) ([]models.Project, error) {
	var projects []models.Project
	q := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&projects).Error
	return projects, err
}

// FindFeatured returns published projects flagged as featured, newest first.
// The caller applies the fallback policy when the result is empty.
func (r *ProjectRepo) FindFeatured(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Where("published = ? AND featured = ?", true, true).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// FindByID returns a project by its ID
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("project")
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Add inserts a new project. The database assigns ID and CreatedAt; both are
// populated on the passed struct after a successful insert.
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return err
	}
	r.notifyChanged(ctx)
	return nil
}

// UpdateFields applies a targeted partial update: only the given columns are
// touched. Returns NotFound when no row matches the ID.
func (r *ProjectRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("project")
	}
	r.notifyChanged(ctx)
	return nil
}

// Delete removes a project permanently. Returns NotFound when no row matches.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("project")
	}
	r.notifyChanged(ctx)
	return nil
}

// notifyChanged publishes a payload-free change event, in-process and via
// pg_notify for other server instances. Both paths are best-effort; a missed
// notification only delays the next refetch.
func (r *ProjectRepo) notifyChanged(ctx context.Context) {
	if r.notifier != nil {
		r.notifier.Notify(ProjectsCollection)
	}
	r.db.WithContext(ctx).Exec(`SELECT pg_notify(?, '')`, ProjectsCollection)
}
