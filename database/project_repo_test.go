package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-backend/errs"
)

type countingNotifier struct {
	collections []string
}

func (n *countingNotifier) Notify(collection string) {
	n.collections = append(n.collections, collection)
}

func setupProjectRepo(t *testing.T) (*ProjectRepo, sqlmock.Sqlmock, *countingNotifier, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		t.Fatalf("failed to open gorm over sqlmock: %v", err)
	}

	notifier := &countingNotifier{}
	repo := NewProjectRepo(gormDB, notifier)
	return repo, mock, notifier, func() { db.Close() }
}

func projectRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "github_url", "cover_url", "tools", "published", "featured", "created_at"})
}

func TestFindPublishedFiltersAndOrders(t *testing.T) {
	repo, mock, _, cleanup := setupProjectRepo(t)
	defer cleanup()

	newer := uuid.New()
	older := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "projects" WHERE published = \$1 ORDER BY created_at DESC`).
		WithArgs(true).
		WillReturnRows(projectRows().
			AddRow(newer, "newer", nil, nil, nil, "{}", true, false, time.Now()).
			AddRow(older, "older", nil, nil, nil, "{}", true, false, time.Now().Add(-time.Hour)))

	projects, err := repo.FindPublished(context.Background(), 0)
	if err != nil {
		t.Fatalf("FindPublished returned error: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("projects = %d; want 2", len(projects))
	}
	if projects[0].ID != newer {
		t.Errorf("first project = %v; want the newer row first", projects[0].ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindPublishedAppliesLimit(t *testing.T) {
	repo, mock, _, cleanup := setupProjectRepo(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "projects" WHERE published = \$1 ORDER BY created_at DESC LIMIT`).
		WillReturnRows(projectRows())

	if _, err := repo.FindPublished(context.Background(), 3); err != nil {
		t.Fatalf("FindPublished returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindFeaturedQueriesBothFlags(t *testing.T) {
	repo, mock, _, cleanup := setupProjectRepo(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "projects" WHERE published = \$1 AND featured = \$2 ORDER BY created_at DESC`).
		WithArgs(true, true).
		WillReturnRows(projectRows())

	if _, err := repo.FindFeatured(context.Background()); err != nil {
		t.Fatalf("FindFeatured returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindByIDNotFound(t *testing.T) {
	repo, mock, _, cleanup := setupProjectRepo(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "projects" WHERE id = \$1`).
		WillReturnRows(projectRows())

	_, err := repo.FindByID(context.Background(), uuid.New())
	if !errs.IsNotFound(err) {
		t.Errorf("FindByID error = %v; want not found", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateFieldsTouchesOnlyGivenColumns(t *testing.T) {
	repo, mock, notifier, cleanup := setupProjectRepo(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectExec(`UPDATE "projects" SET "featured"=\$1 WHERE id = \$2`).
		WithArgs(true, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SELECT pg_notify`).
		WithArgs(ProjectsCollection).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateFields(context.Background(), id, map[string]any{"featured": true})
	if err != nil {
		t.Fatalf("UpdateFields returned error: %v", err)
	}
	if len(notifier.collections) != 1 || notifier.collections[0] != ProjectsCollection {
		t.Errorf("notifications = %v; want one for %q", notifier.collections, ProjectsCollection)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateFieldsZeroRowsIsNotFound(t *testing.T) {
	repo, mock, notifier, cleanup := setupProjectRepo(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE "projects" SET "published"=\$1 WHERE id = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateFields(context.Background(), uuid.New(), map[string]any{"published": false})
	if !errs.IsNotFound(err) {
		t.Errorf("UpdateFields error = %v; want not found", err)
	}
	if len(notifier.collections) != 0 {
		t.Errorf("notifications = %v; want none when nothing changed", notifier.collections)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteNotifies(t *testing.T) {
	repo, mock, notifier, cleanup := setupProjectRepo(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM "projects" WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SELECT pg_notify`).
		WithArgs(ProjectsCollection).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(notifier.collections) != 1 {
		t.Errorf("notifications = %v; want one", notifier.collections)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteZeroRowsIsNotFound(t *testing.T) {
	repo, mock, notifier, cleanup := setupProjectRepo(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM "projects" WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), uuid.New())
	if !errs.IsNotFound(err) {
		t.Errorf("Delete error = %v; want not found", err)
	}
	if len(notifier.collections) != 0 {
		t.Errorf("notifications = %v; want none", notifier.collections)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
