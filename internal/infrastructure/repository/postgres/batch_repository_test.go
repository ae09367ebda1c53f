package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/pyrolyze/chartrack/internal/core/domain"
)

func newBatchRepoWithMock(t *testing.T) (*BatchRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &BatchRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestCreateAssignsID(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO batches").
		WithArgs("ilmtal", "2024-03-01", 1250.0, 12.5, nil, now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	batch := &domain.Batch{
		Site:          "ilmtal",
		ProductionDay: "2024-03-01",
		WeightKg:      1250,
		MoisturePct:   12.5,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.Create(context.Background(), batch); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if batch.ID != 7 {
		t.Fatalf("id = %d, want 7", batch.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, site, production_day").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	if !domain.IsKind(err, domain.ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListActiveScansBatches(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "site", "production_day", "weight_kg", "moisture_pct", "retired_at", "created_at", "updated_at"}).
		AddRow(int64(1), "ilmtal", "2024-03-01", 1250.0, 12.5, nil, now, now).
		AddRow(int64(2), "schwand", "2024-03-02", 800.0, 9.0, nil, now, now)
	mock.ExpectQuery("SELECT id, site, production_day").WillReturnRows(rows)

	batches, err := repo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(batches))
	}
	if batches[0].Site != "ilmtal" || batches[1].Site != "schwand" {
		t.Fatalf("batches = %+v", batches)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateAttributesNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE batches").
		WithArgs(int64(99), 100.0, 5.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateAttributes(context.Background(), 99, 100, 5)
	if !domain.IsKind(err, domain.ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRetireNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newBatchRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE batches").
		WithArgs(int64(99), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Retire(context.Background(), 99)
	if !domain.IsKind(err, domain.ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
