package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newBucketRepoWithMock(t *testing.T) (*BucketRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &BucketRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestAppendValuesUpserts(t *testing.T) {
	repo, mock, done := newBucketRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO temperature_buckets").
		WithArgs("ilmtal", "2024-03-01", []byte("[612.5,640]"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.AppendValues(context.Background(), "ilmtal", "2024-03-01", []float64{612.5, 640}); err != nil {
		t.Fatalf("AppendValues() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppendValuesSkipsEmptyInput(t *testing.T) {
	repo, mock, done := newBucketRepoWithMock(t)
	defer done()

	if err := repo.AppendValues(context.Background(), "ilmtal", "2024-03-01", nil); err != nil {
		t.Fatalf("AppendValues() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetReturnsValues(t *testing.T) {
	repo, mock, done := newBucketRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT temps FROM temperature_buckets").
		WithArgs("ilmtal", "2024-03-01").
		WillReturnRows(sqlmock.NewRows([]string{"temps"}).AddRow([]byte("[612.5, 640, 800]")))

	values, err := repo.Get(context.Background(), "ilmtal", "2024-03-01")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(values) != 3 || values[2] != 800 {
		t.Fatalf("values = %v", values)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetMissingBucketIsEmptyNotError(t *testing.T) {
	repo, mock, done := newBucketRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT temps FROM temperature_buckets").
		WithArgs("ilmtal", "2024-03-09").
		WillReturnError(sql.ErrNoRows)

	values, err := repo.Get(context.Background(), "ilmtal", "2024-03-09")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if values != nil {
		t.Fatalf("values = %v, want nil", values)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
