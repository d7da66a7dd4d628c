package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func newAppointment() *models.Appointment {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	return &models.Appointment{
		SalonID:          1,
		ProviderID:       7,
		ServiceID:        3,
		AppointmentStart: start,
		AppointmentEnd:   start.Add(30 * time.Minute),
		Price:            80,
		Status:           string(domain.StatusScheduled),
		ManageToken:      "tok",
	}
}

var (
	lockSQL   = regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1, $2)`)
	countSQL  = regexp.QuoteMeta(`SELECT count(*) FROM "appointments"`)
	insertSQL = regexp.QuoteMeta(`INSERT INTO "appointments"`)
)

func TestInsertIfNoConflict_Inserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentGormRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(lockSQL).
		WithArgs(int64(7), int64(20260310)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(countSQL).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(insertSQL).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	ap := newAppointment()
	require.NoError(t, repo.InsertIfNoConflict(context.Background(), ap))
	assert.Equal(t, uint(42), ap.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertIfNoConflict_OverlapRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentGormRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(lockSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(countSQL).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.InsertIfNoConflict(context.Background(), newAppointment())
	assert.ErrorIs(t, err, domain.ErrTimeConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertIfNoConflict_ExclusionViolationIsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentGormRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(lockSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(countSQL).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(insertSQL).
		WillReturnError(&pgconn.PgError{Code: "23P01", ConstraintName: "appointments_no_overlap"})
	mock.ExpectRollback()

	err := repo.InsertIfNoConflict(context.Background(), newAppointment())
	assert.ErrorIs(t, err, domain.ErrTimeConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertIfNoConflict_OtherErrorsAreWrapped(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentGormRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(lockSQL).WillReturnError(&pgconn.PgError{Code: "57014"})
	mock.ExpectRollback()

	err := repo.InsertIfNoConflict(context.Background(), newAppointment())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrTimeConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_CompareAndSet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentGormRepository(db)
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "appointments" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), 5, domain.StatusScheduled, domain.StatusCanceled, at))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "appointments" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(context.Background(), 5, domain.StatusScheduled, domain.StatusCanceled, at)
	assert.ErrorIs(t, err, domain.ErrStatusChanged)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentGormRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "appointments"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentGormRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "appointments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDayKey(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	assert.Equal(t, int32(20261231), dayKey(time.Date(2026, 12, 31, 23, 30, 0, 0, loc)))
	assert.Equal(t, int32(20260101), dayKey(time.Date(2026, 1, 1, 0, 0, 0, 0, loc)))
}
