package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"backoffice/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentRepo_BusySlots(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAppointmentRepo(mock)
	orgID := uuid.New()
	from := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	s1 := from.Add(10 * time.Hour)
	s2 := from.Add(14 * time.Hour)

	mock.ExpectQuery(`SELECT starts_at, ends_at FROM busy_slots\(\$1, \$2, \$3\)`).
		WithArgs(orgID, from, to).
		WillReturnRows(pgxmock.NewRows([]string{"starts_at", "ends_at"}).
			AddRow(s1, s1.Add(time.Hour)).
			AddRow(s2, s2.Add(30*time.Minute)))

	busy, err := repo.BusySlots(context.Background(), orgID, from, to)
	require.NoError(t, err)
	assert.Equal(t, []models.BusyInterval{
		{Start: s1, End: s1.Add(time.Hour)},
		{Start: s2, End: s2.Add(30 * time.Minute)},
	}, busy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_CancelExpiredPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAppointmentRepo(mock)
	orgID := uuid.New()
	before := time.Now()

	mock.ExpectExec(`UPDATE appointments`).
		WithArgs(models.AppointmentCancelled, orgID, models.AppointmentPending, before).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := repo.CancelExpiredPending(context.Background(), orgID, before)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestWorkingHoursRepo_Replace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWorkingHoursRepo(mock)
	orgID := uuid.New()
	hours := []*models.WorkingHours{
		{ID: uuid.New(), Weekday: time.Monday, OpensAt: "09:00", ClosesAt: "13:00"},
		{ID: uuid.New(), Weekday: time.Monday, OpensAt: "14:00", ClosesAt: "18:00"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM working_hours WHERE organization_id = \$1`).
		WithArgs(orgID).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	for _, h := range hours {
		mock.ExpectExec(`INSERT INTO working_hours`).
			WithArgs(h.ID, orgID, int(h.Weekday), h.OpensAt, h.ClosesAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	err = repo.Replace(context.Background(), orgID, hours)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkingHoursRepo_ReplaceRollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWorkingHoursRepo(mock)
	orgID := uuid.New()
	h := &models.WorkingHours{ID: uuid.New(), Weekday: time.Friday, OpensAt: "10:00", ClosesAt: "16:00"}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM working_hours`).WithArgs(orgID).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO working_hours`).
		WithArgs(h.ID, orgID, int(h.Weekday), h.OpensAt, h.ClosesAt).
		WillReturnError(errors.New("invalid input syntax for type time"))
	mock.ExpectRollback()

	err = repo.Replace(context.Background(), orgID, []*models.WorkingHours{h})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModuleRepo_SetEnabledUnknownKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewModuleRepo(mock)
	orgID := uuid.New()
	keys := []string{models.ModuleFinance, "payroll"}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM organization_modules`).WithArgs(orgID).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO organization_modules`).
		WithArgs(orgID, keys).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectRollback()

	err = repo.SetEnabled(context.Background(), orgID, keys)
	assert.ErrorContains(t, err, "unknown module")
	assert.ErrorIs(t, err, ErrUnknownReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModuleRepo_SetEnabledRepeatedKeys(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewModuleRepo(mock)
	orgID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM organization_modules`).WithArgs(orgID).WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`INSERT INTO organization_modules`).
		WithArgs(orgID, []string{models.ModuleFinance}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err = repo.SetEnabled(context.Background(), orgID, []string{models.ModuleFinance, models.ModuleFinance})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
