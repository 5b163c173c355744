package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gearguard/gearguard-api/internal/models"
	appErrors "github.com/gearguard/gearguard-api/pkg/errors"
)

func TestUserRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "full_name", "role", "department_id", "is_active", "created_at", "updated_at"}).
		AddRow("u1", "tech@example.com", "Tech One", string(models.RoleTechnician), nil, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, full_name, role, department_id, is_active, created_at, updated_at FROM users WHERE id = $1 LIMIT 1")).
		WithArgs("u1").
		WillReturnRows(rows)

	user, err := repo.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTechnician, user.Role)
	assert.True(t, user.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepositoryLeaderID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT leader_id FROM maintenance_teams WHERE id = $1")).
		WithArgs("team-1").
		WillReturnRows(sqlmock.NewRows([]string{"leader_id"}).AddRow("lead-1"))
	leader, err := repo.LeaderID(context.Background(), "team-1")
	require.NoError(t, err)
	assert.Equal(t, "lead-1", leader)

	mock.ExpectQuery("SELECT leader_id").
		WithArgs("team-2").
		WillReturnError(sql.ErrNoRows)
	leader, err = repo.LeaderID(context.Background(), "team-2")
	require.NoError(t, err)
	assert.Empty(t, leader)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	entry := &models.AuditLog{
		Action:            models.AuditActionCheckOverdue,
		EntityType:        "system",
		AdditionalContext: []byte(`{"overdue_count":2}`),
	}
	require.NoError(t, repo.CreateAuditLog(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaintenanceLogRepositoryCreateAndList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMaintenanceLogRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO maintenance_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	field := "status"
	require.NoError(t, repo.Create(context.Background(), &models.MaintenanceLog{
		RequestID:    "req-1",
		UserID:       "u1",
		Action:       models.LogActionStatusChanged,
		FieldChanged: &field,
	}))

	rows := sqlmock.NewRows([]string{"id", "request_id", "user_id", "action", "field_changed", "old_value", "new_value", "notes", "created_at"}).
		AddRow("log-2", "req-1", "u1", "note_added", nil, nil, nil, "checked", time.Now()).
		AddRow("log-1", "req-1", "u1", "status_changed", "status", "new", "assigned", nil, time.Now().Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM maintenance_logs WHERE request_id = $1 ORDER BY created_at DESC")).
		WithArgs("req-1").
		WillReturnRows(rows)

	logs, err := repo.ListByRequest(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.LogActionNoteAdded, logs[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryCreateBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	require.NoError(t, repo.CreateBatch(context.Background(), nil))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(2, 2))
	batch := []models.Notification{
		{UserID: "u1", Type: models.NotificationRequestOverdue, Title: "Overdue Request", Message: "m"},
		{UserID: "u2", Type: models.NotificationRequestOverdue, Title: "Team Request Overdue", Message: "m"},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), batch))
	assert.NotEmpty(t, batch[0].ID)
	assert.NotEqual(t, batch[0].ID, batch[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreventiveScheduleRepository(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPreventiveScheduleRepository(db)
	cutoff := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "name", "equipment_id", "frequency_type", "frequency_value", "next_due", "equipment_name", "equipment_status", "equipment_default_team_id"}).
		AddRow("sched-1", "Lube press", "eq-1", "monthly", 1, cutoff, "Press", "operational", "team-1")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.is_active = TRUE AND s.next_due <= $1")).
		WithArgs(cutoff).
		WillReturnRows(rows)
	schedules, err := repo.ListDue(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	require.NotNil(t, schedules[0].EquipmentDefaultTeam)
	assert.Equal(t, "team-1", *schedules[0].EquipmentDefaultTeam)

	next := cutoff.AddDate(0, 1, 0)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE preventive_schedules SET next_due = $2, last_generated = $3")).
		WithArgs("sched-1", next, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkGenerated(context.Background(), "sched-1", next, cutoff))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRepositoriesWithoutClient(t *testing.T) {
	cache := NewCacheRepository(nil)
	var out int
	require.ErrorIs(t, cache.Get(context.Background(), "k", &out), appErrors.ErrCacheMiss)
	require.NoError(t, cache.Set(context.Background(), "k", 1, time.Minute))
	require.NoError(t, cache.Delete(context.Background(), "k"))

	locks := NewLockRepository(nil)
	ok, err := locks.Acquire(context.Background(), "gearguard:jobs:x", "t", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, locks.Release(context.Background(), "gearguard:jobs:x", "t"))
}
