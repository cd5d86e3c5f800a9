package migration

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestMigrator(t *testing.T, content string, latest int) (*Migrator, *MockDatabase, *MockStepRunner, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "pigeonplanner.db")
	require.NoError(t, os.WriteFile(dbPath, []byte(content), 0644))

	ctrl := gomock.NewController(t)
	db := NewMockDatabase(ctrl)
	steps := NewMockStepRunner(ctrl)
	db.EXPECT().Path().Return(dbPath).AnyTimes()
	steps.EXPECT().LatestVersion().Return(latest).AnyTimes()

	m, err := NewMigrator(db, steps)
	require.NoError(t, err)
	m.backupManager.freeSpace = nil
	return m, db, steps, dbPath
}

func TestNewMigrator_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := NewMockDatabase(ctrl)
	steps := NewMockStepRunner(ctrl)

	_, err := NewMigrator(nil, steps)
	assert.Error(t, err)
	_, err = NewMigrator(db, nil)
	assert.Error(t, err)

	db.EXPECT().Path().Return("")
	_, err = NewMigrator(db, steps)
	assert.Error(t, err)
}

func TestMigrator_Run_UpToDate(t *testing.T) {
	m, db, _, dbPath := newTestMigrator(t, "v2", 2)
	db.EXPECT().Version().Return(2, nil)

	result, err := m.Run()
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, 2, result.ToVersion)
	assert.NoFileExists(t, dbPath+BackupSuffix)
}

func TestMigrator_Run_TooNew(t *testing.T) {
	m, db, _, dbPath := newTestMigrator(t, "v9", 2)
	db.EXPECT().Version().Return(9, nil)

	_, err := m.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatabaseTooNew)

	var tooNew *DatabaseTooNewError
	require.True(t, errors.As(err, &tooNew))
	assert.Equal(t, 9, tooNew.Version)
	assert.Equal(t, 2, tooNew.Latest)
	assert.NoFileExists(t, dbPath+BackupSuffix)
}

func TestMigrator_Run_Success(t *testing.T) {
	m, db, steps, dbPath := newTestMigrator(t, "v0", 2)
	gomock.InOrder(
		db.EXPECT().Version().Return(0, nil),
		steps.EXPECT().RunStep(1).Return(nil),
		db.EXPECT().SetVersion(1).Return(nil),
		steps.EXPECT().RunStep(2).Return(nil),
		db.EXPECT().SetVersion(2).Return(nil),
	)

	result, err := m.Run()
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, 0, result.FromVersion)
	assert.Equal(t, 2, result.ToVersion)
	assert.Equal(t, dbPath+BackupSuffix, result.BackupPath)
	assert.NoFileExists(t, dbPath+BackupSuffix)
}

func TestMigrator_Run_FailureRestoresBackup(t *testing.T) {
	m, db, steps, dbPath := newTestMigrator(t, "original", 3)
	stepErr := errors.New("no such column: speed")

	gomock.InOrder(
		db.EXPECT().Version().Return(1, nil),
		steps.EXPECT().RunStep(2).DoAndReturn(func(int) error {
			return os.WriteFile(dbPath, []byte("migrated to 2"), 0644)
		}),
		db.EXPECT().SetVersion(2).Return(nil),
		steps.EXPECT().RunStep(3).DoAndReturn(func(int) error {
			_ = os.WriteFile(dbPath, []byte("half way to 3"), 0644)
			return stepErr
		}),
		db.EXPECT().Detach().Return(nil),
		db.EXPECT().Attach().Return(nil),
	)

	_, err := m.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMigrationFailed)
	assert.ErrorIs(t, err, stepErr)
	assert.NotErrorIs(t, err, ErrRollbackFailed)

	var migErr *MigrationError
	require.True(t, errors.As(err, &migErr))
	assert.Equal(t, 1, migErr.FromVersion)
	assert.Equal(t, 3, migErr.FailedVersion)

	content, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, "original", string(content))
	assert.NoFileExists(t, dbPath+BackupSuffix)
}

func TestMigrator_Run_PanicRestoresBackup(t *testing.T) {
	m, db, steps, dbPath := newTestMigrator(t, "original", 2)
	gomock.InOrder(
		db.EXPECT().Version().Return(1, nil),
		steps.EXPECT().RunStep(2).DoAndReturn(func(int) error {
			_ = os.WriteFile(dbPath, []byte("half way to 2"), 0644)
			var renames map[string]string
			renames["active"] = "alive"
			return nil
		}),
		db.EXPECT().Detach().Return(nil),
		db.EXPECT().Attach().Return(nil),
	)

	var err error
	require.NotPanics(t, func() { _, err = m.Run() })
	assert.ErrorIs(t, err, ErrMigrationFailed)
	assert.ErrorIs(t, err, ErrStepPanicked)

	var migErr *MigrationError
	require.True(t, errors.As(err, &migErr))
	assert.Equal(t, 2, migErr.FailedVersion)

	content, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, "original", string(content))
	assert.NoFileExists(t, dbPath+BackupSuffix)
}

func TestMigrator_Run_SetVersionFailure(t *testing.T) {
	m, db, steps, dbPath := newTestMigrator(t, "original", 1)
	gomock.InOrder(
		db.EXPECT().Version().Return(0, nil),
		steps.EXPECT().RunStep(1).Return(nil),
		db.EXPECT().SetVersion(1).Return(errors.New("disk I/O error")),
		db.EXPECT().Detach().Return(nil),
		db.EXPECT().Attach().Return(nil),
	)

	_, err := m.Run()
	assert.ErrorIs(t, err, ErrMigrationFailed)
	assert.NoFileExists(t, dbPath+BackupSuffix)
}

func TestMigrator_Run_RestoreFailureKeepsBackup(t *testing.T) {
	m, db, steps, dbPath := newTestMigrator(t, "original", 1)
	gomock.InOrder(
		db.EXPECT().Version().Return(0, nil),
		steps.EXPECT().RunStep(1).Return(errors.New("step failed")),
		db.EXPECT().Detach().Return(errors.New("database is locked")),
	)

	_, err := m.Run()
	assert.ErrorIs(t, err, ErrMigrationFailed)
	assert.ErrorIs(t, err, ErrRollbackFailed)
	assert.FileExists(t, dbPath+BackupSuffix)
}

func TestMigrator_Recover(t *testing.T) {
	m, db, _, dbPath := newTestMigrator(t, "half migrated", 2)

	recovered, err := m.Recover()
	require.NoError(t, err)
	assert.False(t, recovered)

	require.NoError(t, os.WriteFile(dbPath+BackupSuffix, []byte("before migration"), 0644))
	gomock.InOrder(
		db.EXPECT().Detach().Return(nil),
		db.EXPECT().Attach().Return(nil),
	)

	recovered, err = m.Recover()
	require.NoError(t, err)
	assert.True(t, recovered)

	content, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, "before migration", string(content))
	assert.NoFileExists(t, dbPath+BackupSuffix)
}
