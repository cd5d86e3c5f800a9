package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationFailed 迁移失败错误
	ErrMigrationFailed = errors.New("migration failed")
	// ErrRollbackFailed 回滚失败错误
	ErrRollbackFailed = errors.New("rollback failed")
	// ErrNoBackup 无备份可回滚错误
	ErrNoBackup = errors.New("no backup available for rollback")
	// ErrDatabaseTooNew 数据库由更新的程序版本创建
	ErrDatabaseTooNew = errors.New("database is too new")
	// ErrStepPanicked 迁移步骤发生 panic
	ErrStepPanicked = errors.New("migration step panicked")
	// ErrInsufficientSpace 剩余空间不足以创建备份
	ErrInsufficientSpace = errors.New("insufficient disk space for backup")
)

// MigrationError 某个迁移步骤失败
// 返回此错误前备份已复制回数据库文件；RestoreErr 不为空表示恢复也失败了，此时备份文件被保留
type MigrationError struct {
	FromVersion   int
	FailedVersion int
	BackupPath    string
	Err           error
	RestoreErr    error
}

func (e *MigrationError) Error() string {
	msg := fmt.Sprintf("migration from version %d failed at version %d: %v", e.FromVersion, e.FailedVersion, e.Err)
	if e.RestoreErr != nil {
		msg += fmt.Sprintf(" (restore from %s also failed: %v)", e.BackupPath, e.RestoreErr)
	}
	return msg
}

func (e *MigrationError) Unwrap() []error {
	if e.RestoreErr != nil {
		return []error{e.Err, e.RestoreErr}
	}
	return []error{e.Err}
}

func (e *MigrationError) Is(target error) bool {
	if target == ErrMigrationFailed {
		return true
	}
	return target == ErrRollbackFailed && e.RestoreErr != nil
}

// DatabaseTooNewError 数据库版本高于程序所知的最新版本，调用方不应再读写该数据库
type DatabaseTooNewError struct {
	Version int
	Latest  int
}

func (e *DatabaseTooNewError) Error() string {
	return fmt.Sprintf("database version %d is newer than the latest known version %d", e.Version, e.Latest)
}

func (e *DatabaseTooNewError) Is(target error) bool {
	return target == ErrDatabaseTooNew
}
