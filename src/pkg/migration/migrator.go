package migration

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
)

// Migrator 数据库迁移器
type Migrator struct {
	db            Database
	steps         StepRunner
	backupManager *BackupManager
	logger        *logrus.Entry
}

// NewMigrator 创建迁移器
func NewMigrator(db Database, steps StepRunner) (*Migrator, error) {
	if db == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	if steps == nil {
		return nil, fmt.Errorf("step runner cannot be nil")
	}
	if db.Path() == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	return &Migrator{
		db:            db,
		steps:         steps,
		backupManager: NewBackupManager(db.Path()),
		logger: logrus.WithFields(logrus.Fields{
			"db_path":        db.Path(),
			"latest_version": steps.LatestVersion(),
		}),
	}, nil
}

// BackupManager 返回迁移器使用的备份管理器
func (m *Migrator) BackupManager() *BackupManager {
	return m.backupManager
}

// CheckVersion 读取当前版本，高于最新版本时返回 *DatabaseTooNewError
func (m *Migrator) CheckVersion() (int, error) {
	current, err := m.db.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read database version: %w", err)
	}
	if latest := m.steps.LatestVersion(); current > latest {
		return current, &DatabaseTooNewError{Version: current, Latest: latest}
	}
	return current, nil
}

// Run 执行迁移，直到数据库版本等于最新版本
func (m *Migrator) Run() (*Result, error) {
	start := time.Now()
	latest := m.steps.LatestVersion()

	current, err := m.CheckVersion()
	if err != nil {
		return nil, err
	}

	result := &Result{FromVersion: current, ToVersion: current}
	if current == latest {
		m.logger.WithField("version", current).Debug("database schema is up to date")
		return result, nil
	}

	backupPath, err := m.backupManager.CreateBackup()
	if err != nil {
		return nil, fmt.Errorf("failed to create backup: %w", err)
	}
	result.BackupPath = backupPath
	m.logger.WithFields(logrus.Fields{
		"from_version": current,
		"backup_path":  backupPath,
	}).Info("starting database migration")

	for version := current + 1; version <= latest; version++ {
		m.logger.WithField("version", version).Debug("running migration step")
		err := m.runStep(version)
		if err == nil {
			err = m.db.SetVersion(version)
		}
		if err != nil {
			return result, m.rollback(backupPath, current, version, err)
		}
		result.ToVersion = version
	}

	if err := m.backupManager.RemoveBackup(backupPath); err != nil {
		m.logger.WithError(err).Warn("failed to remove backup after migration")
	}

	result.Changed = true
	result.Duration = time.Since(start)
	m.logger.WithFields(logrus.Fields{
		"from_version": result.FromVersion,
		"to_version":   result.ToVersion,
		"duration":     result.Duration,
	}).Info("database migration completed")

	return result, nil
}

// runStep 执行单个迁移步骤，步骤中的 panic 转为错误，保证能走到回滚
func (m *Migrator) runStep(version int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.WithField("stack", string(debug.Stack())).Errorf("panic in migration step %d", version)
			err = fmt.Errorf("%w: panic in migration step %d: %v", ErrStepPanicked, version, r)
		}
	}()
	return m.steps.RunStep(version)
}

// rollback 用备份整体替换数据库文件，并返回包装后的 *MigrationError
func (m *Migrator) rollback(backupPath string, from, failed int, cause error) error {
	migErr := &MigrationError{
		FromVersion:   from,
		FailedVersion: failed,
		BackupPath:    backupPath,
		Err:           cause,
	}
	m.logger.WithError(cause).WithField("version", failed).Error("migration failed, attempting rollback")

	if backupPath == "" {
		migErr.RestoreErr = ErrNoBackup
		return migErr
	}

	if err := m.restore(backupPath); err != nil {
		m.logger.WithError(err).Error("rollback failed, backup kept for manual recovery")
		migErr.RestoreErr = err
		return migErr
	}

	if err := m.backupManager.RemoveBackup(backupPath); err != nil {
		m.logger.WithError(err).Warn("failed to remove backup after rollback")
	}
	m.logger.Info("rollback completed successfully")
	return migErr
}

func (m *Migrator) restore(backupPath string) error {
	if err := m.db.Detach(); err != nil {
		return fmt.Errorf("failed to close database before restore: %w", err)
	}
	restoreErr := m.backupManager.RestoreBackup(backupPath)
	if err := m.db.Attach(); err != nil {
		return errors.Join(restoreErr, fmt.Errorf("failed to reopen database: %w", err))
	}
	return restoreErr
}

// Recover 检查并恢复中断的迁移
// 存在上次留下的 _bckp 文件时，用它替换数据库文件并删除备份
func (m *Migrator) Recover() (bool, error) {
	if !m.backupManager.HasLeftover() {
		return false, nil
	}

	backupPath := m.backupManager.BackupPath()
	m.logger.WithField("backup_path", backupPath).Warn("detected incomplete migration, attempting recovery")

	if err := m.restore(backupPath); err != nil {
		return true, fmt.Errorf("%w: %v", ErrRollbackFailed, err)
	}
	if err := m.backupManager.RemoveBackup(backupPath); err != nil {
		return true, err
	}
	m.logger.Info("database recovered from backup")
	return true, nil
}
