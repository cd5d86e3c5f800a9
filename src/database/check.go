package database

import (
	"errors"

	"github.com/pigeonplanner/pigeonplanner/src/database/schema"
	"github.com/pigeonplanner/pigeonplanner/src/pkg/migration"
)

// Status 启动时数据库检查的结果
type Status int

const (
	// StatusOK 数据库已是最新版本
	StatusOK Status = iota
	// StatusChanged 数据库已迁移到最新版本
	StatusChanged
	// StatusTooNew 数据库由更新的程序版本创建
	StatusTooNew
	// StatusError 打开或迁移失败
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusChanged:
		return "changed"
	case StatusTooNew:
		return "too new"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// sessionDatabase 将 Session 适配为 migration.Database
type sessionDatabase struct {
	s *Session
}

func (d sessionDatabase) Path() string                 { return d.s.path }
func (d sessionDatabase) Version() (int, error)        { return d.s.DatabaseVersion() }
func (d sessionDatabase) SetVersion(version int) error { return d.s.SetDatabaseVersion(version) }
func (d sessionDatabase) Detach() error                { return d.s.Close() }
func (d sessionDatabase) Attach() error                { return d.s.connect() }

// registryRunner 将结构版本集合适配为 migration.StepRunner
type registryRunner struct {
	s *Session
}

func (r registryRunner) LatestVersion() int {
	return r.s.registry.Latest()
}

func (r registryRunner) RunStep(version int) error {
	step, err := r.s.registry.Step(version)
	if err != nil {
		return err
	}
	return step.Apply(r.s)
}

// Migrator 返回驱动本会话结构收敛的迁移器
func (s *Session) Migrator() (*migration.Migrator, error) {
	return migration.NewMigrator(sessionDatabase{s}, registryRunner{s})
}

// Migrate 将数据库迁移到最新版本并返回详细结果
func (s *Session) Migrate() (*migration.Result, error) {
	m, err := s.Migrator()
	if err != nil {
		return nil, err
	}
	return m.Run()
}

// CheckSchema 将数据库迁移到最新版本，返回是否发生了迁移
// 版本过新时返回 *migration.DatabaseTooNewError 且不做任何写入；
// 迁移失败时备份已恢复，返回 *migration.MigrationError
func (s *Session) CheckSchema() (bool, error) {
	result, err := s.Migrate()
	if err != nil {
		return false, err
	}
	return result.Changed, nil
}

// CheckVersion 检查数据库版本是否高于程序所知的最新版本
func (s *Session) CheckVersion() error {
	m, err := s.Migrator()
	if err != nil {
		return err
	}
	_, err = m.CheckVersion()
	return err
}

// Recover 用中断迁移留下的备份恢复数据库
func (s *Session) Recover() (bool, error) {
	m, err := s.Migrator()
	if err != nil {
		return false, err
	}
	return m.Recover()
}

// Setup 打开数据库并使其结构收敛到最新版本
// 返回 StatusTooNew 时会话仍处于打开状态，调用方只应关闭它
func Setup(path string, registry *schema.Registry) (*Session, Status, error) {
	s, err := Open(path, registry)
	if err != nil {
		return nil, StatusError, err
	}

	if err := s.CheckVersion(); err != nil {
		if errors.Is(err, migration.ErrDatabaseTooNew) {
			s.logger.WithError(err).Warn("database is too new for this program version")
			return s, StatusTooNew, err
		}
		return s, StatusError, err
	}

	changed, err := s.CheckSchema()
	if err != nil {
		return s, StatusError, err
	}
	if changed {
		return s, StatusChanged, nil
	}
	return s, StatusOK, nil
}
