// Package database 管理 Pigeon Planner 的 SQLite 数据库会话
// 会话在进程生命周期内独占唯一的数据库连接，提供结构操作原语，并驱动结构版本收敛
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/pigeonplanner/pigeonplanner/src/database/schema"
)

// Session 数据库会话，不可在多个 goroutine 间共享
type Session struct {
	path     string
	registry *schema.Registry
	db       *sqlx.DB
	isNew    bool
	logger   *logrus.Entry
}

// Open 打开数据库；文件原先不存在时直接建出最新版本的结构
func Open(path string, registry *schema.Registry) (*Session, error) {
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if registry == nil {
		return nil, fmt.Errorf("schema registry cannot be nil")
	}

	s := &Session{
		path:     path,
		registry: registry,
		logger:   logrus.WithField("db_path", path),
	}
	_, err := os.Stat(path)
	s.isNew = os.IsNotExist(err)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, newOpenError(path, err)
	}
	if err := s.connect(); err != nil {
		return nil, newOpenError(path, err)
	}

	if s.isNew {
		latest := registry.Latest()
		s.logger.WithField("version", latest).Info("creating new database")
		if err := registry.CreateNew(s, latest); err != nil {
			s.Close()
			// 建库失败时删除半成品，下次启动仍会识别为新数据库
			_ = os.Remove(path)
			return nil, fmt.Errorf("failed to create new database: %w", err)
		}
	}
	return s, nil
}

func (s *Session) connect() error {
	db, err := sqlx.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	// 临时表和 pragma 都是连接级别的，只能有一个连接
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	// 整文件备份要求数据库只有一个文件
	if _, err := db.Exec("PRAGMA journal_mode=DELETE"); err != nil {
		db.Close()
		return err
	}
	s.db = db
	return nil
}

// Close 关闭连接
func (s *Session) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path 数据库文件路径
func (s *Session) Path() string {
	return s.path
}

// IsNew 打开前文件是否不存在
func (s *Session) IsNew() bool {
	return s.isNew
}

// Registry 会话使用的结构版本集合
func (s *Session) Registry() *schema.Registry {
	return s.registry
}

// DB 返回底层连接，供业务查询使用
func (s *Session) DB() *sqlx.DB {
	return s.db
}

func (s *Session) conn() (*sqlx.DB, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.db, nil
}
