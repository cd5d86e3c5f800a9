package database

import (
	"fmt"
)

// DatabaseVersion 读取 PRAGMA user_version，未设置时为 0
func (s *Session) DatabaseVersion() (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var version int
	if err := db.Get(&version, "PRAGMA user_version"); err != nil {
		return 0, fmt.Errorf("failed to read database version: %w", err)
	}
	return version, nil
}

// SetDatabaseVersion 写入 PRAGMA user_version
func (s *Session) SetDatabaseVersion(version int) error {
	if version < 0 {
		return fmt.Errorf("invalid database version %d", version)
	}
	s.logger.WithField("version", version).Debug("setting database version")
	// pragma 不支持参数绑定，version 是整数
	return s.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
}

// Optimize 压缩数据库文件，适合在正常退出时调用
func (s *Session) Optimize() error {
	s.logger.Debug("optimizing database")
	return s.Exec("VACUUM")
}

// CheckIntegrity 执行 PRAGMA integrity_check，没有问题时返回 ["ok"]
func (s *Session) CheckIntegrity() ([]string, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var rows []string
	if err := db.Select(&rows, "PRAGMA integrity_check"); err != nil {
		return nil, fmt.Errorf("failed to check database integrity: %w", err)
	}
	return rows, nil
}

// IntegrityOK 判断 CheckIntegrity 的结果是否表示没有问题
func IntegrityOK(rows []string) bool {
	return len(rows) == 1 && rows[0] == "ok"
}
