package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/pigeonplanner/pigeonplanner/src/configs"
)

// ErrClosed 会话已关闭
var ErrClosed = errors.New("database session is closed")

// OpenError 无法打开或创建数据库文件，属于运行环境问题（权限、磁盘）
type OpenError struct {
	Path        string
	Err         error
	Diagnostics *configs.PermissionDiagnostics
}

func newOpenError(path string, err error) *OpenError {
	return &OpenError{
		Path:        path,
		Err:         err,
		Diagnostics: configs.DiagnoseFilePermission(path),
	}
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("could not connect to database %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Fields 返回用于日志的诊断字段
func (e *OpenError) Fields() logrus.Fields {
	dir := filepath.Dir(e.Path)
	_, dirErr := os.Stat(dir)
	_, dbErr := os.Stat(e.Path)
	fields := logrus.Fields{
		"db_dir":     dir,
		"db_path":    e.Path,
		"dir_exists": dirErr == nil,
		"db_exists":  dbErr == nil,
	}
	if e.Diagnostics != nil {
		fields["dir_writable"] = e.Diagnostics.DirWritable
		fields["db_writable"] = e.Diagnostics.CanWrite
	}
	return fields
}
