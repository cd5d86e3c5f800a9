package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTable 表在该版本中未定义
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnknownVersion 版本未注册
	ErrUnknownVersion = errors.New("unknown schema version")
	// ErrInvalidRegistry 版本链不连续或缺少迁移步骤
	ErrInvalidRegistry = errors.New("invalid schema registry")
)

// UnknownTableError 查询了某个版本中不存在的表
type UnknownTableError struct {
	Version int
	Table   string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("table %q is not defined in schema version %d", e.Table, e.Version)
}

// Is 使 errors.Is(err, ErrUnknownTable) 成立
func (e *UnknownTableError) Is(target error) bool {
	return target == ErrUnknownTable
}
