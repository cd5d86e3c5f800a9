//go:generate go run go.uber.org/mock/mockgen -package migration -destination mock_test.go github.com/pigeonplanner/pigeonplanner/src/pkg/migration Database,StepRunner
package migration

import "time"

// Database 被迁移的数据库
type Database interface {
	// Path 数据库文件路径
	Path() string
	// Version 读取持久化的版本号，未设置时为 0
	Version() (int, error)
	// SetVersion 写入持久化的版本号
	SetVersion(version int) error
	// Detach 关闭底层连接，之后数据库文件可以被替换
	Detach() error
	// Attach 重新打开底层连接
	Attach() error
}

// StepRunner 提供迁移步骤
type StepRunner interface {
	// LatestVersion 程序所知的最新版本
	LatestVersion() int
	// RunStep 把数据库从 version-1 迁移到 version
	RunStep(version int) error
}

// Result 迁移结果
type Result struct {
	// Changed 是否执行过迁移
	Changed bool
	// FromVersion 迁移前版本
	FromVersion int
	// ToVersion 迁移后版本
	ToVersion int
	// BackupPath 本次使用的备份文件（成功后已删除）
	BackupPath string
	// Duration 耗时
	Duration time.Duration
}
