package migration

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/sirupsen/logrus"
)

const (
	// BackupSuffix 迁移备份文件后缀，与已有安装保持一致
	BackupSuffix = "_bckp"
	// archiveTimeFormat 归档残留备份时使用的时间戳格式
	archiveTimeFormat = "20060102_150405"
	// MaxBackupCount 最大保留的归档数量
	MaxBackupCount = 5
)

// 数据库附带的日志文件，恢复备份时一并清理
var sidecarSuffixes = []string{"-journal", "-wal", "-shm"}

// BackupManager 备份管理器
type BackupManager struct {
	dbPath    string
	freeSpace func(dir string) (uint64, error)
}

// NewBackupManager 创建备份管理器
func NewBackupManager(dbPath string) *BackupManager {
	return &BackupManager{
		dbPath:    dbPath,
		freeSpace: diskFree,
	}
}

// BackupPath 迁移备份文件路径
func (m *BackupManager) BackupPath() string {
	return m.dbPath + BackupSuffix
}

// HasLeftover 是否存在上次迁移中断留下的备份
func (m *BackupManager) HasLeftover() bool {
	_, err := os.Stat(m.BackupPath())
	return err == nil
}

// CreateBackup 创建数据库备份
func (m *BackupManager) CreateBackup() (string, error) {
	info, err := os.Stat(m.dbPath)
	if os.IsNotExist(err) {
		return "", nil // 新数据库不需要备份
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat database: %w", err)
	}

	backupPath := m.BackupPath()
	if m.HasLeftover() {
		archived, err := m.archiveLeftover()
		if err != nil {
			return "", err
		}
		logrus.WithFields(logrus.Fields{
			"db_path":     m.dbPath,
			"archived_to": archived,
		}).Warn("found backup left by an interrupted migration, archived it")
	}

	if err := m.checkFreeSpace(info.Size()); err != nil {
		return "", err
	}

	if err := copyFile(m.dbPath, backupPath); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	return backupPath, nil
}

// RestoreBackup 从备份恢复数据库，调用前必须关闭数据库连接
func (m *BackupManager) RestoreBackup(backupPath string) error {
	if backupPath == "" {
		return fmt.Errorf("backup path is empty")
	}

	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file not found: %s", backupPath)
	}

	// 残留的回滚日志会在下次打开时被重放到恢复后的文件上
	for _, suffix := range sidecarSuffixes {
		if err := os.Remove(m.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", m.dbPath+suffix, err)
		}
	}

	if _, err := os.Stat(m.dbPath); err == nil {
		if err := os.Remove(m.dbPath); err != nil {
			return fmt.Errorf("failed to remove current database: %w", err)
		}
	}

	if err := copyFile(backupPath, m.dbPath); err != nil {
		return fmt.Errorf("failed to restore from backup: %w", err)
	}

	return nil
}

// RemoveBackup 删除备份文件
func (m *BackupManager) RemoveBackup(backupPath string) error {
	if backupPath == "" {
		return nil
	}
	if err := os.Remove(backupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove backup: %w", err)
	}
	return nil
}

// ListArchived 列出归档的残留备份（最新的在前）
func (m *BackupManager) ListArchived() ([]string, error) {
	dir := filepath.Dir(m.dbPath)
	prefix := filepath.Base(m.BackupPath()) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var archived []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			archived = append(archived, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Slice(archived, func(i, j int) bool {
		return archived[i] > archived[j]
	})

	return archived, nil
}

// CleanupOldBackups 清理旧归档，保留最近的 MaxBackupCount 个
func (m *BackupManager) CleanupOldBackups() error {
	archived, err := m.ListArchived()
	if err != nil {
		return err
	}

	if len(archived) <= MaxBackupCount {
		return nil
	}

	for _, path := range archived[MaxBackupCount:] {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove old backup %s: %w", path, err)
		}
	}

	return nil
}

// archiveLeftover 把残留备份改名为 <dbpath>_bckp.<时间戳>
func (m *BackupManager) archiveLeftover() (string, error) {
	archived := m.BackupPath() + "." + time.Now().Format(archiveTimeFormat)
	if err := os.Rename(m.BackupPath(), archived); err != nil {
		return "", fmt.Errorf("failed to archive leftover backup: %w", err)
	}
	// 清理失败不影响主流程
	_ = m.CleanupOldBackups()
	return archived, nil
}

func (m *BackupManager) checkFreeSpace(need int64) error {
	if m.freeSpace == nil {
		return nil
	}
	free, err := m.freeSpace(filepath.Dir(m.dbPath))
	if err != nil {
		// 部分文件系统无法获取用量，此时跳过检查
		logrus.WithError(err).Debug("failed to query free disk space, skipping check")
		return nil
	}
	if need > 0 && free < uint64(need) {
		return fmt.Errorf("%w: need %d bytes, %d available", ErrInsufficientSpace, need, free)
	}
	return nil
}

func diskFree(dir string) (uint64, error) {
	usage, err := disk.Usage(dir)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

// copyFile 复制文件
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		os.Remove(dst)
		return err
	}

	return dstFile.Sync()
}
