// Package prefsbackup 将整个配置目录（数据库、配置、图片等）打包为 zip，或从 zip 恢复
package prefsbackup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/sirupsen/logrus"
)

// FileName 备份文件名固定，恢复时只接受这个名字
const FileName = "PigeonPlannerBackup.zip"

var (
	ErrFolderMissing = errors.New("backup folder does not exist")
	ErrNotBackupFile = errors.New("not a " + FileName + " file")
	ErrUnsafeEntry   = errors.New("zip entry escapes target folder")
)

// skipped 判断文件是否不需要备份：锁文件、日志、旧日志和 Windows 缩略图缓存
func skipped(name string) bool {
	return strings.HasSuffix(name, ".lock") ||
		strings.HasSuffix(name, ".log") ||
		strings.HasSuffix(name, ".old") ||
		name == "Thumbs.db" ||
		name == FileName
}

// Make 将 prefDir 打包到 destFolder/PigeonPlannerBackup.zip，返回 zip 路径
// 失败时不会留下不完整的 zip
func Make(prefDir, destFolder string) (string, error) {
	if info, err := os.Stat(destFolder); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrFolderMissing, destFolder)
	}
	outFile := filepath.Join(destFolder, FileName)
	logger := logrus.WithFields(logrus.Fields{"pref_dir": prefDir, "zip": outFile})

	f, err := os.Create(outFile)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	count, err := writeZip(f, prefDir)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(outFile)
		logger.WithError(err).Error("failed to make backup")
		return "", err
	}
	logger.WithField("files", count).Info("backup created")
	return outFile, nil
}

func writeZip(w io.Writer, root string) (int, error) {
	root = filepath.Clean(root)
	zw := zip.NewWriter(w)
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || skipped(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate

		dst, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("zip create %s: %w", rel, err)
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		if _, err := io.Copy(dst, src); err != nil {
			return fmt.Errorf("zip write %s: %w", rel, err)
		}
		count++
		return nil
	})
	if err != nil {
		zw.Close()
		return count, err
	}
	if err := zw.Close(); err != nil {
		return count, fmt.Errorf("close zip: %w", err)
	}
	return count, nil
}

// Restore 将备份解压到 prefDir，已存在的同名文件会被覆盖
func Restore(zipFile, prefDir string) error {
	if filepath.Base(zipFile) != FileName {
		return fmt.Errorf("%w: %s", ErrNotBackupFile, zipFile)
	}
	zr, err := zip.OpenReader(zipFile)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer zr.Close()

	if err := os.MkdirAll(prefDir, 0755); err != nil {
		return err
	}
	root, err := filepath.Abs(prefDir)
	if err != nil {
		return err
	}

	for _, file := range zr.File {
		if strings.HasSuffix(file.Name, "/") {
			continue
		}
		target, err := safeTarget(root, file.Name)
		if err != nil {
			return err
		}
		if err := extractFile(file, target); err != nil {
			return err
		}
	}
	logrus.WithFields(logrus.Fields{"zip": zipFile, "pref_dir": prefDir, "files": len(zr.File)}).Info("backup restored")
	return nil
}

// safeTarget 计算条目解压后的路径，拒绝跳出 root 的条目
func safeTarget(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeEntry, name)
	}
	return target, nil
}

func extractFile(file *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s in backup: %w", file.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("failed to extract %s: %w", file.Name, err)
	}
	return out.Close()
}
