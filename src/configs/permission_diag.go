//go:build !windows

package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// PermissionDiagnostics 包含权限诊断信息
type PermissionDiagnostics struct {
	FilePath    string
	DirPath     string
	DirExists   bool
	DirWritable bool
	FileExists  bool
	CanRead     bool
	CanWrite    bool
	FileMode    os.FileMode
	OwnerUID    uint32
	OwnerGID    uint32
	CurrentUID  int
	CurrentGID  int
	Suggestions []string
}

// DiagnoseFilePermission 诊断文件及其所在目录的权限问题
func DiagnoseFilePermission(filePath string) *PermissionDiagnostics {
	diag := &PermissionDiagnostics{
		FilePath:   filePath,
		DirPath:    filepath.Dir(filePath),
		CurrentUID: os.Getuid(),
		CurrentGID: os.Getgid(),
	}

	if info, err := os.Stat(diag.DirPath); err == nil && info.IsDir() {
		diag.DirExists = true
		diag.DirWritable = unix.Access(diag.DirPath, unix.W_OK) == nil
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		if !diag.DirExists {
			diag.Suggestions = append(diag.Suggestions,
				fmt.Sprintf("目录 %s 不存在", diag.DirPath))
		} else if !diag.DirWritable {
			diag.Suggestions = append(diag.Suggestions,
				fmt.Sprintf("文件 %s 不存在，且目录 %s 不可写，无法创建", filePath, diag.DirPath))
		} else {
			diag.Suggestions = append(diag.Suggestions,
				fmt.Sprintf("文件 %s 不存在，请检查路径是否正确", filePath))
		}
		return diag
	}
	if err != nil {
		diag.Suggestions = append(diag.Suggestions,
			fmt.Sprintf("无法获取文件信息: %v", err))
		return diag
	}

	diag.FileExists = true
	diag.FileMode = fileInfo.Mode()

	if stat, ok := fileInfo.Sys().(*syscall.Stat_t); ok {
		diag.OwnerUID = stat.Uid
		diag.OwnerGID = stat.Gid
	}

	diag.CanRead = unix.Access(filePath, unix.R_OK) == nil
	diag.CanWrite = unix.Access(filePath, unix.W_OK) == nil

	diag.generateSuggestions()

	return diag
}

func (d *PermissionDiagnostics) generateSuggestions() {
	if d.CanRead && d.CanWrite && d.DirWritable {
		return
	}

	if !d.CanRead {
		d.Suggestions = append(d.Suggestions,
			fmt.Sprintf("无法读取文件 %s，请检查文件权限。当前权限: %v，文件所有者 UID:GID = %d:%d，当前进程 UID:GID = %d:%d",
				d.FilePath, d.FileMode, d.OwnerUID, d.OwnerGID, d.CurrentUID, d.CurrentGID))
	}
	if !d.CanWrite {
		d.Suggestions = append(d.Suggestions,
			fmt.Sprintf("无法写入文件 %s，当前权限: %v", d.FilePath, d.FileMode))
	}
	// SQLite 需要在同目录下创建日志文件
	if !d.DirWritable {
		d.Suggestions = append(d.Suggestions,
			fmt.Sprintf("目录 %s 不可写，数据库无法创建日志文件和备份", d.DirPath))
	}
}

// FormatError 格式化权限诊断为用户友好的错误信息
func (d *PermissionDiagnostics) FormatError() string {
	if len(d.Suggestions) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n========== 权限诊断信息 ==========\n")

	for _, suggestion := range d.Suggestions {
		sb.WriteString(suggestion)
		sb.WriteString("\n")
	}

	sb.WriteString("===================================\n")
	return sb.String()
}
