//go:build windows

package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

// PermissionDiagnostics 包含权限诊断信息
// 在 Windows 上只检查存在性，并通过实际打开文件判断可写性
type PermissionDiagnostics struct {
	FilePath    string
	DirPath     string
	DirExists   bool
	DirWritable bool
	FileExists  bool
	CanWrite    bool
	Suggestions []string
}

// DiagnoseFilePermission 诊断文件权限问题
func DiagnoseFilePermission(filePath string) *PermissionDiagnostics {
	diag := &PermissionDiagnostics{
		FilePath: filePath,
		DirPath:  filepath.Dir(filePath),
	}
	if info, err := os.Stat(diag.DirPath); err == nil && info.IsDir() {
		diag.DirExists = true
		if f, err := os.CreateTemp(diag.DirPath, ".pp-write-check-*"); err == nil {
			diag.DirWritable = true
			name := f.Name()
			f.Close()
			os.Remove(name)
		}
	}
	if _, err := os.Stat(filePath); err == nil {
		diag.FileExists = true
		if f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_APPEND, 0); err == nil {
			diag.CanWrite = true
			f.Close()
		}
	}
	if !diag.FileExists {
		diag.Suggestions = append(diag.Suggestions, fmt.Sprintf("文件 %s 不存在", filePath))
	}
	return diag
}

// FormatError 格式化权限诊断为用户友好的错误信息
func (d *PermissionDiagnostics) FormatError() string {
	if len(d.Suggestions) == 0 {
		return ""
	}
	return "\n" + d.Suggestions[0] + "\n"
}
