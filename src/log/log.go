package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/pigeonplanner/pigeonplanner/src/configs"
)

// OldSuffix 上一次运行的日志文件后缀
const OldSuffix = ".old"

// New 按配置初始化全局 logger，返回打开的日志文件（调用方负责关闭）
// 日志文件无法打开时只输出到 stderr，并返回错误
func New(cfg *configs.Config) (io.Closer, error) {
	writers := []io.Writer{os.Stderr}
	var (
		logFile *os.File
		openErr error
	)
	if cfg != nil {
		logFile, openErr = openLogFile(cfg.LogPath(), cfg.Log.KeepOld)
		if logFile != nil {
			writers = append(writers, logFile)
		}
	}

	logrus.SetOutput(io.MultiWriter(writers...))
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	SetDebug(cfg != nil && cfg.Debug)

	if logFile == nil {
		return nopCloser{}, openErr
	}
	return logFile, nil
}

// openLogFile 打开新的日志文件，keepOld 时先把上一次的日志改名为 .old
func openLogFile(path string, keepOld bool) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log folder: %w", err)
	}
	if keepOld {
		if _, err := os.Stat(path); err == nil {
			old := path + OldSuffix
			_ = os.Remove(old)
			if err := os.Rename(path, old); err != nil {
				return nil, fmt.Errorf("failed to rotate log file %s: %w", path, err)
			}
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s for output: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetDebug 调整日志级别与是否打印调用方
func SetDebug(debug bool) {
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetReportCaller(true)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetReportCaller(false)
	}
}
