package consts

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	AppName     = "Pigeon Planner"
	Website     = "http://www.pigeonplanner.com"
	ReportMail  = "timovwb@gmail.com"
	PrefDirName = "pigeonplanner"

	DatabaseName = "pigeonplanner.db"
	LogName      = "pigeonplanner.log"
	ConfigName   = "pigeonplanner.yml"

	// PrefDirEnv 覆盖默认的配置目录
	PrefDirEnv = "PIGEONPLANNER_PREFDIR"
)

type Info struct {
	AppName    string `json:"app_name"`
	AppVersion string `json:"app_version"`
	BuildTime  string `json:"build_time"`
	GitHash    string `json:"git_hash"`
	Pid        int    `json:"pid"`
	Platform   string `json:"platform"`
	GoVersion  string `json:"go_version"`
	PrefDir    string `json:"pref_dir"`
	ExePath    string `json:"exe_path"`
}

var (
	BuildTime  string
	AppVersion string
	GitHash    string
)

// DefaultPrefDir 返回当前系统下的默认配置目录
//
//	windows: %APPDATA%\pigeonplanner
//	darwin:  ~/Library/Application Support/pigeonplanner
//	其他:    ~/.pigeonplanner
func DefaultPrefDir() string {
	if dir := os.Getenv(PrefDirEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, PrefDirName)
		}
		return filepath.Join(home, PrefDirName)
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", PrefDirName)
	default:
		return filepath.Join(home, "."+PrefDirName)
	}
}

// GetAppInfo 返回应用信息
// 必须使用函数而非变量，AppVersion 等字段是通过 -ldflags 在链接阶段注入的
func GetAppInfo() Info {
	exePath := ""
	if p, err := os.Executable(); err == nil {
		if abs, err := filepath.Abs(p); err == nil {
			exePath = abs
		} else {
			exePath = p
		}
	}

	return Info{
		AppName:    AppName,
		AppVersion: AppVersion,
		BuildTime:  BuildTime,
		GitHash:    GitHash,
		Pid:        os.Getpid(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		GoVersion:  runtime.Version(),
		PrefDir:    DefaultPrefDir(),
		ExePath:    exePath,
	}
}
