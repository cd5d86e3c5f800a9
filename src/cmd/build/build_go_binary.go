package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"
	"time"

	log "github.com/sirupsen/logrus"
)

// BuildFlags 包含构建所需的参数
type BuildFlags struct {
	Tags         string
	GcFlags      string
	LdFlags      string
	DebugLdFlags string // -s -w（release 模式）或空（dev 模式）
}

const (
	// constsPath 是注入版本信息的包路径
	constsPath = "github.com/pigeonplanner/pigeonplanner/src/consts"
	mainPkg    = "./src/cmd/pigeonplanner-db"
	binaryBase = "pigeonplanner-db"
)

var ldFlagsTmpl = template.Must(template.New("ldFlags").Parse(
	"-X {{.ConstsPath}}.BuildTime={{.Now}} " +
		"-X {{.ConstsPath}}.AppVersion={{.AppVersion}} " +
		"-X {{.ConstsPath}}.GitHash={{.GitHash}}" +
		"{{if .SentryDSN}} -X main.SentryDSN={{.SentryDSN}}{{end}}"))

// GetBuildFlags 返回构建参数
func GetBuildFlags(isDev bool) BuildFlags {
	// 版本号优先级：环境变量 APP_VERSION > git tag
	appVersion := os.Getenv("APP_VERSION")
	if appVersion == "" {
		appVersion = gitOutput("describe", "--tags", "--always")
	}

	var buf bytes.Buffer
	_ = ldFlagsTmpl.Execute(&buf, map[string]string{
		"ConstsPath": constsPath,
		"Now":        fmt.Sprintf("%d", time.Now().Unix()),
		"AppVersion": appVersion,
		"GitHash":    gitOutput("rev-parse", "HEAD"),
		"SentryDSN":  os.Getenv("SENTRY_DSN"),
	})

	if isDev {
		return BuildFlags{
			Tags:         "dev",
			GcFlags:      "all=-N -l", // 禁用优化以便调试
			LdFlags:      strings.TrimSpace(buf.String()),
			DebugLdFlags: "",
		}
	}
	return BuildFlags{
		Tags:         "release",
		GcFlags:      "",
		LdFlags:      strings.TrimSpace(buf.String()),
		DebugLdFlags: "-s -w",
	}
}

// BuildGoBinary 构建 Go 二进制文件，outputPath 为空时输出到 bin/pigeonplanner-db-{平台}-{架构}
func BuildGoBinary(isDev bool, outputPath string) error {
	goHostOS := os.Getenv("PLATFORM")
	if goHostOS == "" {
		goHostOS = runtime.GOOS
	}
	goHostArch := os.Getenv("ARCH")
	if goHostArch == "" {
		goHostArch = runtime.GOARCH
	}
	if outputPath == "" {
		outputPath = filepath.Join("bin", generateBinaryName(goHostOS, goHostArch))
	}

	flags := GetBuildFlags(isDev)
	fmt.Printf("building %s (Platform: %s, Arch: %s, GoVersion: %s, Tags: %s)\n",
		binaryBase, goHostOS, goHostArch, runtime.Version(), flags.Tags)

	ldflags := flags.LdFlags
	if flags.DebugLdFlags != "" {
		ldflags = flags.DebugLdFlags + " " + ldflags
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}

	// modernc sqlite 是纯 Go 实现，不需要 cgo
	cmd := exec.Command(
		"go", "build",
		"-tags", flags.Tags,
		`-gcflags=`+flags.GcFlags,
		"-o", outputPath,
		"-ldflags="+ldflags,
		mainPkg,
	)
	cmd.Env = append(
		os.Environ(),
		"GOOS="+goHostOS,
		"GOARCH="+goHostArch,
		"CGO_ENABLED=0",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	log.Print(cmd.String())
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command finished with error: %w", err)
	}
	return nil
}

func generateBinaryName(goHostOS string, goHostArch string) string {
	binaryName := binaryBase + "-" + goHostOS + "-" + goHostArch
	if goHostOS == "windows" {
		binaryName += ".exe"
	}
	return binaryName
}

func gitOutput(args ...string) string {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}
