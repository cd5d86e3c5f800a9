package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/pigeonplanner/pigeonplanner/src/database"
	"github.com/pigeonplanner/pigeonplanner/src/pkg/sentry"
)

var (
	// SentryDSN Sentry DSN (编译时注入，请勿在源代码中硬编码)
	// 使用 -ldflags="-X main.SentryDSN=your_dsn" 在编译时注入
	// 或设置环境变量 SENTRY_DSN
	SentryDSN = ""
	// SentryEnv Sentry Environment (编译时注入)
	SentryEnv = "production"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	// 程序退出时刷新 Sentry 事件队列
	defer sentry.Flush(2 * time.Second)
	return guard(runMain)
}

// guard 执行 f，f 发生 panic 时上报 Sentry、记录堆栈并返回 1
func guard(f func() int) (code int) {
	defer func() {
		if r := recover(); r != nil {
			sentry.ReportPanic(r)
			logrus.WithField("stack", string(debug.Stack())).Errorf("panic: %v", r)
			code = 1
		}
	}()
	return f()
}

func runMain() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "警告: 读取 .env 失败: %v\n", err)
	}

	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return 0
	}
	sentry.CaptureException(err)

	var openErr *database.OpenError
	if errors.As(err, &openErr) {
		sentry.Flush(2 * time.Second)
		logrus.WithFields(openErr.Fields()).WithError(openErr.Err).Fatal("could not connect to database")
	}
	logrus.WithError(err).Error("command failed")
	return 1
}
