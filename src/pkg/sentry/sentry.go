// Package sentry 提供 Sentry 错误监控的封装
// 用于收集程序崩溃日志，同时保护用户隐私
package sentry

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

var (
	// initialized 标记 Sentry 是否已初始化
	initialized bool
	// initMu 保护初始化状态
	initMu sync.RWMutex
)

// 敏感关键字列表，用于过滤敏感数据
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "auth", "credential",
	"sender_password", "senderpassword", "smtp_password", "dsn",
}

// 邮箱地址属于个人信息
var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// Options 初始化参数
type Options struct {
	// DSN 留空则禁用
	DSN         string
	Environment string
	Release     string
	// PrefDir 用于持久化匿名设备 ID
	PrefDir string
}

// Init 初始化 Sentry SDK
func Init(opts Options) error {
	if opts.DSN == "" {
		return nil // DSN 为空时不初始化
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          opts.Release,
		AttachStacktrace: true,
		BeforeSend:       beforeSendHook,
		SampleRate:       1.0,
	})
	if err != nil {
		return err
	}

	// 设置匿名用户标识
	deviceID := GetAnonymousDeviceID(opts.PrefDir)
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetUser(sentry.User{
			ID: deviceID,
		})
	})

	initMu.Lock()
	initialized = true
	initMu.Unlock()

	return nil
}

// IsInitialized 返回 Sentry 是否已初始化
func IsInitialized() bool {
	initMu.RLock()
	defer initMu.RUnlock()
	return initialized
}

// Flush 刷新所有待发送事件（程序退出前调用）
func Flush(timeout time.Duration) {
	if !IsInitialized() {
		return
	}
	sentry.Flush(timeout)
}

// ReportPanic 上报 recover() 得到的 panic 值，Sentry 未初始化时不做任何事
// recover() 只在被 defer 的函数里直接调用才生效，因此由调用方负责调用
func ReportPanic(r interface{}) {
	if r == nil || !IsInitialized() {
		return
	}
	if hub := sentry.CurrentHub(); hub != nil {
		hub.Recover(r)
	}
}

// CaptureException 捕获异常
func CaptureException(err error) {
	if !IsInitialized() || err == nil {
		return
	}
	sentry.CaptureException(err)
}

// CaptureMessage 捕获消息
func CaptureMessage(msg string) {
	if !IsInitialized() {
		return
	}
	sentry.CaptureMessage(msg)
}

// beforeSendHook 在发送事件前清理敏感数据
func beforeSendHook(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	// 清理异常消息中的敏感数据
	if event.Message != "" {
		event.Message = sanitizeString(event.Message)
	}

	// 清理异常信息
	for i := range event.Exception {
		if event.Exception[i].Value != "" {
			event.Exception[i].Value = sanitizeString(event.Exception[i].Value)
		}
	}

	// 清理堆栈帧中的敏感数据
	for i := range event.Exception {
		if event.Exception[i].Stacktrace != nil {
			for j := range event.Exception[i].Stacktrace.Frames {
				frame := &event.Exception[i].Stacktrace.Frames[j]
				// 清理可能包含敏感信息的变量
				frame.Vars = sanitizeVars(frame.Vars)
			}
		}
	}

	// 清理 Extra 数据
	event.Extra = sanitizeMap(event.Extra)

	// 清理 Contexts 数据
	for key, ctxData := range event.Contexts {
		sanitizedCtx := make(map[string]interface{})
		for k, v := range ctxData {
			if isSensitiveKey(k) {
				sanitizedCtx[k] = "[REDACTED]"
			} else if strVal, ok := v.(string); ok {
				sanitizedCtx[k] = sanitizeString(strVal)
			} else {
				sanitizedCtx[k] = v
			}
		}
		event.Contexts[key] = sanitizedCtx
	}

	// 清理 Tags 中可能的敏感数据
	event.Tags = sanitizeTags(event.Tags)

	return event
}

// sanitizeString 清理字符串中的敏感数据
func sanitizeString(s string) string {
	result := s

	result = emailPattern.ReplaceAllString(result, "[EMAIL]")

	// 清理可能的敏感键值对
	for _, keyword := range sensitiveKeywords {
		// 匹配 keyword=value 或 keyword: value 格式
		pattern := regexp.MustCompile(`(?i)(` + regexp.QuoteMeta(keyword) + `)\s*[=:]\s*[^\s,}"\]]+`)
		result = pattern.ReplaceAllString(result, "$1=[REDACTED]")
	}

	return result
}

// sanitizeVars 清理变量中的敏感数据
func sanitizeVars(vars map[string]interface{}) map[string]interface{} {
	if vars == nil {
		return nil
	}

	result := make(map[string]interface{})
	for key, value := range vars {
		if isSensitiveKey(key) {
			result[key] = "[REDACTED]"
		} else if strVal, ok := value.(string); ok {
			result[key] = sanitizeString(strVal)
		} else {
			result[key] = value
		}
	}
	return result
}

// sanitizeMap 清理 map 中的敏感数据
func sanitizeMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}

	result := make(map[string]interface{})
	for key, value := range m {
		if isSensitiveKey(key) {
			result[key] = "[REDACTED]"
		} else if strVal, ok := value.(string); ok {
			result[key] = sanitizeString(strVal)
		} else if mapVal, ok := value.(map[string]interface{}); ok {
			result[key] = sanitizeMap(mapVal)
		} else {
			result[key] = value
		}
	}
	return result
}

// sanitizeTags 清理 tags 中的敏感数据
func sanitizeTags(tags map[string]string) map[string]string {
	if tags == nil {
		return nil
	}

	result := make(map[string]string)
	for key, value := range tags {
		if isSensitiveKey(key) {
			result[key] = "[REDACTED]"
		} else {
			result[key] = sanitizeString(value)
		}
	}
	return result
}

// isSensitiveKey 检查键名是否为敏感键
func isSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(keyLower, keyword) {
			return true
		}
	}
	return false
}
