package sentry

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	uuid "github.com/satori/go.uuid"
)

// DeviceIDFile 配置目录下保存匿名设备 ID 的文件
const DeviceIDFile = ".device_id"

var (
	cachedDeviceID string
	deviceIDOnce   sync.Once
)

// GetAnonymousDeviceID 获取匿名设备 ID
// 首次调用时从配置目录读取或生成新的 UUID，后续调用返回缓存的值
// 返回 32 位十六进制字符串（去掉连字符的 UUID）
func GetAnonymousDeviceID(prefDir string) string {
	deviceIDOnce.Do(func() {
		cachedDeviceID = loadOrCreateDeviceID(prefDir)
	})
	return cachedDeviceID
}

func loadOrCreateDeviceID(prefDir string) string {
	if prefDir == "" {
		return generateUUID()
	}
	file := filepath.Join(prefDir, DeviceIDFile)

	if b, err := os.ReadFile(file); err == nil {
		if id := strings.TrimSpace(string(b)); isValidDeviceID(id) {
			return id
		}
	}

	deviceID := generateUUID()
	// 保存失败不影响返回
	if err := os.MkdirAll(prefDir, 0755); err == nil {
		_ = os.WriteFile(file, []byte(deviceID+"\n"), 0644)
	}
	return deviceID
}

func isValidDeviceID(id string) bool {
	if len(id) != 32 {
		return false
	}
	_, err := uuid.FromString(id)
	return err == nil
}

// generateUUID 生成一个新的 UUID（去掉连字符）
func generateUUID() string {
	id := uuid.Must(uuid.NewV4())
	// xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx -> xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx
	return strings.ReplaceAll(id.String(), "-", "")
}
