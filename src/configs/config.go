package configs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/pigeonplanner/pigeonplanner/src/consts"
)

// SentryDSNEnv 覆盖配置文件中的 Sentry DSN
const SentryDSNEnv = "SENTRY_DSN"

type Log struct {
	// File 为空时写入配置目录下的 pigeonplanner.log
	File string `yaml:"file" json:"file"`
	// KeepOld 启动时把上一次的日志保留为 .old
	KeepOld bool `yaml:"keep_old" json:"keep_old"`
}

type Sentry struct {
	Enable      bool   `yaml:"enable" json:"enable"`
	DSN         string `yaml:"dsn" json:"dsn"`
	Environment string `yaml:"environment" json:"environment"`
}

// Mail 发送诊断报告用的 SMTP 配置
type Mail struct {
	SMTPHost       string `yaml:"smtpHost" json:"smtpHost"`
	SMTPPort       int    `yaml:"smtpPort" json:"smtpPort"`
	SenderEmail    string `yaml:"senderEmail" json:"senderEmail"`
	SenderPassword string `yaml:"senderPassword" json:"senderPassword"`
	RecipientEmail string `yaml:"recipientEmail" json:"recipientEmail"`
}

type Backup struct {
	// Folder 为空时使用用户主目录
	Folder string `yaml:"folder" json:"folder"`
}

type Config struct {
	File    string `yaml:"-" json:"-"`
	Debug   bool   `yaml:"debug" json:"debug"`
	Version int64  `yaml:"-" json:"-"` // 内部版本号，不参与序列化

	// PrefDir 配置目录，数据库和日志默认都放在这里
	PrefDir string `yaml:"pref_dir" json:"pref_dir"`
	// Database 数据库文件，相对路径基于 PrefDir
	Database string `yaml:"database" json:"database"`

	Log    Log    `yaml:"log" json:"log"`
	Sentry Sentry `yaml:"sentry" json:"sentry"`
	Mail   Mail   `yaml:"mail" json:"mail"`
	Backup Backup `yaml:"backup" json:"backup"`
}

var config atomic.Value // stores *Config

var currentDebug atomic.Bool

var updateMu sync.Mutex

func SetCurrentConfig(cfg *Config) {
	if cfg == nil {
		config.Store((*Config)(nil))
		currentDebug.Store(false)
		return
	}
	config.Store(cfg)
	currentDebug.Store(cfg.Debug)
}

func GetCurrentConfig() *Config {
	v := config.Load()
	if v == nil {
		return nil
	}
	return v.(*Config)
}

// IsDebug 提供并发安全、低开销的 Debug 值读取
func IsDebug() bool {
	return currentDebug.Load()
}

// UpdateTransient 采用“复制-更新-原子替换”模式更新全局配置，只改内存不写文件（例如命令行参数覆盖）
func UpdateTransient(mutator func(c *Config) error) (*Config, error) {
	updateMu.Lock()
	defer updateMu.Unlock()
	old := GetCurrentConfig()
	var base *Config
	if old == nil {
		base = NewConfig()
	} else {
		clone := *old
		base = &clone
	}
	if err := mutator(base); err != nil {
		return nil, err
	}
	if old == nil {
		base.Version = 1
	} else {
		base.Version = old.Version + 1
	}

	SetCurrentConfig(base)
	return base, nil
}

// SetDebug 临时切换调试模式
func SetDebug(v bool) (*Config, error) {
	return UpdateTransient(func(c *Config) error {
		c.Debug = v
		return nil
	})
}

var defaultConfig = Config{
	Debug:    false,
	Database: consts.DatabaseName,
	Log: Log{
		File:    "",
		KeepOld: true,
	},
	Sentry: Sentry{
		Enable:      false,
		DSN:         "",
		Environment: "production",
	},
	Mail: Mail{
		SMTPHost:       "smtp.gmail.com",
		SMTPPort:       587,
		SenderEmail:    "",
		SenderPassword: "",
		RecipientEmail: consts.ReportMail,
	},
}

func NewConfig() *Config {
	config := defaultConfig
	newConfigPostProcess(&config)
	return &config
}

func newConfigPostProcess(c *Config) {
	if dir := os.Getenv(consts.PrefDirEnv); dir != "" {
		c.PrefDir = dir
	}
	if strings.TrimSpace(c.PrefDir) == "" {
		c.PrefDir = consts.DefaultPrefDir()
	}
	if dsn := os.Getenv(SentryDSNEnv); dsn != "" {
		c.Sentry.DSN = dsn
	}
	if strings.TrimSpace(c.Database) == "" {
		c.Database = consts.DatabaseName
	}
}

// Verify will return an error when this config has problem.
func (c *Config) Verify() error {
	if c == nil {
		return fmt.Errorf("配置不存在")
	}
	if strings.TrimSpace(c.PrefDir) == "" {
		return fmt.Errorf("配置目录不能为空")
	}
	if info, err := os.Stat(c.PrefDir); err == nil && !info.IsDir() {
		return fmt.Errorf(`配置目录 "%s" 不是一个目录`, c.PrefDir)
	}
	if c.Sentry.Enable && c.Sentry.DSN == "" {
		return fmt.Errorf("已启用 Sentry 但未配置 DSN")
	}
	if c.Mail.SMTPPort < 0 || c.Mail.SMTPPort > 65535 {
		return fmt.Errorf("SMTP 端口 %d 无效", c.Mail.SMTPPort)
	}
	return nil
}

// DatabasePath 返回数据库文件的完整路径
func (c *Config) DatabasePath() string {
	if filepath.IsAbs(c.Database) {
		return c.Database
	}
	return filepath.Join(c.PrefDir, c.Database)
}

// LogPath 返回日志文件的完整路径
func (c *Config) LogPath() string {
	if c.Log.File == "" {
		return filepath.Join(c.PrefDir, consts.LogName)
	}
	if filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(c.PrefDir, c.Log.File)
}

// BackupFolder 返回备份 zip 的存放目录
func (c *Config) BackupFolder() string {
	if c.Backup.Folder != "" {
		return c.Backup.Folder
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return c.PrefDir
}

// DefaultFile 返回配置目录下的默认配置文件路径
func DefaultFile() string {
	return filepath.Join(consts.DefaultPrefDir(), consts.ConfigName)
}

func NewConfigWithBytes(b []byte) (*Config, error) {
	config := defaultConfig
	if err := yaml.Unmarshal(b, &config); err != nil {
		return nil, err
	}
	newConfigPostProcess(&config)
	return &config, nil
}

func NewConfigWithFile(file string) (*Config, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		// 进行权限诊断，提供更详细的错误信息
		diag := DiagnoseFilePermission(file)
		diagInfo := diag.FormatError()
		if diagInfo != "" {
			return nil, fmt.Errorf("can`t open file: %s%s", file, diagInfo)
		}
		return nil, fmt.Errorf("can`t open file: %s", file)
	}
	config, err := NewConfigWithBytes(b)
	if err != nil {
		return nil, err
	}
	config.File = file
	// 补全缺失字段后写回
	if err := config.Marshal(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadOrCreate 读取配置文件，文件不存在时以默认配置创建
func LoadOrCreate(file string) (*Config, error) {
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		config := NewConfig()
		config.File = file
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return nil, err
		}
		if err := config.Marshal(); err != nil {
			return nil, err
		}
		return config, nil
	}
	return NewConfigWithFile(file)
}

func (c *Config) Marshal() error {
	if c.File == "" {
		return errors.New("config path not set")
	}

	// 先序列化为字节再反序列化为 Node，得到干净的节点树
	var newNode yaml.Node
	tempBytes, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(tempBytes, &newNode); err != nil {
		return err
	}

	DecorateConfigNode(&newNode)

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&newNode); err != nil {
		return err
	}

	// 配置里有 SMTP 密码
	return os.WriteFile(c.File, buf.Bytes(), 0600)
}
