package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alecthomas/kingpin"
	"github.com/sirupsen/logrus"

	"github.com/pigeonplanner/pigeonplanner/src/configs"
	"github.com/pigeonplanner/pigeonplanner/src/consts"
	"github.com/pigeonplanner/pigeonplanner/src/database"
	"github.com/pigeonplanner/pigeonplanner/src/database/schema"
	"github.com/pigeonplanner/pigeonplanner/src/log"
	"github.com/pigeonplanner/pigeonplanner/src/pkg/mailing"
	"github.com/pigeonplanner/pigeonplanner/src/pkg/migration"
	"github.com/pigeonplanner/pigeonplanner/src/pkg/prefsbackup"
	"github.com/pigeonplanner/pigeonplanner/src/pkg/sentry"
)

// ErrNoDatabase 命令需要已存在的数据库
var ErrNoDatabase = errors.New("database does not exist")

type cli struct {
	out      io.Writer
	registry *schema.Registry
	cfg      *configs.Config
	logFile  io.Closer

	configFile string
	prefDir    string
	dbPath     string
	debug      bool

	backupDest string
	zipFile    string
	comment    string
}

func newApp(c *cli) *kingpin.Application {
	app := kingpin.New("pigeonplanner-db", "Pigeon Planner database maintenance tool.")
	app.Flag("config", "配置文件路径").Short('c').StringVar(&c.configFile)
	app.Flag("prefdir", "配置目录，覆盖配置文件中的 pref_dir").Envar(consts.PrefDirEnv).StringVar(&c.prefDir)
	app.Flag("database", "数据库文件，覆盖配置文件中的 database").StringVar(&c.dbPath)
	app.Flag("debug", "输出调试日志").BoolVar(&c.debug)

	app.Command("check", "打开数据库并迁移到最新结构版本").Action(c.check)
	app.Command("version", "显示数据库结构版本").Action(c.version)
	app.Command("integrity", "执行 SQLite 完整性检查").Action(c.integrity)
	app.Command("optimize", "压缩数据库文件 (VACUUM)").Action(c.optimize)

	backupCmd := app.Command("backup", "将配置目录打包为 "+prefsbackup.FileName).Action(c.backup)
	backupCmd.Flag("dest", "zip 存放目录").StringVar(&c.backupDest)

	restoreCmd := app.Command("restore", "从 "+prefsbackup.FileName+" 恢复配置目录").Action(c.restore)
	restoreCmd.Arg("zip", "备份文件").Required().StringVar(&c.zipFile)

	app.Command("recover", "用中断迁移留下的备份恢复数据库").Action(c.recover)

	reportCmd := app.Command("report", "通过邮件发送诊断报告").Action(c.report)
	reportCmd.Flag("comment", "附加说明").StringVar(&c.comment)

	app.Command("info", "显示程序与路径信息").Action(c.info)
	return app
}

func run(args []string, out io.Writer) error {
	c := &cli{out: out, registry: schema.Builtin()}
	defer c.close()
	_, err := newApp(c).Parse(args)
	return err
}

// setup 加载配置并初始化日志与 Sentry，每个命令开始时调用
func (c *cli) setup() error {
	if c.cfg != nil {
		return nil
	}
	file := c.configFile
	if file == "" {
		if c.prefDir != "" {
			file = filepath.Join(c.prefDir, consts.ConfigName)
		} else {
			file = configs.DefaultFile()
		}
	}
	cfg, err := configs.LoadOrCreate(file)
	if err != nil {
		return err
	}
	configs.SetCurrentConfig(cfg)

	// 命令行参数只覆盖内存中的配置，不写回文件
	cfg, err = configs.UpdateTransient(func(next *configs.Config) error {
		if c.prefDir != "" {
			next.PrefDir = c.prefDir
		}
		if c.dbPath != "" {
			next.Database = c.dbPath
		}
		return next.Verify()
	})
	if err != nil {
		return err
	}
	if c.debug {
		if cfg, err = configs.SetDebug(true); err != nil {
			return err
		}
	}
	c.cfg = cfg

	logFile, err := log.New(cfg)
	if err != nil {
		logrus.WithError(err).Warn("logging to stderr only")
	}
	c.logFile = logFile
	logrus.Infof("%s Version: %s", consts.AppName, consts.AppVersion)
	logrus.Debugf("%+v", consts.GetAppInfo())

	c.initSentry()
	return nil
}

func (c *cli) initSentry() {
	// DSN 来源优先级：编译时注入 > 配置文件 / 环境变量 SENTRY_DSN
	dsn := SentryDSN
	if dsn == "" {
		dsn = c.cfg.Sentry.DSN
	}
	if !c.cfg.Sentry.Enable || dsn == "" {
		return
	}
	environment := SentryEnv
	if c.cfg.Sentry.Environment != "" {
		environment = c.cfg.Sentry.Environment
	}
	if configs.IsDebug() {
		environment = "development"
	}
	err := sentry.Init(sentry.Options{
		DSN:         dsn,
		Environment: environment,
		Release:     consts.AppVersion,
		PrefDir:     c.cfg.PrefDir,
	})
	if err != nil {
		// Sentry 初始化失败不影响程序运行
		logrus.WithError(err).Warn("failed to initialize sentry")
	}
}

func (c *cli) close() {
	if c.logFile != nil {
		c.logFile.Close()
	}
}

// openExisting 打开已存在的数据库，不做结构迁移
func (c *cli) openExisting() (*database.Session, error) {
	path := c.cfg.DatabasePath()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDatabase, path)
	}
	return database.Open(path, c.registry)
}

func (c *cli) check(*kingpin.ParseContext) error {
	if err := c.setup(); err != nil {
		return err
	}
	s, status, err := database.Setup(c.cfg.DatabasePath(), c.registry)
	if s != nil {
		defer s.Close()
	}
	fmt.Fprintf(c.out, "status: %s\n", status)

	switch status {
	case database.StatusTooNew:
		fmt.Fprintln(c.out, "The database you are trying to open is too new for this version of Pigeon Planner.")
	case database.StatusChanged:
		fmt.Fprintln(c.out, "The database has been updated to the latest version.")
	case database.StatusError:
		var migErr *migration.MigrationError
		if errors.As(err, &migErr) {
			fmt.Fprintln(c.out, "The database migration has failed. The original database has been restored.")
			if migErr.RestoreErr != nil {
				fmt.Fprintf(c.out, "Restoring failed as well, a copy of the original is kept at %s\n", migErr.BackupPath)
			}
		}
	}
	return err
}

func (c *cli) version(*kingpin.ParseContext) error {
	if err := c.setup(); err != nil {
		return err
	}
	s, err := c.openExisting()
	if err != nil {
		return err
	}
	defer s.Close()

	v, err := s.DatabaseVersion()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "database version: %d\nlatest version: %d\n", v, c.registry.Latest())
	return nil
}

func (c *cli) integrity(*kingpin.ParseContext) error {
	if err := c.setup(); err != nil {
		return err
	}
	s, err := c.openExisting()
	if err != nil {
		return err
	}
	defer s.Close()

	rows, err := s.CheckIntegrity()
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Fprintln(c.out, row)
	}
	if !database.IntegrityOK(rows) {
		return fmt.Errorf("integrity check reported %d problem(s)", len(rows))
	}
	return nil
}

func (c *cli) optimize(*kingpin.ParseContext) error {
	if err := c.setup(); err != nil {
		return err
	}
	s, err := c.openExisting()
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Optimize()
}

func (c *cli) backup(*kingpin.ParseContext) error {
	if err := c.setup(); err != nil {
		return err
	}
	dest := c.backupDest
	if dest == "" {
		dest = c.cfg.BackupFolder()
	}
	out, err := prefsbackup.Make(c.cfg.PrefDir, dest)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "backup written to %s\n", out)
	return nil
}

func (c *cli) restore(*kingpin.ParseContext) error {
	if err := c.setup(); err != nil {
		return err
	}
	if err := prefsbackup.Restore(c.zipFile, c.cfg.PrefDir); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "backup restored into %s\n", c.cfg.PrefDir)
	return nil
}

func (c *cli) recover(*kingpin.ParseContext) error {
	if err := c.setup(); err != nil {
		return err
	}
	s, err := c.openExisting()
	if err != nil {
		return err
	}
	defer s.Close()

	recovered, err := s.Recover()
	if err != nil {
		return err
	}
	if recovered {
		fmt.Fprintln(c.out, "database restored from the backup of an interrupted migration")
	} else {
		fmt.Fprintln(c.out, "no backup found, nothing to recover")
	}
	return nil
}

func (c *cli) report(*kingpin.ParseContext) error {
	if err := c.setup(); err != nil {
		return err
	}
	r := mailing.Report{
		Comment: c.comment,
		Info:    c.infoMap(),
	}
	if s, err := c.openExisting(); err == nil {
		if v, err := s.DatabaseVersion(); err == nil {
			r.Info["database_version"] = strconv.Itoa(v)
		}
		if rows, err := s.CheckIntegrity(); err == nil {
			r.Integrity = rows
		}
		s.Close()
	} else {
		r.Info["database_error"] = err.Error()
	}
	subject := fmt.Sprintf("%s %s report", consts.AppName, consts.AppVersion)
	if err := mailing.New(c.cfg.Mail).Send(subject, r.Body(), c.cfg.LogPath(), c.cfg.LogPath()+log.OldSuffix); err != nil {
		return err
	}
	sentry.CaptureMessage("diagnostic report sent by mail")
	fmt.Fprintln(c.out, "report sent")
	return nil
}

func (c *cli) infoMap() map[string]string {
	info := consts.GetAppInfo()
	return map[string]string{
		"app":            info.AppName,
		"app_version":    info.AppVersion,
		"build_time":     info.BuildTime,
		"git_hash":       info.GitHash,
		"platform":       info.Platform,
		"go_version":     info.GoVersion,
		"pref_dir":       c.cfg.PrefDir,
		"database":       c.cfg.DatabasePath(),
		"log":            c.cfg.LogPath(),
		"schema_version": strconv.Itoa(c.registry.Latest()),
	}
}

func (c *cli) info(*kingpin.ParseContext) error {
	if err := c.setup(); err != nil {
		return err
	}
	fmt.Fprint(c.out, mailing.Report{Info: c.infoMap()}.Body())
	return nil
}
