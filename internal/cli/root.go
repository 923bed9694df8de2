package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/deepwork/internal/config"
	"github.com/deepwork/internal/db"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// app 保存一次命令执行期间共享的配置与数据库连接
type app struct {
	configPath string
	dbPath     string
	cfg        config.AppConfig
	db         *gorm.DB
	now        func() time.Time
}

// NewRootCmd 构建 deepwork 命令行
func NewRootCmd() *cobra.Command {
	return newRootCmd(time.Now)
}

func newRootCmd(now func() time.Time) *cobra.Command {
	a := &app{now: now}

	root := &cobra.Command{
		Use:   "deepwork",
		Short: "Deep work habit tracker",
		Long: `deepwork manages accounts and prints progress reports
straight from the SQLite database used by the server.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.open,
		PersistentPostRunE: a.close,
	}

	// Global flags
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides config)")

	root.AddCommand(newUserCmd(a))
	root.AddCommand(newReportCmd(a))
	root.AddCommand(newTodayCmd(a))
	return root
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *app) open(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		return err
	}
	if path := strings.TrimSpace(a.dbPath); path != "" {
		cfg.DatabasePath = path
	}
	a.cfg = cfg

	gdb, err := db.Open(cfg.DatabasePath, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.DatabasePath, err)
	}
	a.db = gdb
	return nil
}

func (a *app) close(cmd *cobra.Command, args []string) error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	a.db = nil
	return sqlDB.Close()
}

func (a *app) lookupUser(username string) (*db.User, error) {
	user, err := db.FindUser(a.db, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q not found", username)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
