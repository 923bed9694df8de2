package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Models 返回需要自动迁移的全部模型，测试与 Init 共用
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Task{},
		&MonthlyGoal{},
		&WeeklyGoal{},
		&DailySubtask{},
		&DailyMark{},
	}
}

// Init 初始化数据库连接并执行自动迁移。
// databasePath 为空时将回退到默认值 deepwork.db。
func Init(databasePath string) error {
	gdb, err := Open(databasePath, &gorm.Config{})
	if err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open 打开 SQLite 数据库并完成迁移，不修改全局 DB
func Open(databasePath string, cfg *gorm.Config) (*gorm.DB, error) {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "deepwork.db"
	}

	if !strings.HasPrefix(path, "file:") {
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
	}

	if cfg == nil {
		cfg = &gorm.Config{}
	}

	gdb, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(Models()...); err != nil {
		return nil, err
	}

	return gdb, nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
