package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrUserExists 在用户名已被占用时返回
var ErrUserExists = errors.New("user already exists")

// User 定义了用户模型，ID 即各业务表的 user_id
type User struct {
	Record
	Username string `gorm:"unique;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
}

// EnsureUser 存在性检查：若提供的用户名与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的用户。
func EnsureUser(gdb *gorm.DB, username, password string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	if gdb == nil {
		return errors.New("database not initialized")
	}

	if _, err := FindUser(gdb, trimmedUser); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	_, err := CreateUser(gdb, trimmedUser, trimmedPassword)
	return err
}

// CreateUser 以 bcrypt 哈希保存新用户
func CreateUser(gdb *gorm.DB, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, errors.New("username and password are required")
	}

	var count int64
	if err := gdb.Model(&User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := User{Username: username, Password: string(hashed)}
	if err := gdb.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUser 按用户名查找
func FindUser(gdb *gorm.DB, username string) (*User, error) {
	var user User
	if err := gdb.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckPassword 校验明文密码是否匹配
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
