package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record 是所有业务表共用的主键与时间戳，ID 为不透明的 uuid 字符串
type Record struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate 在插入前补齐 ID
func (r *Record) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
