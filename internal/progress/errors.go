package progress

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateMark 同一任务同一天出现多条打卡，违反 upsert 约束
	ErrDuplicateMark = errors.New("duplicate daily mark for task and date")
	// ErrInvalidRange 结束日期早于开始日期
	ErrInvalidRange = errors.New("invalid range: end before start")
	// ErrEmptyPlan 周计划中没有任何有效目标
	ErrEmptyPlan = errors.New("weekly plan has no goal titles")
)

// ValidationError 描述引擎输入中缺失或格式错误的字段，计算会立即中止
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func invalid(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
