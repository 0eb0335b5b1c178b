package db

import (
	"time"

	"gorm.io/gorm"
)

// 习惯生命周期状态
// 使用带标签的状态值而非布尔，便于未来扩展（例如 archived）
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Habit 定义了习惯模型
// 习惯只会被停用（Status=inactive），不会被物理删除，
// 以保证历史打卡记录的外键引用始终有效
// CreatedAt 即习惯的创建日期，列表按其升序排列
type Habit struct {
	gorm.Model
	Name        string
	Description string
	Status      string `gorm:"default:active;index"`
}

// HabitLog 记录某个习惯在某个自然日的完成情况
// HabitID + LogDate 采用唯一索引，保证每天至多一条记录；
// 重复写入通过 upsert 覆盖 Completed，而非插入新行
// LogDate 始终归一化到当天零点，不携带时间信息
type HabitLog struct {
	gorm.Model
	HabitID   uint      `gorm:"index;index:idx_habit_log_unique,unique"`
	Habit     Habit     `gorm:"constraint:OnDelete:CASCADE"`
	LogDate   time.Time `gorm:"index:idx_habit_log_unique,unique"`
	Completed bool
}

// TableName 重写确保唯一索引作用到 habit_id + log_date
func (HabitLog) TableName() string {
	return "habit_logs"
}
