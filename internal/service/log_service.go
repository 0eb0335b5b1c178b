package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/habitlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvalidDateRange 在区间结束日期早于开始日期时返回
	ErrInvalidDateRange = errors.New("invalid date range: end before start")
	// ErrFutureLogDate 在尝试为未来日期打卡时返回
	ErrFutureLogDate = errors.New("log date is in the future")
)

// HabitLogService 负责打卡记录的写入与区间查询
// 打卡的唯一写入路径是 SetCompletion，同一 (habit_id, log_date)
// 的重复写入通过原子 upsert 覆盖，后写者胜
type HabitLogService struct {
	db *gorm.DB
	// now 提供"今天"的参照时间，默认为 time.Now，测试中可替换为固定时钟
	now func() time.Time
}

// DailyEntry 表示某一天单个启用习惯的完成情况
// 当天没有记录的习惯 Completed 为 false（未打卡即未完成）
type DailyEntry struct {
	HabitID   uint
	Name      string
	Completed bool
}

// NewHabitLogService 构造 HabitLogService
func NewHabitLogService(gdb *gorm.DB) *HabitLogService {
	return &HabitLogService{db: gdb, now: time.Now}
}

// WithClock 替换服务的参照时钟，仅用于测试
func (s *HabitLogService) WithClock(now func() time.Time) *HabitLogService {
	s.now = now
	return s
}

// SetCompletion 写入或覆盖指定习惯在指定日期的完成状态
// 习惯不存在时返回 ErrHabitNotFound（已停用的习惯允许补记历史日期）；
// 未来日期返回 ErrFutureLogDate
func (s *HabitLogService) SetCompletion(habitID uint, day time.Time, completed bool) error {
	var habit db.Habit
	if err := s.db.First(&habit, habitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHabitNotFound
		}
		return fmt.Errorf("find habit: %w", err)
	}

	logDate := normalizeToDate(day)
	today := normalizeToDate(s.now())
	if logDate.After(today) {
		return ErrFutureLogDate
	}

	record := db.HabitLog{
		HabitID:   habitID,
		LogDate:   logDate,
		Completed: completed,
	}

	// 唯一索引冲突时覆盖 completed，保证每天至多一行
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "log_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("upsert habit log: %w", err)
	}

	return nil
}

// LogsForDate 返回指定日期所有启用习惯的完成情况
// 通过 LEFT JOIN 将没有记录的习惯报告为未完成
func (s *HabitLogService) LogsForDate(day time.Time) ([]DailyEntry, error) {
	logDate := normalizeToDate(day)

	var entries []DailyEntry
	if err := s.db.Model(&db.Habit{}).
		Select("habits.id AS habit_id, habits.name AS name, COALESCE(habit_logs.completed, 0) AS completed").
		Joins("LEFT JOIN habit_logs ON habit_logs.habit_id = habits.id AND habit_logs.log_date = ? AND habit_logs.deleted_at IS NULL", logDate).
		Where("habits.status = ?", db.StatusActive).
		Order("habits.created_at ASC, habits.id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}

	return entries, nil
}

// ListBetween 返回指定习惯在区间内的打卡记录，按日期升序
// 只返回实际记录过的日期，空缺日期的处理属于统计层
// 已停用习惯的历史记录同样可查
func (s *HabitLogService) ListBetween(habitID uint, start, end time.Time) ([]db.HabitLog, error) {
	if habitID == 0 {
		return nil, fmt.Errorf("habit id is required")
	}
	if normalizeToDate(end).Before(normalizeToDate(start)) {
		return nil, ErrInvalidDateRange
	}

	var logs []db.HabitLog
	if err := s.db.Where("habit_id = ?", habitID).
		Where("log_date BETWEEN ? AND ?", normalizeToDate(start), normalizeToDate(end)).
		Order("log_date ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list habit logs: %w", err)
	}

	return logs, nil
}

// History 返回指定习惯的全部打卡记录，按日期升序
func (s *HabitLogService) History(habitID uint) ([]db.HabitLog, error) {
	if habitID == 0 {
		return nil, fmt.Errorf("habit id is required")
	}

	var logs []db.HabitLog
	if err := s.db.Where("habit_id = ?", habitID).
		Order("log_date ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list habit history: %w", err)
	}

	return logs, nil
}

// AllBetween 一次查询返回区间内所有启用习惯的打卡记录，按习惯分组
// 供统计层批量计算使用，避免逐习惯发起 N+1 查询
func (s *HabitLogService) AllBetween(start, end time.Time) (map[uint][]db.HabitLog, error) {
	if normalizeToDate(end).Before(normalizeToDate(start)) {
		return nil, ErrInvalidDateRange
	}

	var logs []db.HabitLog
	if err := s.db.Model(&db.HabitLog{}).
		Joins("JOIN habits ON habits.id = habit_logs.habit_id AND habits.deleted_at IS NULL").
		Where("habits.status = ?", db.StatusActive).
		Where("habit_logs.log_date BETWEEN ? AND ?", normalizeToDate(start), normalizeToDate(end)).
		Order("habit_logs.habit_id ASC, habit_logs.log_date ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list all logs: %w", err)
	}

	grouped := make(map[uint][]db.HabitLog)
	for _, entry := range logs {
		grouped[entry.HabitID] = append(grouped[entry.HabitID], entry)
	}

	return grouped, nil
}

// normalizeToDate 将时间归一化到当天零点，保留时区
func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
