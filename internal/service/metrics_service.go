package service

import (
	"time"

	"github.com/habitlog/internal/db"
)

// MetricsService 基于打卡记录计算派生统计指标
// 引擎自身无任何状态，每次调用都从日志存储读取快照重新计算；
// 所有比率均落在 [0,1]，空数据得到零值而非错误
// "今天"始终由调用方传入，便于用固定时钟测试
//
// 已知简化：每日完成率的分母使用当前启用的习惯数，
// 而非该历史日期当时的启用数（启用历史未被跟踪）
type MetricsService struct {
	habits *HabitService
	logs   *HabitLogService
}

// HabitSummary 汇总单个习惯在统计区间内的指标
// CurrentStreak 以区间结束日为参照，且只统计区间内的记录
type HabitSummary struct {
	Consistency   float64
	CurrentStreak int
	LongestStreak int
}

// MonthlySummary 汇总指定月份的整体打卡情况
type MonthlySummary struct {
	TotalHabits      int
	TotalCompletions int
	CompletionRate   float64
	DaysTracked      int
}

// TrendPoint 表示趋势序列中的一天，空缺日期补齐为未完成
type TrendPoint struct {
	Date      time.Time
	Completed bool
}

// NewMetricsService 构造 MetricsService
func NewMetricsService(habits *HabitService, logs *HabitLogService) *MetricsService {
	return &MetricsService{habits: habits, logs: logs}
}

// DailyCompletion 计算指定日期的完成率：已完成数 / 启用习惯数
// 没有启用习惯时返回 0 而非错误
func (s *MetricsService) DailyCompletion(day time.Time) (float64, error) {
	entries, err := s.logs.LogsForDate(day)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	completed := 0
	for _, entry := range entries {
		if entry.Completed {
			completed++
		}
	}

	return float64(completed) / float64(len(entries)), nil
}

// CurrentStreak 计算截至 today 的连续完成天数
// 从 today 起逐日回溯，遇到第一个未完成或无记录的日期即停止；
// today 当天未完成时连胜为 0
func (s *MetricsService) CurrentStreak(habitID uint, today time.Time) (int, error) {
	if _, err := s.habits.Get(habitID); err != nil {
		return 0, err
	}

	logs, err := s.logs.History(habitID)
	if err != nil {
		return 0, err
	}

	return currentStreak(logs, today), nil
}

// LongestStreak 扫描全部历史，返回最长的连续完成天数
func (s *MetricsService) LongestStreak(habitID uint) (int, error) {
	if _, err := s.habits.Get(habitID); err != nil {
		return 0, err
	}

	logs, err := s.logs.History(habitID)
	if err != nil {
		return 0, err
	}

	return longestStreak(logs), nil
}

// Consistency 计算区间内完成天数占区间总天数的比率
// 空缺日期计入分母但不计入分子
func (s *MetricsService) Consistency(habitID uint, start, end time.Time) (float64, error) {
	if _, err := s.habits.Get(habitID); err != nil {
		return 0, err
	}

	logs, err := s.logs.ListBetween(habitID, start, end)
	if err != nil {
		return 0, err
	}

	return consistency(logs, start, end), nil
}

// PeriodSummary 为每个启用习惯计算区间内的一致率与连胜
// 只发起一次批量日志查询，复杂度为 O(习惯数 + 日志数)
func (s *MetricsService) PeriodSummary(start, end time.Time) (map[uint]HabitSummary, error) {
	habits, err := s.habits.List(false)
	if err != nil {
		return nil, err
	}

	all, err := s.logs.AllBetween(start, end)
	if err != nil {
		return nil, err
	}

	summaries := make(map[uint]HabitSummary, len(habits))
	for _, habit := range habits {
		logs := all[habit.ID]
		summaries[habit.ID] = HabitSummary{
			Consistency:   consistency(logs, start, end),
			CurrentStreak: currentStreak(logs, end),
			LongestStreak: longestStreak(logs),
		}
	}

	return summaries, nil
}

// WeeklyStats 按周（周一为一周起点）汇总区间内的完成率
// 键为周起始日期（2006-01-02），值为该周已记录条目的完成比率
func (s *MetricsService) WeeklyStats(start, end time.Time) (map[string]float64, error) {
	all, err := s.logs.AllBetween(start, end)
	if err != nil {
		return nil, err
	}

	type weekCount struct {
		total     int
		completed int
	}

	weeks := make(map[string]*weekCount)
	for _, logs := range all {
		for _, entry := range logs {
			key := weekStart(entry.LogDate).Format("2006-01-02")
			count, ok := weeks[key]
			if !ok {
				count = &weekCount{}
				weeks[key] = count
			}
			count.total++
			if entry.Completed {
				count.completed++
			}
		}
	}

	stats := make(map[string]float64, len(weeks))
	for key, count := range weeks {
		stats[key] = float64(count.completed) / float64(count.total)
	}

	return stats, nil
}

// MonthlyStats 汇总指定月份的整体打卡情况
func (s *MetricsService) MonthlyStats(year int, month time.Month) (MonthlySummary, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	last := first.AddDate(0, 1, -1)

	all, err := s.logs.AllBetween(first, last)
	if err != nil {
		return MonthlySummary{}, err
	}

	summary := MonthlySummary{}
	days := make(map[string]struct{})
	total := 0

	for _, logs := range all {
		if len(logs) == 0 {
			continue
		}
		summary.TotalHabits++
		for _, entry := range logs {
			total++
			days[dayKey(entry.LogDate)] = struct{}{}
			if entry.Completed {
				summary.TotalCompletions++
			}
		}
	}

	summary.DaysTracked = len(days)
	if total > 0 {
		summary.CompletionRate = float64(summary.TotalCompletions) / float64(total)
	}

	return summary, nil
}

// CompletionTrend 返回截至 today 的最近 days 天逐日完成序列
// 没有记录的日期补齐为未完成，供趋势图直接渲染
func (s *MetricsService) CompletionTrend(habitID uint, days int, today time.Time) ([]TrendPoint, error) {
	if days <= 0 {
		return nil, ErrInvalidDateRange
	}
	if _, err := s.habits.Get(habitID); err != nil {
		return nil, err
	}

	end := normalizeToDate(today)
	start := end.AddDate(0, 0, -(days - 1))

	logs, err := s.logs.ListBetween(habitID, start, end)
	if err != nil {
		return nil, err
	}

	completed := completedDates(logs)
	trend := make([]TrendPoint, 0, days)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		trend = append(trend, TrendPoint{Date: day, Completed: completed[dayKey(day)]})
	}

	return trend, nil
}

// BadgeForStreak 根据连胜天数返回对应的里程碑徽章
func BadgeForStreak(streak int) string {
	switch {
	case streak >= 100:
		return "🏆 Century Club"
	case streak >= 30:
		return "🔥 Fire Streak"
	case streak >= 7:
		return "⭐ Week Warrior"
	case streak >= 3:
		return "💪 Getting Started"
	default:
		return "🌱 Beginner"
	}
}

// currentStreak 从 today 起逐日回溯统计连续完成天数
func currentStreak(logs []db.HabitLog, today time.Time) int {
	completed := completedDates(logs)

	streak := 0
	for day := normalizeToDate(today); completed[dayKey(day)]; day = day.AddDate(0, 0, -1) {
		streak++
	}

	return streak
}

// longestStreak 返回日志中最长的连续完成天数
// 空缺日期与显式未完成同样中断连续
func longestStreak(logs []db.HabitLog) int {
	longest := 0
	run := 0
	var prev time.Time

	for _, entry := range logs {
		if !entry.Completed {
			continue
		}
		day := normalizeToDate(entry.LogDate)
		if run > 0 && dayKey(prev.AddDate(0, 0, 1)) == dayKey(day) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = day
	}

	return longest
}

// consistency 计算完成天数占区间总天数的比率
func consistency(logs []db.HabitLog, start, end time.Time) float64 {
	total := daysBetween(start, end) + 1
	if total <= 0 {
		return 0
	}

	completed := 0
	for _, entry := range logs {
		if entry.Completed {
			completed++
		}
	}

	return float64(completed) / float64(total)
}

// completedDates 将日志折叠为"已完成日期"集合
func completedDates(logs []db.HabitLog) map[string]bool {
	dates := make(map[string]bool, len(logs))
	for _, entry := range logs {
		if entry.Completed {
			dates[dayKey(entry.LogDate)] = true
		}
	}
	return dates
}

// daysBetween 返回两个日期相差的整天数，跨月/跨年按日历进位
func daysBetween(start, end time.Time) int {
	a := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// weekStart 返回日期所在周的周一
func weekStart(t time.Time) time.Time {
	day := normalizeToDate(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
