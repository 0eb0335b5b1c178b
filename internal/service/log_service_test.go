package service

import (
	"errors"
	"testing"
	"time"

	"github.com/habitlog/internal/db"
)

// fixedClock 返回固定"今天"，让未来日期校验可预测
func fixedClock(day time.Time) func() time.Time {
	return func() time.Time { return day }
}

func TestSetCompletionUpsert(t *testing.T) {
	gdb, cleanup := setupTestDB(t)
	defer cleanup()

	habitSvc := NewHabitService(gdb)
	habit, err := habitSvc.Create(HabitInput{Name: "晨跑"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)
	logSvc := NewHabitLogService(gdb).WithClock(fixedClock(day))

	if err := logSvc.SetCompletion(habit.ID, day, true); err != nil {
		t.Fatalf("SetCompletion returned error: %v", err)
	}

	logs, err := logSvc.ListBetween(habit.ID, day, day)
	if err != nil {
		t.Fatalf("ListBetween returned error: %v", err)
	}
	if len(logs) != 1 || !logs[0].Completed {
		t.Fatalf("expected single completed log, got %+v", logs)
	}

	// 重复写入覆盖旧值，不新增行
	if err := logSvc.SetCompletion(habit.ID, day, false); err != nil {
		t.Fatalf("second SetCompletion returned error: %v", err)
	}

	logs, err = logSvc.ListBetween(habit.ID, day, day)
	if err != nil {
		t.Fatalf("ListBetween returned error: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log after upsert, got %d", len(logs))
	}
	if logs[0].Completed {
		t.Fatal("expected completed to be overwritten to false")
	}

	var count int64
	if err := gdb.Model(&db.HabitLog{}).Where("habit_id = ?", habit.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count logs: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 row, got %d", count)
	}
}

func TestSetCompletionUnknownHabit(t *testing.T) {
	gdb, cleanup := setupTestDB(t)
	defer cleanup()

	logSvc := NewHabitLogService(gdb)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)

	if err := logSvc.SetCompletion(999, day, true); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound, got %v", err)
	}
}

func TestSetCompletionFutureDate(t *testing.T) {
	gdb, cleanup := setupTestDB(t)
	defer cleanup()

	habitSvc := NewHabitService(gdb)
	habit, err := habitSvc.Create(HabitInput{Name: "阅读"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	today := time.Date(2024, 5, 10, 0, 0, 0, 0, time.Local)
	logSvc := NewHabitLogService(gdb).WithClock(fixedClock(today))

	if err := logSvc.SetCompletion(habit.ID, today.AddDate(0, 0, 1), true); !errors.Is(err, ErrFutureLogDate) {
		t.Fatalf("expected ErrFutureLogDate, got %v", err)
	}

	// 当天与过去日期允许
	if err := logSvc.SetCompletion(habit.ID, today, true); err != nil {
		t.Fatalf("SetCompletion for today returned error: %v", err)
	}
	if err := logSvc.SetCompletion(habit.ID, today.AddDate(0, 0, -30), true); err != nil {
		t.Fatalf("SetCompletion for past date returned error: %v", err)
	}
}

func TestSetCompletionDeactivatedHabit(t *testing.T) {
	gdb, cleanup := setupTestDB(t)
	defer cleanup()

	habitSvc := NewHabitService(gdb)
	habit, err := habitSvc.Create(HabitInput{Name: "冥想"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	if err := habitSvc.Deactivate(habit.ID); err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}

	// 停用后仍允许补记历史日期
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)
	logSvc := NewHabitLogService(gdb).WithClock(fixedClock(day.AddDate(0, 0, 7)))
	if err := logSvc.SetCompletion(habit.ID, day, true); err != nil {
		t.Fatalf("SetCompletion for deactivated habit returned error: %v", err)
	}
}

func TestLogsForDate(t *testing.T) {
	gdb, cleanup := setupTestDB(t)
	defer cleanup()

	habitSvc := NewHabitService(gdb)
	logged, err := habitSvc.Create(HabitInput{Name: "晨跑"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	unlogged, err := habitSvc.Create(HabitInput{Name: "阅读"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	inactive, err := habitSvc.Create(HabitInput{Name: "写日记"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	if err := habitSvc.Deactivate(inactive.ID); err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)
	logSvc := NewHabitLogService(gdb).WithClock(fixedClock(day))
	if err := logSvc.SetCompletion(logged.ID, day, true); err != nil {
		t.Fatalf("SetCompletion returned error: %v", err)
	}

	entries, err := logSvc.LogsForDate(day)
	if err != nil {
		t.Fatalf("LogsForDate returned error: %v", err)
	}

	// 只包含启用习惯，无记录视为未完成
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].HabitID != logged.ID || !entries[0].Completed {
		t.Fatalf("expected first entry completed, got %+v", entries[0])
	}
	if entries[1].HabitID != unlogged.ID || entries[1].Completed {
		t.Fatalf("expected unlogged habit reported incomplete, got %+v", entries[1])
	}
}

func TestListBetweenInvalidRange(t *testing.T) {
	gdb, cleanup := setupTestDB(t)
	defer cleanup()

	logSvc := NewHabitLogService(gdb)
	start := time.Date(2024, 5, 10, 0, 0, 0, 0, time.Local)

	if _, err := logSvc.ListBetween(1, start, start.AddDate(0, 0, -1)); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	if _, err := logSvc.AllBetween(start, start.AddDate(0, 0, -1)); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestAllBetween(t *testing.T) {
	gdb, cleanup := setupTestDB(t)
	defer cleanup()

	habitSvc := NewHabitService(gdb)
	first, err := habitSvc.Create(HabitInput{Name: "晨跑"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	second, err := habitSvc.Create(HabitInput{Name: "阅读"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	inactive, err := habitSvc.Create(HabitInput{Name: "写日记"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)
	logSvc := NewHabitLogService(gdb).WithClock(fixedClock(base.AddDate(0, 0, 10)))

	for i := 0; i < 3; i++ {
		if err := logSvc.SetCompletion(first.ID, base.AddDate(0, 0, i), true); err != nil {
			t.Fatalf("SetCompletion returned error: %v", err)
		}
	}
	if err := logSvc.SetCompletion(second.ID, base, false); err != nil {
		t.Fatalf("SetCompletion returned error: %v", err)
	}
	if err := logSvc.SetCompletion(inactive.ID, base, true); err != nil {
		t.Fatalf("SetCompletion returned error: %v", err)
	}
	if err := habitSvc.Deactivate(inactive.ID); err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}

	all, err := logSvc.AllBetween(base, base.AddDate(0, 0, 9))
	if err != nil {
		t.Fatalf("AllBetween returned error: %v", err)
	}

	if len(all) != 2 {
		t.Fatalf("expected logs for 2 active habits, got %d", len(all))
	}
	if len(all[first.ID]) != 3 {
		t.Fatalf("expected 3 logs for first habit, got %d", len(all[first.ID]))
	}
	if len(all[second.ID]) != 1 || all[second.ID][0].Completed {
		t.Fatalf("unexpected logs for second habit: %+v", all[second.ID])
	}
	if _, ok := all[inactive.ID]; ok {
		t.Fatal("expected inactive habit logs to be excluded")
	}

	// 组内按日期升序
	logs := all[first.ID]
	for i := 1; i < len(logs); i++ {
		if logs[i].LogDate.Before(logs[i-1].LogDate) {
			t.Fatal("expected logs sorted ascending by date")
		}
	}
}
