package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/habitlog/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrHabitNotFound 在指定习惯不存在时返回
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitNameRequired 在习惯名称为空或仅含空白时返回
	ErrHabitNameRequired = errors.New("habit name is required")
)

// HabitService 负责 Habit 数据的增删改查与生命周期管理
// 习惯的唯一删除路径是 Deactivate（软停用），Purge 仅供数据清理工具使用
type HabitService struct {
	db *gorm.DB
}

// HabitInput 定义创建习惯时可配置字段
type HabitInput struct {
	Name        string
	Description string
}

// HabitUpdate 定义部分更新字段，nil 表示保持原值
type HabitUpdate struct {
	Name        *string
	Description *string
}

// NewHabitService 构造 HabitService
func NewHabitService(gdb *gorm.DB) *HabitService {
	return &HabitService{db: gdb}
}

// Create 新建习惯，初始状态为 active
func (s *HabitService) Create(input HabitInput) (*db.Habit, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrHabitNameRequired
	}

	habit := db.Habit{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Status:      db.StatusActive,
	}

	if err := s.db.Create(&habit).Error; err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &habit, nil
}

// List 按创建顺序返回习惯集合
// includeInactive 为 false 时仅返回当前启用的习惯
func (s *HabitService) List(includeInactive bool) ([]db.Habit, error) {
	var habits []db.Habit

	query := s.db.Model(&db.Habit{})
	if !includeInactive {
		query = query.Where("status = ?", db.StatusActive)
	}

	if err := query.Order("created_at ASC, id ASC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	return habits, nil
}

// Get 根据 ID 获取习惯，无论其是否已停用
func (s *HabitService) Get(id uint) (*db.Habit, error) {
	var habit db.Habit
	if err := s.db.First(&habit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &habit, nil
}

// Update 部分更新习惯，nil 字段保持原值
func (s *HabitService) Update(id uint, input HabitUpdate) (*db.Habit, error) {
	var existing db.Habit
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("find habit: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrHabitNameRequired
		}
		existing.Name = name
	}
	if input.Description != nil {
		existing.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return &existing, nil
}

// Deactivate 停用习惯；重复停用不是错误，打卡记录保持不变
func (s *HabitService) Deactivate(id uint) error {
	var habit db.Habit
	if err := s.db.First(&habit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHabitNotFound
		}
		return fmt.Errorf("find habit: %w", err)
	}

	if habit.Status == db.StatusInactive {
		return nil
	}

	if err := s.db.Model(&habit).Update("status", db.StatusInactive).Error; err != nil {
		return fmt.Errorf("deactivate habit: %w", err)
	}
	return nil
}

// Purge 物理删除习惯及其全部打卡记录
// 仅供数据清理工具使用，不通过常规 API 暴露
func (s *HabitService) Purge(id uint) error {
	var habit db.Habit
	if err := s.db.First(&habit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHabitNotFound
		}
		return fmt.Errorf("find habit: %w", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("habit_id = ?", id).Delete(&db.HabitLog{}).Error; err != nil {
			return fmt.Errorf("purge habit logs: %w", err)
		}
		if err := tx.Unscoped().Delete(&db.Habit{}, id).Error; err != nil {
			return fmt.Errorf("purge habit: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}
