package handler

import (
	"github.com/habitlog/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	habits    *service.HabitService
	habitLogs *service.HabitLogService
	metrics   *service.MetricsService
	exportDir string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, exportDir string) *API {
	habits := service.NewHabitService(gdb)
	habitLogs := service.NewHabitLogService(gdb)

	return &API{
		db:        gdb,
		habits:    habits,
		habitLogs: habitLogs,
		metrics:   service.NewMetricsService(habits, habitLogs),
		exportDir: exportDir,
	}
}

// DB exposes the underlying gorm instance for maintenance paths.
func (a *API) DB() *gorm.DB {
	return a.db
}
