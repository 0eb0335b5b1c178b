package handler

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/service"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

type habitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type habitUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ListHabits 返回习惯列表 JSON
// include_inactive=1 时包含已停用的习惯
func (a *API) ListHabits(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "1"

	habits, err := a.habits.List(includeInactive)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取习惯列表失败")
		return
	}

	items := make([]gin.H, 0, len(habits))
	for _, habit := range habits {
		items = append(items, habitToPayload(habit))
	}

	c.JSON(http.StatusOK, gin.H{"habits": items})
}

// GetHabit 返回单个习惯详情
func (a *API) GetHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	habit, err := a.habits.Get(id)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// CreateHabit 新建习惯
func (a *API) CreateHabit(c *gin.Context) {
	var req habitRequest
	if !bindJSON(c, &req, "请求格式错误") {
		return
	}

	habit, err := a.habits.Create(service.HabitInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "习惯创建成功", "habit": habitToPayload(*habit)})
}

// UpdateHabit 部分更新习惯，未出现的字段保持原值
func (a *API) UpdateHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	var req habitUpdateRequest
	if !bindJSON(c, &req, "请求格式错误") {
		return
	}

	habit, err := a.habits.Update(id, service.HabitUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "习惯更新成功", "habit": habitToPayload(*habit)})
}

// DeactivateHabit 停用习惯，历史打卡记录保持可查
func (a *API) DeactivateHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	if err := a.habits.Deactivate(id); err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "习惯已停用"})
}

func handleHabitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	case errors.Is(err, service.ErrHabitNameRequired):
		respondError(c, http.StatusBadRequest, "习惯名称不能为空")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}

func habitToPayload(habit db.Habit) gin.H {
	payload := gin.H{
		"id":          habit.ID,
		"name":        habit.Name,
		"description": habit.Description,
		"status":      habit.Status,
		"created_at":  habit.CreatedAt.Format(dateFormat),
	}

	if habit.Description != "" {
		if rendered, err := renderMarkdown(habit.Description); err == nil {
			payload["description_html"] = rendered
		}
	}

	return payload
}

func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}
