package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/service"
)

type completionRequest struct {
	Completed *bool `json:"completed"`
}

// SetCompletion 写入或覆盖某习惯某天的完成状态
// 同一 (习惯, 日期) 的重复写入覆盖旧值，后写者胜
func (a *API) SetCompletion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	day, err := parseDateParam(c, "date")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	var req completionRequest
	if !bindJSON(c, &req, "请求格式错误") {
		return
	}
	if req.Completed == nil {
		respondError(c, http.StatusBadRequest, "缺少 completed 字段")
		return
	}

	if err := a.habitLogs.SetCompletion(id, day, *req.Completed); err != nil {
		switch {
		case errors.Is(err, service.ErrHabitNotFound):
			respondError(c, http.StatusNotFound, "习惯不存在")
		case errors.Is(err, service.ErrFutureLogDate):
			respondError(c, http.StatusBadRequest, "不能为未来日期打卡")
		default:
			respondError(c, http.StatusInternalServerError, "打卡失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "打卡成功",
		"habit_id":  id,
		"date":      day.Format(dateFormat),
		"completed": *req.Completed,
	})
}

// GetHabitLogs 返回某习惯在区间内的打卡记录，按日期升序
// 已停用习惯的历史记录同样可查
func (a *API) GetHabitLogs(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	start, err := parseDate(c.Query("start"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的开始日期")
		return
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的结束日期")
		return
	}

	logs, err := a.habitLogs.ListBetween(id, start, end)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			respondError(c, http.StatusBadRequest, "结束日期不能早于开始日期")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取打卡记录失败")
		return
	}

	items := make([]gin.H, 0, len(logs))
	for _, entry := range logs {
		items = append(items, gin.H{
			"date":      entry.LogDate.Format(dateFormat),
			"completed": entry.Completed,
		})
	}

	c.JSON(http.StatusOK, gin.H{"habit_id": id, "logs": items})
}

// GetDailyLogs 返回指定日期所有启用习惯的完成情况
// 当天没有记录的习惯报告为未完成
func (a *API) GetDailyLogs(c *gin.Context) {
	day, err := parseDateParam(c, "date")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	entries, err := a.habitLogs.LogsForDate(day)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取当日记录失败")
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		items = append(items, gin.H{
			"habit_id":  entry.HabitID,
			"name":      entry.Name,
			"completed": entry.Completed,
		})
	}

	c.JSON(http.StatusOK, gin.H{"date": day.Format(dateFormat), "entries": items})
}
