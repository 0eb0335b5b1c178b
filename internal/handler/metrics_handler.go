package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/service"
)

const defaultTrendDays = 30

// GetDailyCompletion 返回指定日期的整体完成率
func (a *API) GetDailyCompletion(c *gin.Context) {
	day, err := parseDateParam(c, "date")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	ratio, err := a.metrics.DailyCompletion(day)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "计算完成率失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": day.Format(dateFormat), "completion": ratio})
}

// GetHabitMetrics 返回单个习惯的连胜、趋势与徽章
// today 缺省为当前日期，days 缺省为 30
func (a *API) GetHabitMetrics(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	today, err := parseDateQuery(c, "today", time.Now())
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的参照日期")
		return
	}

	days := defaultTrendDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, http.StatusBadRequest, "无效的天数")
			return
		}
		days = parsed
	}

	current, err := a.metrics.CurrentStreak(id, today)
	if err != nil {
		handleMetricsError(c, err)
		return
	}

	longest, err := a.metrics.LongestStreak(id)
	if err != nil {
		handleMetricsError(c, err)
		return
	}

	trend, err := a.metrics.CompletionTrend(id, days, today)
	if err != nil {
		handleMetricsError(c, err)
		return
	}

	points := make([]gin.H, 0, len(trend))
	for _, point := range trend {
		points = append(points, gin.H{
			"date":      point.Date.Format(dateFormat),
			"completed": point.Completed,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"habit_id":       id,
		"current_streak": current,
		"longest_streak": longest,
		"badge":          service.BadgeForStreak(current),
		"trend":          points,
	})
}

// GetPeriodSummary 返回区间内每个启用习惯的汇总指标
func (a *API) GetPeriodSummary(c *gin.Context) {
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

	habits, err := a.habits.List(false)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取习惯列表失败")
		return
	}

	summaries, err := a.metrics.PeriodSummary(start, end)
	if err != nil {
		handleMetricsError(c, err)
		return
	}

	items := make([]gin.H, 0, len(habits))
	for _, habit := range habits {
		summary := summaries[habit.ID]
		items = append(items, gin.H{
			"habit_id":       habit.ID,
			"name":           habit.Name,
			"consistency":    summary.Consistency,
			"current_streak": summary.CurrentStreak,
			"longest_streak": summary.LongestStreak,
			"badge":          service.BadgeForStreak(summary.CurrentStreak),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"start":   start.Format(dateFormat),
		"end":     end.Format(dateFormat),
		"summary": items,
	})
}

// GetWeeklyStats 返回区间内按周汇总的完成率
func (a *API) GetWeeklyStats(c *gin.Context) {
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

	stats, err := a.metrics.WeeklyStats(start, end)
	if err != nil {
		handleMetricsError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"weeks": stats})
}

// GetMonthlyStats 返回指定月份的整体打卡汇总
func (a *API) GetMonthlyStats(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的年份")
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		respondError(c, http.StatusBadRequest, "无效的月份")
		return
	}

	summary, err := a.metrics.MonthlyStats(year, time.Month(month))
	if err != nil {
		handleMetricsError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":              year,
		"month":             month,
		"total_habits":      summary.TotalHabits,
		"total_completions": summary.TotalCompletions,
		"completion_rate":   summary.CompletionRate,
		"days_tracked":      summary.DaysTracked,
	})
}

func handleMetricsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	case errors.Is(err, service.ErrInvalidDateRange):
		respondError(c, http.StatusBadRequest, "结束日期不能早于开始日期")
	default:
		respondError(c, http.StatusInternalServerError, "统计计算失败")
	}
}
