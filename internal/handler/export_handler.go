package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/habitlog/internal/service"
)

// ExportLogs 导出区间内全部打卡记录为 CSV 文件
// 文件落盘到导出目录后以附件形式返回
func (a *API) ExportLogs(c *gin.Context) {
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

	all, err := a.habitLogs.AllBetween(start, end)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			respondError(c, http.StatusBadRequest, "结束日期不能早于开始日期")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取打卡记录失败")
		return
	}

	if err := os.MkdirAll(a.exportDir, 0o755); err != nil {
		respondError(c, http.StatusInternalServerError, "创建导出目录失败")
		return
	}

	fileName := fmt.Sprintf("%s-%s.csv", time.Now().Format("20060102"), uuid.New().String())
	filePath := filepath.Join(a.exportDir, fileName)

	file, err := os.Create(filePath)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "创建导出文件失败")
		return
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"habit_name", "log_date", "completed"}); err != nil {
		respondError(c, http.StatusInternalServerError, "写入导出文件失败")
		return
	}

	for _, habit := range habits {
		for _, entry := range all[habit.ID] {
			record := []string{
				habit.Name,
				entry.LogDate.Format(dateFormat),
				strconv.FormatBool(entry.Completed),
			}
			if err := writer.Write(record); err != nil {
				respondError(c, http.StatusInternalServerError, "写入导出文件失败")
				return
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		respondError(c, http.StatusInternalServerError, "写入导出文件失败")
		return
	}

	c.FileAttachment(filePath, fileName)
}
