package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/habitlog/internal/config"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/service"
)

// 演示数据生成器：创建几个习惯并补齐最近 60 天的打卡记录
func main() {
	cfg := config.Load()
	gdb, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}
	defer db.Close(gdb)

	habitSvc := service.NewHabitService(gdb)
	logSvc := service.NewHabitLogService(gdb)

	existing, err := habitSvc.List(true)
	if err != nil {
		log.Fatal("读取习惯失败:", err)
	}
	if len(existing) > 0 {
		fmt.Println("习惯已存在，跳过创建")
		return
	}

	fmt.Println("开始生成演示数据...")

	seeds := []struct {
		name        string
		description string
		rate        float64
	}{
		{"晨跑", "每天 **5 公里**，雨天改为室内", 0.8},
		{"阅读", "睡前阅读 30 分钟", 0.6},
		{"冥想", "早晨 10 分钟正念练习", 0.9},
		{"写日记", "记录当天三件小事", 0.5},
	}

	rng := rand.New(rand.NewSource(42))
	today := time.Now()

	for _, seed := range seeds {
		habit, err := habitSvc.Create(service.HabitInput{
			Name:        seed.name,
			Description: seed.description,
		})
		if err != nil {
			log.Fatal("创建习惯失败:", err)
		}

		for i := 59; i >= 0; i-- {
			day := today.AddDate(0, 0, -i)
			completed := rng.Float64() < seed.rate
			if err := logSvc.SetCompletion(habit.ID, day, completed); err != nil {
				log.Fatal("写入打卡记录失败:", err)
			}
		}

		fmt.Printf("✅ %s：已补齐 60 天打卡\n", seed.name)
	}

	fmt.Println("演示数据生成完成！")
}
