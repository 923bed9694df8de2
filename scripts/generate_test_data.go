package main

import (
	"fmt"
	"log"
	"time"

	"github.com/deepwork/internal/config"
	"github.com/deepwork/internal/db"
	"github.com/deepwork/internal/progress"
	"github.com/deepwork/internal/service"
)

const (
	seedUsername = "admin"
	seedPassword = "admin123"
	seedDays     = 21
)

type seedTask struct {
	name  string
	color string
	days  int
}

var seedTasks = []seedTask{
	{name: "深度写作", color: "blue", days: 5},
	{name: "专注阅读", color: "green", days: 7},
	{name: "算法练习", color: "purple", days: 4},
}

// 测试数据生成器
func main() {
	// 初始化数据库
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")
	now := time.Now()

	user, err := createTestUser()
	if err != nil {
		log.Fatal("创建用户失败:", err)
	}

	tasks, err := createTestTasks(user.ID)
	if err != nil {
		log.Fatal("创建任务失败:", err)
	}

	if err := createTestGoals(user.ID, tasks, now); err != nil {
		log.Fatal("创建目标失败:", err)
	}

	if err := createTestActivity(user.ID, tasks, now, seedDays); err != nil {
		log.Fatal("生成打卡记录失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Printf("用户: %s (密码: %s)\n", seedUsername, seedPassword)
	fmt.Printf("任务: %d 个，最近 %d 天的行动与打卡\n", len(tasks), seedDays)
}

// 创建测试用户，已存在时直接复用
func createTestUser() (*db.User, error) {
	if err := db.EnsureUser(db.DB, seedUsername, seedPassword); err != nil {
		return nil, err
	}
	return db.FindUser(db.DB, seedUsername)
}

// 创建测试任务，用户已有任务时跳过
func createTestTasks(userID string) ([]db.Task, error) {
	svc := service.NewTaskService(db.DB)
	existing, err := svc.List(userID, false)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		fmt.Println("任务已存在，跳过创建")
		return existing, nil
	}

	tasks := make([]db.Task, 0, len(seedTasks))
	for _, seed := range seedTasks {
		task, err := svc.Create(userID, service.TaskInput{
			Name:              seed.name,
			TargetDaysPerWeek: seed.days,
			Color:             seed.color,
		})
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

// 为第一个任务创建本月目标，并按周拆解
func createTestGoals(userID string, tasks []db.Task, now time.Time) error {
	if len(tasks) == 0 {
		return nil
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := progress.FormatDate(monthStart.AddDate(0, 1, -1))

	monthlyGoals := service.NewMonthlyGoalService(db.DB).WithClock(func() time.Time { return now })
	existing, err := monthlyGoals.List(userID, service.MonthlyGoalFilter{TaskID: tasks[0].ID})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Println("目标已存在，跳过创建")
		return nil
	}

	goal, err := monthlyGoals.Create(userID, service.MonthlyGoalInput{
		TaskID:     tasks[0].ID,
		GoalTitle:  "完成长文初稿",
		TargetDate: &monthEnd,
	})
	if err != nil {
		return err
	}

	weeklyGoals := service.NewWeeklyGoalService(db.DB).WithClock(func() time.Time { return now })
	plan, err := weeklyGoals.PreviewPlan(userID, goal.ID, service.PlanOptions{StartDate: progress.FormatDate(monthStart)})
	if err != nil {
		return err
	}
	titles := []string{"确定选题与提纲", "完成前半部分", "完成后半部分", "通读修订"}
	for i := range plan.Drafts {
		plan.Drafts[i].Title = titles[i%len(titles)]
	}
	_, err = weeklyGoals.SavePlan(userID, goal.ID, *plan)
	return err
}

// 生成最近 days 天的行动：按固定规律决定当天是否全部完成，打卡随之同步
func createTestActivity(userID string, tasks []db.Task, now time.Time, days int) error {
	subtasks := service.NewSubtaskService(db.DB).WithClock(func() time.Time { return now })
	weeklyGoals := service.NewWeeklyGoalService(db.DB)
	marks := service.NewMarkService(db.DB)

	today := progress.Today(now)
	for offset := days - 1; offset >= 0; offset-- {
		date, err := progress.AddDays(today, -offset)
		if err != nil {
			return err
		}

		for i, task := range tasks {
			weeks, err := weeklyGoals.List(userID, service.WeeklyGoalFilter{TaskID: task.ID})
			if err != nil {
				return err
			}
			var weeklyGoalID *string
			for _, week := range weeks {
				if progress.InWindow(date, week.WeekStartDate, week.WeekEndDate) {
					id := week.ID
					weeklyGoalID = &id
					break
				}
			}

			allDone := (offset+i)%3 != 0
			for n, title := range []string{"热身 25 分钟", "主题专注 50 分钟"} {
				subtask, err := subtasks.Create(userID, service.SubtaskInput{
					TaskID:       task.ID,
					WeeklyGoalID: weeklyGoalID,
					Date:         date,
					SubtaskTitle: title,
				})
				if err != nil {
					return err
				}
				if n == 0 || allDone {
					done := true
					if _, err := subtasks.Update(userID, subtask.ID, service.SubtaskPatch{Completed: &done}); err != nil {
						return err
					}
				}
			}

			if allDone && offset%5 == 0 {
				note := fmt.Sprintf("**%s** 状态不错", task.Name)
				if _, _, err := marks.Upsert(userID, service.MarkInput{TaskID: task.ID, Date: date, Notes: &note}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
