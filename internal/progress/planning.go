package progress

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// WeekWindow 是周计划中的一个时间窗口，Index 从 0 开始
type WeekWindow struct {
	Index int    `json:"index"`
	Start string `json:"week_start_date"`
	End   string `json:"week_end_date"`
}

// GoalDraft 是某个窗口下的一条目标草稿，以 (WeekIndex, GoalIndex) 定位
type GoalDraft struct {
	WeekIndex   int    `json:"week_index"`
	GoalIndex   int    `json:"goal_index"`
	Title       string `json:"goal_title"`
	Description string `json:"description"`
}

// WeeklyPlan 把窗口与草稿放在一起，保存前统一校验
type WeeklyPlan struct {
	Windows []WeekWindow `json:"windows"`
	Drafts  []GoalDraft  `json:"drafts"`
}

// PlannedGoal 是校验通过、可以直接写入的周目标
type PlannedGoal struct {
	WeekStartDate string
	WeekEndDate   string
	GoalTitle     string
	Description   string
}

// PlanWeekWindows 把 [start, end] 切成 weeks 个连续窗口。
// 每个窗口 floor(总天数/weeks) 天，最后一个窗口吸收余数并止于 end。
func PlanWeekWindows(start, end string, weeks int) ([]WeekWindow, error) {
	days, err := DaysInRange(start, end)
	if err != nil {
		return nil, err
	}
	if weeks <= 0 {
		return nil, invalid("weeks", strconv.Itoa(weeks), "must be positive")
	}

	span := len(days) / weeks
	if span == 0 {
		return nil, invalid("weeks", strconv.Itoa(weeks), fmt.Sprintf("exceeds the %d days between start and end", len(days)))
	}

	windows := make([]WeekWindow, 0, weeks)
	offset := 0
	for i := 0; i < weeks; i++ {
		last := offset + span - 1
		if i == weeks-1 {
			last = len(days) - 1
		}
		windows = append(windows, WeekWindow{Index: i, Start: days[offset], End: days[last]})
		offset = last + 1
	}
	return windows, nil
}

// Goals 校验草稿并按 (WeekIndex, GoalIndex) 顺序展开，标题为空的草稿会被跳过
func (p WeeklyPlan) Goals() ([]PlannedGoal, error) {
	drafts := slices.Clone(p.Drafts)
	slices.SortFunc(drafts, func(a, b GoalDraft) int {
		if diff := cmp.Compare(a.WeekIndex, b.WeekIndex); diff != 0 {
			return diff
		}
		return cmp.Compare(a.GoalIndex, b.GoalIndex)
	})

	goals := make([]PlannedGoal, 0, len(drafts))
	for i, draft := range drafts {
		key := fmt.Sprintf("%d/%d", draft.WeekIndex, draft.GoalIndex)
		if draft.WeekIndex < 0 || draft.WeekIndex >= len(p.Windows) {
			return nil, invalid("draft.week_index", key, "has no matching window")
		}
		if draft.GoalIndex < 0 {
			return nil, invalid("draft.goal_index", key, "must not be negative")
		}
		if i > 0 && drafts[i-1].WeekIndex == draft.WeekIndex && drafts[i-1].GoalIndex == draft.GoalIndex {
			return nil, invalid("draft", key, "is duplicated")
		}

		title := strings.TrimSpace(draft.Title)
		if title == "" {
			continue
		}

		window := p.Windows[draft.WeekIndex]
		goals = append(goals, PlannedGoal{
			WeekStartDate: window.Start,
			WeekEndDate:   window.End,
			GoalTitle:     title,
			Description:   strings.TrimSpace(draft.Description),
		})
	}

	if len(goals) == 0 {
		return nil, ErrEmptyPlan
	}
	return goals, nil
}
