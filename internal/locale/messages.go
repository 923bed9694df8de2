package locale

// MessageKey 标识一条面向用户的提示
type MessageKey string

const (
	MsgUnauthorized       MessageKey = "unauthorized"
	MsgInvalidCredentials MessageKey = "invalid_credentials"
	MsgInvalidPayload     MessageKey = "invalid_payload"
	MsgInvalidDate        MessageKey = "invalid_date"
	MsgInvalidRange       MessageKey = "invalid_range"
	MsgTaskNotFound       MessageKey = "task_not_found"
	MsgTaskInvalid        MessageKey = "task_invalid"
	MsgGoalNotFound       MessageKey = "goal_not_found"
	MsgGoalInvalid        MessageKey = "goal_invalid"
	MsgSubtaskNotFound    MessageKey = "subtask_not_found"
	MsgSubtaskInvalid     MessageKey = "subtask_invalid"
	MsgMarkInvalid        MessageKey = "mark_invalid"
	MsgDuplicateMark      MessageKey = "duplicate_mark"
	MsgEmptyPlan          MessageKey = "empty_plan"
	MsgInternal           MessageKey = "internal"
)

type translation struct {
	english string
	chinese string
}

var messages = map[MessageKey]translation{
	MsgUnauthorized:       {"Unauthorized", "未登录"},
	MsgInvalidCredentials: {"Invalid username or password", "用户名或密码错误"},
	MsgInvalidPayload:     {"Invalid request body", "请求参数格式错误"},
	MsgInvalidDate:        {"Invalid date, expected YYYY-MM-DD", "日期格式应为 YYYY-MM-DD"},
	MsgInvalidRange:       {"End date must not be before start date", "结束日期不能早于开始日期"},
	MsgTaskNotFound:       {"Task not found", "任务不存在"},
	MsgTaskInvalid:        {"Invalid task", "任务参数无效"},
	MsgGoalNotFound:       {"Goal not found", "目标不存在"},
	MsgGoalInvalid:        {"Invalid goal", "目标参数无效"},
	MsgSubtaskNotFound:    {"Action not found", "行动不存在"},
	MsgSubtaskInvalid:     {"Invalid action", "行动参数无效"},
	MsgMarkInvalid:        {"Invalid daily mark", "打卡参数无效"},
	MsgDuplicateMark:      {"Duplicate daily mark", "同一任务同一天存在重复打卡"},
	MsgEmptyPlan:          {"Weekly plan has no goals", "周计划中没有任何目标"},
	MsgInternal:           {"Something went wrong. Please try again.", "服务器开小差了，请稍后再试"},
}

// Message 返回指定语言的提示文本，未知 key 回退到通用错误
func Message(language string, key MessageKey) string {
	text, ok := messages[key]
	if !ok {
		text = messages[MsgInternal]
	}
	return Pick(language, text.english, text.chinese)
}

var weekdayLabels = map[string][7]string{
	LanguageEnglish: {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	LanguageChinese: {"周日", "周一", "周二", "周三", "周四", "周五", "周六"},
}

// WeekdayLabels 返回周日开始的星期简称
func WeekdayLabels(language string) [7]string {
	if NormalizeLanguage(language) == LanguageEnglish {
		return weekdayLabels[LanguageEnglish]
	}
	return weekdayLabels[LanguageChinese]
}
