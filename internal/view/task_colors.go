package view

import (
	"math/rand"
	"regexp"
	"strings"
)

// TaskColorOption describes a selectable color for tasks.
type TaskColorOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

var (
	taskColorDefinitions = []TaskColorOption{
		{Name: "Blue", Value: "#3b82f6"},
		{Name: "Green", Value: "#10b981"},
		{Name: "Amber", Value: "#f59e0b"},
		{Name: "Red", Value: "#ef4444"},
		{Name: "Purple", Value: "#8b5cf6"},
		{Name: "Pink", Value: "#ec4899"},
		{Name: "Cyan", Value: "#06b6d4"},
		{Name: "Orange", Value: "#f97316"},
	}
	taskColorLookup = func() map[string]string {
		lookup := make(map[string]string, len(taskColorDefinitions)*2)
		for _, color := range taskColorDefinitions {
			lookup[strings.ToLower(color.Name)] = color.Value
			lookup[color.Value] = color.Value
		}
		return lookup
	}()
	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-f]{3}|[0-9a-f]{6})$`)
)

// TaskColorOptions exposes the palette used by task forms.
func TaskColorOptions() []TaskColorOption {
	options := make([]TaskColorOption, len(taskColorDefinitions))
	copy(options, taskColorDefinitions)
	return options
}

// DefaultTaskColor returns the first palette entry.
func DefaultTaskColor() string {
	return taskColorDefinitions[0].Value
}

// RandomTaskColor picks a palette entry for tasks created without a color.
func RandomTaskColor() string {
	return taskColorDefinitions[rand.Intn(len(taskColorDefinitions))].Value
}

// NormalizeTaskColor accepts a palette name or a hex value and returns the
// lower-case hex form. ok is false when the input is neither.
func NormalizeTaskColor(input string) (string, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return "", false
	}
	if value, ok := taskColorLookup[trimmed]; ok {
		return value, true
	}
	if !strings.HasPrefix(trimmed, "#") {
		trimmed = "#" + trimmed
	}
	if hexColorPattern.MatchString(trimmed) {
		return trimmed, true
	}
	return "", false
}
