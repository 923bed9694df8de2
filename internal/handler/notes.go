package handler

import (
	"bytes"
	"strings"

	"github.com/deepwork/internal/db"
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

// markView 在打卡记录上附带渲染后的备注
type markView struct {
	db.DailyMark
	NotesHTML string `json:"notes_html,omitempty"`
}

// renderNotes 将 Markdown 备注转换为安全的 HTML
func renderNotes(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return string(sanitizer.SanitizeBytes(buf.Bytes())), nil
}

func toMarkView(mark db.DailyMark) (markView, error) {
	view := markView{DailyMark: mark}
	if mark.Notes == nil {
		return view, nil
	}
	rendered, err := renderNotes(*mark.Notes)
	if err != nil {
		return markView{}, err
	}
	view.NotesHTML = rendered
	return view, nil
}
