package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/deepwork/internal/progress"
	"github.com/deepwork/internal/service"
	"github.com/spf13/cobra"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		username string
		days     int
		end      string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print completion statistics for the last N days",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := normalizeFormat(format)
			if err != nil {
				return err
			}
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}

			user, err := a.lookupUser(username)
			if err != nil {
				return err
			}

			if end == "" {
				end = progress.Today(a.now())
			}
			start, err := progress.AddDays(end, -(days - 1))
			if err != nil {
				return err
			}

			report, err := service.NewProgressService(a.db).Analytics(cmd.Context(), user.ID, start, end)
			if err != nil {
				return fmt.Errorf("build report: %w", err)
			}

			if format != formatTable {
				return writeStructured(cmd.OutOrStdout(), report, format)
			}
			return writeReportTable(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "account to report on")
	cmd.Flags().IntVar(&days, "days", 30, "number of days ending at --end")
	cmd.Flags().StringVar(&end, "end", "", "last day of the report (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&format, "format", formatTable, "output format: table, json or yaml")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func writeReportTable(w io.Writer, report progress.Report) error {
	o := report.Overview
	overview := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return cellStyle.Inherit(labelStyle)
			}
			return cellStyle
		}).
		Row("Completion", fmt.Sprintf("%d/%d (%d%%)", o.CompletedMarks, o.TotalMarks, o.CompletionRate)).
		Row("Actions", fmt.Sprintf("%d/%d (%d%%)", o.CompletedActions, o.TotalActions, o.ActionsCompletionRate)).
		Row("Streak", fmt.Sprintf("current %d, longest %d", o.CurrentStreak, o.LongestStreak)).
		Row("Active", fmt.Sprintf("%d tasks, %d monthly goals, %d weekly goals", o.ActiveTasks, o.ActiveMonthlyGoals, o.ActiveWeeklyGoals))

	colors := make(map[string]string, len(report.Tasks))
	for _, task := range report.Tasks {
		colors[task.ID] = task.Color
	}
	completed := make(map[string]int, len(report.TaskBreakdown))
	for _, item := range report.TaskBreakdown {
		completed[item.Name] = item.Value
	}

	streaks := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Task", "Done", "Current", "Longest", "Last done").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 && row >= 0 && row < len(report.TaskStreaks) {
				return cellStyle.Inherit(taskStyle(colors[report.TaskStreaks[row].TaskID]))
			}
			return cellStyle
		})
	for _, s := range report.TaskStreaks {
		last := s.LastCompletedDate
		if last == "" {
			last = "-"
		}
		streaks.Row(s.TaskName, strconv.Itoa(completed[s.TaskName]), strconv.Itoa(s.CurrentStreak), strconv.Itoa(s.LongestStreak), last)
	}

	weekdays := make([]string, 0, len(report.Weekdays))
	for _, bucket := range report.Weekdays {
		weekdays = append(weekdays, fmt.Sprintf("%s %d", bucket.Label, bucket.Value))
	}

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Report %s .. %s", report.Start, report.End)),
		overview.Render(),
		streaks.Render(),
		labelStyle.Render("By weekday: ")+fmt.Sprint(weekdays),
	))
	return err
}
