package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepwork/internal/db"
	"github.com/deepwork/internal/progress"
	"github.com/deepwork/internal/service"
	"github.com/spf13/cobra"
)

func newTodayCmd(a *app) *cobra.Command {
	var username, date, format string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the goal hierarchy and actions for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := normalizeFormat(format)
			if err != nil {
				return err
			}
			user, err := a.lookupUser(username)
			if err != nil {
				return err
			}
			if date == "" {
				date = progress.Today(a.now())
			}

			dayView, err := service.NewProgressService(a.db).Today(cmd.Context(), user.ID, date)
			if err != nil {
				return fmt.Errorf("build daily view: %w", err)
			}

			if format != formatTable {
				return writeStructured(cmd.OutOrStdout(), dayView, format)
			}
			return writeDailyView(cmd.OutOrStdout(), dayView)
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "account to show")
	cmd.Flags().StringVar(&date, "date", "", "day to show (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&format, "format", formatTable, "output format: table, json or yaml")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func writeDailyView(w io.Writer, view progress.DailyView) error {
	var b strings.Builder
	s := view.Summary
	fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("%s  %d/%d actions (%d%%)", view.Date, s.CompletedActions, s.TotalActions, s.CompletionRate)))

	if len(view.Tasks) == 0 {
		fmt.Fprintln(&b, mutedStyle.Render("no active tasks"))
	}

	for _, node := range view.Tasks {
		fmt.Fprintln(&b, taskStyle(node.Task.Color).Render(node.Task.Name))
		for _, monthly := range node.MonthlyGoals {
			line := "  ◆ " + monthly.Goal.GoalTitle
			if monthly.NoPlanThisWeek {
				line += mutedStyle.Render("  (no plan this week)")
			}
			fmt.Fprintln(&b, line)
			for _, weekly := range monthly.WeeklyGoals {
				fmt.Fprintf(&b, "    ▸ %s %s\n", weekly.Goal.GoalTitle, labelStyle.Render(fmt.Sprintf("%d/%d", weekly.Completed, weekly.Total)))
				writeSubtasks(&b, "      ", weekly.Subtasks)
			}
		}
		if len(node.UnattachedSubtasks) > 0 {
			fmt.Fprintln(&b, labelStyle.Render("  other actions"))
			writeSubtasks(&b, "      ", node.UnattachedSubtasks)
		}
		if len(node.OtherSubtasks) > 0 {
			fmt.Fprintln(&b, labelStyle.Render("  from other weeks"))
			writeSubtasks(&b, "      ", node.OtherSubtasks)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSubtasks(b *strings.Builder, indent string, subtasks []db.DailySubtask) {
	for _, subtask := range subtasks {
		box := "[ ]"
		title := subtask.SubtaskTitle
		if subtask.Completed {
			box = doneStyle.Render("[x]")
		}
		fmt.Fprintf(b, "%s%s %s\n", indent, box, title)
	}
}
