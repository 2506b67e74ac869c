package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jtarchie/planner-pg/internal/domain"
	"github.com/jtarchie/planner-pg/internal/engine"
)

// newListCmd создаёт команду list.
func newListCmd(storeFn StoreFn, outputFn OutputFn) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			store, err := storeFn(cmd.Context())
			if err != nil {
				return err
			}

			runs, err := store.Runs.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			headers := []string{"ID", "PLAN", "STATUS", "CREATED", "DURATION"}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{
					r.ID.String(),
					r.Name,
					string(r.Status),
					r.CreatedAt.Format(time.RFC3339),
					formatDuration(&r),
				}
			}

			out.Print(headers, rows, runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")

	return cmd
}

// newStatusCmd создаёт команду status.
func newStatusCmd(storeFn StoreFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "status RUN_ID",
		Short: "Show run status and task snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			runID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}

			store, err := storeFn(cmd.Context())
			if err != nil {
				return err
			}

			run, err := store.Runs.GetByID(cmd.Context(), runID)
			if err != nil {
				return err
			}
			snap, err := store.Statuses.Read(cmd.Context(), runID)
			if err != nil {
				return err
			}

			plan, err := engine.BuildPlan(&run.Spec)
			if err != nil {
				return err
			}
			planStatus, err := plan.Status(snap)
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "PLAN", "RUN", "EVALUATED", "ERROR"},
				[][]string{{
					run.ID.String(),
					run.Name,
					string(run.Status),
					planStatus.String(),
					run.Error,
				}},
				statusView{Run: run, Evaluated: planStatus, Tasks: snap},
			)

			// Снимок задач отдельной таблицей в порядке объявления
			if !out.jsonMode {
				names := plan.Tasks()
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					rows = append(rows, []string{name, snap.Get(name).String()})
				}
				fmt.Fprintln(out.w)
				out.Table([]string{"TASK", "STATUS"}, rows)
			}
			return nil
		},
	}
}

// statusView — JSON-представление команды status.
type statusView struct {
	Run       *domain.PlanRun `json:"run"`
	Evaluated domain.Status   `json:"evaluated"`
	Tasks     domain.Snapshot `json:"tasks"`
}

func formatDuration(r *domain.PlanRun) string {
	d := r.Duration()
	if d == 0 {
		return ""
	}
	return d.Round(time.Millisecond).String()
}

// sortedNames — имена снимка в стабильном порядке (для вывода).
func sortedNames(snap domain.Snapshot) []string {
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
