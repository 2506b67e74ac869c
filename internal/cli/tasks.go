package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jtarchie/planner-pg/internal/domain"
	"github.com/jtarchie/planner-pg/internal/engine"
)

// newNextCmd создаёт команду next.
func newNextCmd(storeFn StoreFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "next RUN_ID",
		Short: "List tasks eligible to start",
		Long: `Evaluates the plan against the current snapshot and prints the
tasks an external worker may pick up, in declaration order.`,
		Args: cobra.ExactArgs(1),
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
			eligible, err := plan.Eligible(snap)
			if err != nil {
				return err
			}

			rows := make([][]string, len(eligible))
			for i, task := range eligible {
				rows[i] = []string{task}
			}
			out.Print([]string{"TASK"}, rows, eligible)
			return nil
		},
	}
}

// newUpdateCmd создаёт команду update.
func newUpdateCmd(storeFn StoreFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "update RUN_ID TASK=STATUS [TASK=STATUS...]",
		Short: "Apply task status updates",
		Long: `Applies one or more task status updates atomically and prints the
resulting snapshot with the re-evaluated plan status.

Statuses: UNSTARTED, PENDING, SUCCESS, FAILED.
Updates for tasks not present in the plan are silently ignored.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			runID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}

			updates := make(domain.Snapshot, len(args)-1)
			for _, kv := range args[1:] {
				parts := strings.SplitN(kv, "=", 2)
				if len(parts) != 2 {
					return fmt.Errorf("invalid update format %q, expected TASK=STATUS", kv)
				}
				status, err := domain.ParseStatus(parts[1])
				if err != nil {
					return fmt.Errorf("task %s: %w", parts[0], err)
				}
				updates[parts[0]] = status
			}

			store, err := storeFn(cmd.Context())
			if err != nil {
				return err
			}

			run, err := store.Runs.GetByID(cmd.Context(), runID)
			if err != nil {
				return err
			}

			snap, err := store.Statuses.ApplyAndRead(cmd.Context(), runID, updates)
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

			out.Success(fmt.Sprintf("Plan status: %s", planStatus))

			rows := make([][]string, 0, len(snap))
			for _, name := range sortedNames(snap) {
				rows = append(rows, []string{name, snap[name].String()})
			}
			out.Print([]string{"TASK", "STATUS"}, rows, statusView{
				Run:       run,
				Evaluated: planStatus,
				Tasks:     snap,
			})
			return nil
		},
	}
}
