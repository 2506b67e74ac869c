package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jtarchie/planner-pg/internal/domain"
	"github.com/jtarchie/planner-pg/internal/engine"
)

// newSubmitCmd создаёт команду submit.
func newSubmitCmd(storeFn StoreFn, outputFn OutputFn) *cobra.Command {
	var file string
	var name string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a plan for execution",
		Long: `Reads a plan spec from a YAML or JSON file, validates it and
creates a PENDING run. The orchestrator daemon picks the run up.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read plan file: %w", err)
			}

			spec, err := engine.ParseSpec(data)
			if err != nil {
				return err
			}
			if name != "" {
				spec.Name = name
			}
			if spec.Name == "" {
				return fmt.Errorf("plan has no name: set it in the spec or via --name")
			}

			// Валидация до записи в БД: невалидный план не станет запуском
			plan, err := engine.BuildPlan(spec)
			if err != nil {
				return err
			}

			store, err := storeFn(cmd.Context())
			if err != nil {
				return err
			}

			run := &domain.PlanRun{
				ID:        uuid.New(),
				Name:      spec.Name,
				Spec:      *spec,
				Status:    domain.RunStatusPending,
				CreatedAt: time.Now(),
			}
			if err := store.Runs.Create(cmd.Context(), run); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Run submitted: %s", run.ID))
			out.Print(
				[]string{"ID", "PLAN", "STATUS", "TASKS"},
				[][]string{{run.ID.String(), run.Name, string(run.Status), strconv.Itoa(plan.Size())}},
				run,
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to plan spec (YAML or JSON)")
	cmd.Flags().StringVar(&name, "name", "", "Override plan name")
	cmd.MarkFlagRequired("file")

	return cmd
}
