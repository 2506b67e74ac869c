package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// StoreFn лениво создаёт Store после парсинга PersistentFlags.
type StoreFn func(ctx context.Context) (*Store, error)

// OutputFn лениво создаёт Output.
type OutputFn func() *Output

// NewRootCmd собирает корневую команду planner.
func NewRootCmd(storeFn StoreFn) *cobra.Command {
	var jsonMode bool

	cmd := &cobra.Command{
		Use:   "planner",
		Short: "Plan tree orchestration over Postgres",
		Long: `planner submits declarative plans (serial/parallel trees of tasks
with try/success/failure/finally branches) and tracks their execution.

Plans are stored in Postgres; the planner-orchestrator daemon picks up
submitted runs and dispatches eligible tasks to external workers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&jsonMode, "json", false, "Output in JSON format")

	outputFn := func() *Output {
		return NewOutput(jsonMode, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	cmd.AddCommand(
		newSubmitCmd(storeFn, outputFn),
		newListCmd(storeFn, outputFn),
		newStatusCmd(storeFn, outputFn),
		newNextCmd(storeFn, outputFn),
		newUpdateCmd(storeFn, outputFn),
	)

	return cmd
}
