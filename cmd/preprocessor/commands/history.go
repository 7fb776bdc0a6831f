package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/openmaine/budget-preprocessor/cmd/preprocessor/ui"
	"github.com/openmaine/budget-preprocessor/internal/config"
	"github.com/openmaine/budget-preprocessor/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent preprocessing runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum runs to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.History.SQLitePath == "" {
		return fmt.Errorf("no history database configured (set history.sqlite_path)")
	}

	ui.Init(noColor, verbose)

	store, err := history.Open(cfg.History.SQLitePath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		ui.Info("no runs recorded yet")
		return nil
	}

	ui.Section("Run History")
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.StartedAt.Local().Format(time.DateTime),
			r.Mode,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
			strconv.Itoa(r.Processed),
			strconv.Itoa(r.Succeeded),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Skipped),
		})
	}
	ui.Table(
		[]string{"Started", "Mode", "Duration", "Processed", "Succeeded", "Failed", "Skipped"},
		rows,
	)
	return nil
}
