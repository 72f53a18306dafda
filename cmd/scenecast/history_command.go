package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scenecast/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent builds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("build history is disabled; set history.enabled = true in the config file")
			}

			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No builds recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				outcome := record.Status
				if record.Error != "" {
					outcome = fmt.Sprintf("%s: %s", record.Status, record.Error)
				}
				rows = append(rows, []string{
					record.FinishedAt.Local().Format("2006-01-02 15:04:05"),
					record.SceneName,
					fmt.Sprintf("%d", record.Frames),
					fmt.Sprintf("%.2fs", record.Duration),
					record.OutputPath,
					outcome,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Finished", "Scene", "Frames", "Duration", "Output", "Status"}, rows, 2, 3))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of builds to list")
	return cmd
}
