package main

import (
	"io"
	"log"

	"github.com/recera/flowcanvas/cmd/flowcanvas/internal/config"
	"github.com/recera/flowcanvas/cmd/flowcanvas/internal/ui"
	"github.com/spf13/cobra"
)

func newTUICommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the canvas in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			// Log output would corrupt the alternate screen
			log.SetOutput(io.Discard)
			return ui.Run(cfg.Seed(), cfg.Theme())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.FileName, "Path to the config file")

	return cmd
}
