package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/recera/flowcanvas/cmd/flowcanvas/internal/config"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	var configPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(configPath, force)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.FileName, "Path to the config file")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")

	return cmd
}

func runInit(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.Save(config.DefaultConfig(), configPath); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	fmt.Printf("%s wrote %s\n", good.Sprint("✓"), configPath)
	return nil
}
