package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bamsammich/fileops/internal/config"
	"github.com/bamsammich/fileops/internal/fileop"
	"github.com/bamsammich/fileops/internal/stats"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
		// The config commands must work even when the file is broken.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, false)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			path := a.configPath()
			if path == "" {
				return errors.New("cannot determine config directory")
			}
			fmt.Fprintln(a.stdout, path)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file holding the built-in defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			path := a.configPath()
			if path == "" {
				return errors.New("cannot determine config directory")
			}
			if a.files.Exists(ctx, path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			data, err := config.Encode(defaultsConfig())
			if err != nil {
				return err
			}
			if err := a.files.EnsureDir(filepath.Dir(path)); err != nil {
				return err
			}
			if err := a.files.WriteAtomic(ctx, path, data); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}

// defaultsConfig renders fileop's built-in defaults as a config file.
func defaultsConfig() config.Config {
	def := fileop.DefaultConfig()
	bufferSize := stats.FormatBytes(int64(def.BufferSize))
	bwLimit := "0"
	lineEnding := "lf"
	dispatch := def.Dispatch.String()
	workers := def.Workers
	off := false
	return config.Config{
		Defaults: config.DefaultsConfig{
			BufferSize:     &bufferSize,
			BWLimit:        &bwLimit,
			LineEnding:     &lineEnding,
			Dispatch:       &dispatch,
			Workers:        &workers,
			Verify:         &off,
			FollowSymlinks: &off,
			Atomic:         &off,
		},
	}
}
