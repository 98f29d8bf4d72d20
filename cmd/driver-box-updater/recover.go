package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/markmybytes/driver-box-updater/internal/install"
	"github.com/markmybytes/driver-box-updater/internal/messages"
)

func newRollbackCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.RollbackUse,
		Short: messages.RollbackShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := openBackup(cmd, opts)
			if err != nil {
				return err
			}
			if err := inst.Rollback(); err != nil {
				return err
			}
			_, _ = successColor.Fprintln(cmd.OutOrStdout(), messages.RollbackDone)
			return nil
		},
	}
}

func newDiscardCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.DiscardUse,
		Short: messages.DiscardShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := openBackup(cmd, opts)
			if err != nil {
				return err
			}
			if err := inst.Commit(); err != nil {
				return err
			}
			_, _ = successColor.Fprintln(cmd.OutOrStdout(), messages.DiscardDone)
			return nil
		},
	}
}

// openBackup returns the installation at the app directory, failing when it holds no backup.
func openBackup(cmd *cobra.Command, opts *rootOptions) (*install.Installation, error) {
	root, err := resolveAppDir(opts.appDir)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
	inst, err := install.New(root, install.RealSystem{}, logger)
	if err != nil {
		return nil, err
	}
	ok, err := inst.HasBackup()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf(messages.RollbackNoBackupFmt, root)
	}
	if m, err := inst.ReadManifest(); err == nil {
		logger.Info("found update backup", "created", m.CreatedAtUTC, "from", m.FromVersion, "to", m.ToVersion, "moved", m.Moved)
	} else {
		logger.Warn("backup manifest unreadable", "err", err)
	}
	return inst, nil
}
