package main

import (
	"context"
	"fmt"

	"github.com/revittco/dsmon/internal/counters"
	"github.com/revittco/dsmon/internal/monitor"
	"github.com/revittco/dsmon/internal/render"
	"github.com/spf13/cobra"
)

func newDBMonCmd(a *app) *cobra.Command {
	var opts monitor.Options
	cmd := &cobra.Command{
		Use:   "dbmon",
		Short: "Database, entry, DN and index cache report",
		Long: `Report cache usage of the database and of every selected backend.

--backends takes a space separated list of backend names or suffixes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSource(cmd, func(ctx context.Context, src counters.FullSource) error {
				asm := monitor.NewAssembler(src, monitor.AssemblerConfig{
					Concurrency: a.cfg.File.Report.Concurrency,
					Logger:      a.logger,
				})
				report, err := asm.Build(ctx, opts)
				if err != nil {
					return err
				}
				a.logger.Debug("report built", "backends", len(report.Backends))
				return render.Report(cmd.OutOrStdout(), a.format(), report)
			})
		},
	}
	cmd.Flags().StringVarP(&opts.Backends, "backends", "b", "", "backends to report, by name or suffix")
	cmd.Flags().BoolVarP(&opts.Indexes, "indexes", "x", false, "include per-index stats")
	return cmd
}

func newLDBMCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ldbm",
		Short: "Raw counters of the LDBM database plugin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSource(cmd, func(ctx context.Context, src counters.FullSource) error {
				set, err := src.GlobalCounters(ctx)
				if err != nil {
					return fmt.Errorf("read ldbm counters: %w", err)
				}
				return render.Status(cmd.OutOrStdout(), a.format(), set)
			})
		},
	}
}

func newBackendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backend [NAME]",
		Short: "Raw counters of one backend, or of all backends",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSource(cmd, func(ctx context.Context, src counters.FullSource) error {
				sets, err := monitor.BackendStatus(ctx, src, firstArg(args))
				if err != nil {
					return err
				}
				return render.Status(cmd.OutOrStdout(), a.format(), sets...)
			})
		},
	}
}

func newSNMPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "snmp",
		Short: "SNMP counters of the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSource(cmd, func(ctx context.Context, src counters.FullSource) error {
				set, err := src.SNMPCounters(ctx)
				if err != nil {
					return fmt.Errorf("read snmp counters: %w", err)
				}
				return render.Status(cmd.OutOrStdout(), a.format(), set)
			})
		},
	}
}

func newChainingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chaining [NAME]",
		Short: "Counters of one database link, or of all links",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSource(cmd, func(ctx context.Context, src counters.FullSource) error {
				sets, err := monitor.ChainingStatus(ctx, src, firstArg(args))
				if err != nil {
					return err
				}
				return render.Status(cmd.OutOrStdout(), a.format(), sets...)
			})
		},
	}
}

func newDiskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disk",
		Short: "Disk space of the partitions the server uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSource(cmd, func(ctx context.Context, src counters.FullSource) error {
				disks, err := monitor.Disks(ctx, src)
				if err != nil {
					return err
				}
				return render.Disks(cmd.OutOrStdout(), a.format(), disks)
			})
		},
	}
}

func newServerCmd(a *app) *cobra.Command {
	var justResources bool
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Server-wide monitor counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSource(cmd, func(ctx context.Context, src counters.FullSource) error {
				set, err := monitor.ServerStatus(ctx, src, justResources)
				if err != nil {
					return err
				}
				return render.Status(cmd.OutOrStdout(), a.format(), set)
			})
		},
	}
	cmd.Flags().BoolVarP(&justResources, "just-resources", "r", false, "only thread and connection counters")
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
