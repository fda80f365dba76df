package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sync"

	"github.com/arthur-debert/stgcore/pkg/config"
	"github.com/arthur-debert/stgcore/pkg/core"
	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/arthur-debert/stgcore/pkg/journal"
	"github.com/arthur-debert/stgcore/pkg/logging"
	"github.com/arthur-debert/stgcore/pkg/style"
	"github.com/arthur-debert/stgcore/pkg/toolboxes"
	"github.com/spf13/cobra"
)

type runOptions struct {
	rank           int
	size           int
	watchRank      int
	steps          int
	listComponents bool
	overrides      []string
}

func (o *runOptions) validate(cmd *cobra.Command) error {
	for name, v := range map[string]int{"rank": o.rank, "size": o.size, "watch-rank": o.watchRank, "execute": o.steps} {
		if v < 0 {
			return errors.Newf(errors.ErrInvalidInput, MsgErrNegativeFlag, name).WithDetail("flag", name)
		}
	}
	if o.size > 1 && cmd.Flags().Changed("rank") {
		return errors.New(errors.ErrInvalidInput, MsgErrRankWithSize)
	}
	return nil
}

func newRunCmd(g *globals) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:     "run <file> [toolbox args...]",
		Short:   MsgRunShort,
		Long:    MsgRunLong,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(cmd); err != nil {
				return err
			}
			r, err := g.renderer(cmd)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(args[0], opts.overrides)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("watch-rank") {
				opts.watchRank = cfg.Journal.WatchRank
			}

			logger := logging.GetLogger("cmd.run")
			logger.Info().
				Str("file", args[0]).
				Int("size", opts.size).
				Int("steps", opts.steps).
				Msg("Starting run")

			listing, err := runRanks(cmd.Context(), cfg, opts, args[1:], journalSink(cmd, cfg))
			if listing != nil {
				fmt.Fprintln(cmd.OutOrStdout(), r.RenderInstances(listing))
			}
			return err
		},
	}

	cmd.Flags().IntVar(&opts.rank, "rank", 0, MsgFlagRank)
	cmd.Flags().IntVar(&opts.size, "size", 1, MsgFlagSize)
	cmd.Flags().IntVar(&opts.watchRank, "watch-rank", 0, MsgFlagWatchRank)
	cmd.Flags().IntVarP(&opts.steps, "execute", "n", 1, MsgFlagExecute)
	cmd.Flags().BoolVar(&opts.listComponents, "list-components", false, MsgFlagListComponents)
	cmd.Flags().StringArrayVar(&opts.overrides, "set", nil, MsgFlagSet)
	return cmd
}

// loadConfig loads path with --set overrides applied.
func loadConfig(path string, pairs []string) (*config.RunConfig, error) {
	overrides, err := config.ParseOverrides(pairs)
	if err != nil {
		return nil, err
	}
	return config.LoadWithOverrides(path, overrides)
}

// journalSink picks the journal output for cfg.
func journalSink(cmd *cobra.Command, cfg *config.RunConfig) journal.Sink {
	if cfg.Journal.Format == config.JournalLog {
		return journal.NewLogSink(logging.GetLogger("journal"))
	}
	return journal.NewTextSink(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// runRanks runs every rank of the job and returns the instance listing of
// the watched rank when it was asked for.
func runRanks(ctx context.Context, cfg *config.RunConfig, opts *runOptions, args []string, sink journal.Sink) ([]style.InstanceInfo, error) {
	var (
		mu      sync.Mutex
		listing []style.InstanceInfo
	)
	fn := func(ctx context.Context, rank int, barrier core.Barrier) error {
		rows, err := runRank(ctx, cfg, opts, core.Options{
			Rank:      rank,
			Size:      opts.size,
			WatchRank: opts.watchRank,
			Sink:      sink,
			Barrier:   barrier,
			Args:      args,
		})
		if rows != nil {
			mu.Lock()
			listing = rows
			mu.Unlock()
		}
		return err
	}

	if opts.size > 1 {
		err := core.RunLocal(ctx, opts.size, fn)
		return listing, err
	}
	err := fn(ctx, opts.rank, core.SingleProcess{})
	return listing, err
}

func runRank(ctx context.Context, cfg *config.RunConfig, opts *runOptions, coreOpts core.Options) ([]style.InstanceInfo, error) {
	c := core.New(coreOpts)
	if err := toolboxes.Submit(c.Toolboxes); err != nil {
		return nil, fmt.Errorf(MsgErrSubmitToolboxes, err)
	}

	runErr := c.Run(ctx, cfg, opts.steps)

	var rows []style.InstanceInfo
	if opts.listComponents && c.Factory != nil && coreOpts.Rank == opts.watchRank {
		rows = style.InstancesOf(c.Factory)
	}
	return rows, stderrors.Join(runErr, c.Shutdown())
}

// quietSink drops normal output and keeps the error stream.
func quietSink(cmd *cobra.Command) journal.Sink {
	return journal.NewTextSink(io.Discard, cmd.ErrOrStderr())
}
