package core

import (
	"context"
	stderrors "errors"

	"github.com/arthur-debert/stgcore/internal/version"
	"github.com/arthur-debert/stgcore/pkg/component"
	"github.com/arthur-debert/stgcore/pkg/config"
	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/arthur-debert/stgcore/pkg/factory"
	"github.com/arthur-debert/stgcore/pkg/journal"
	"github.com/arthur-debert/stgcore/pkg/logging"
	"github.com/arthur-debert/stgcore/pkg/registry"
	"github.com/arthur-debert/stgcore/pkg/toolbox"
	"github.com/rs/zerolog"
)

// StreamName is the journal stream the context writes to.
const StreamName = "StGermain"

// Options configure a new Context.
type Options struct {
	// Rank of this process and Size of the job. Size defaults to 1.
	Rank int
	Size int
	// WatchRank is the rank RPrintf writes on.
	WatchRank int
	// Sink receives journal output. Defaults to stdout/stderr text.
	Sink journal.Sink
	// Barrier synchronises ranks after the banner. Defaults to SingleProcess.
	Barrier Barrier
	// Args are handed to toolboxes.
	Args []string
}

// Context is the process-wide state of one rank.
type Context struct {
	Rank int
	Size int
	Args []string

	Types     *registry.TypeRegistry
	Toolboxes *toolbox.Manager
	Journal   *journal.Journal
	// Factory is nil until Startup succeeds.
	Factory *factory.Factory
	Barrier Barrier

	info     *journal.Stream
	logger   zerolog.Logger
	started  bool
	shutdown bool
}

// New creates the registries, catalogue and journal of one rank. Toolboxes
// are submitted to c.Toolboxes before Startup.
func New(opts Options) *Context {
	if opts.Size < 1 {
		opts.Size = 1
	}
	if opts.Barrier == nil {
		opts.Barrier = SingleProcess{}
	}

	jopts := []journal.Option{journal.WithRank(opts.Rank, opts.WatchRank)}
	if opts.Sink != nil {
		jopts = append(jopts, journal.WithSink(opts.Sink))
	}
	j := journal.New(jopts...)
	types := registry.NewTypeRegistry()

	return &Context{
		Rank:      opts.Rank,
		Size:      opts.Size,
		Args:      opts.Args,
		Types:     types,
		Toolboxes: toolbox.NewManager(types, j, opts.Args),
		Journal:   j,
		Barrier:   opts.Barrier,
		info:      j.Register(journal.Info, StreamName),
		logger:    logging.GetLogger("core").With().Int("rank", opts.Rank).Logger(),
	}
}

// Startup brings the context up for cfg. A second call is a no-op.
func (c *Context) Startup(ctx context.Context, cfg *config.RunConfig) error {
	if c.started {
		return nil
	}
	if c.shutdown {
		return errors.New(errors.ErrPhaseViolation, "context was already shut down").
			WithDetail("rank", c.Rank)
	}
	if cfg == nil {
		cfg = &config.RunConfig{}
	}

	done := logging.LogOperationStart(c.logger, "startup")
	defer done()

	c.info.RPrintf("StGermain Framework %s (%s) - %d process(es)\n", version.Version, version.Commit, c.Size)
	if err := c.Barrier.Wait(ctx); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "startup barrier failed").
			WithDetail("rank", c.Rank)
	}

	if err := c.Journal.Apply(cfg.Journal.Streams); err != nil {
		return err
	}
	if err := c.Toolboxes.LoadAll(cfg.Toolboxes); err != nil {
		c.logger.Error().Err(err).Msg("Toolbox startup failed")
		return err
	}

	c.Factory = factory.New(c.Types, c.Journal, component.Params(cfg.Params))
	c.started = true
	c.logger.Info().
		Strs("toolboxes", c.Toolboxes.InitOrder()).
		Int("types", c.Types.Count()).
		Msg("Context started")
	return nil
}

// Run starts the context if needed, constructs the configured instances and
// drives them through Build, Initialise and steps rounds of Execute. It
// does not shut down; callers defer Shutdown.
func (c *Context) Run(ctx context.Context, cfg *config.RunConfig, steps int) error {
	if err := c.Startup(ctx, cfg); err != nil {
		return err
	}

	done := logging.LogOperationStart(c.logger, "run")
	defer done()

	if err := c.Factory.ConstructAll(cfg.Components); err != nil {
		return err
	}
	if err := c.Factory.BuildAll(); err != nil {
		return err
	}
	if err := c.Factory.InitialiseAll(); err != nil {
		return err
	}
	for step := 0; step < steps; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Factory.ExecuteAll(); err != nil {
			return err
		}
		c.logger.Debug().Int("step", step+1).Msg("Step complete")
	}
	return nil
}

// Shutdown destroys every instance and finalises every initialised
// toolbox. Only the first call does work.
func (c *Context) Shutdown() error {
	if c.shutdown {
		return nil
	}
	c.shutdown = true

	var errs []error
	if c.Factory != nil {
		if err := c.Factory.DestroyAll(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.Toolboxes.FinaliseAll(); err != nil {
		errs = append(errs, err)
	}
	err := stderrors.Join(errs...)
	if err != nil {
		c.logger.Error().Err(err).Msg("Shutdown finished with errors")
	} else {
		c.logger.Debug().Msg("Shutdown complete")
	}
	return err
}

// Started reports whether Startup succeeded.
func (c *Context) Started() bool { return c.started }
