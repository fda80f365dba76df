package commands

import (
	stderrors "errors"
	"fmt"

	"github.com/arthur-debert/stgcore/pkg/config"
	"github.com/arthur-debert/stgcore/pkg/core"
	"github.com/arthur-debert/stgcore/pkg/style"
	"github.com/arthur-debert/stgcore/pkg/toolboxes"
	"github.com/spf13/cobra"
)

// startContext submits the demo toolboxes and initialises the ones named
// by the optional run description. With no file, every toolbox is
// initialised when all is set.
func startContext(cmd *cobra.Command, args []string, all bool) (*core.Context, error) {
	c := core.New(core.Options{Sink: quietSink(cmd)})
	if err := toolboxes.Submit(c.Toolboxes); err != nil {
		return nil, fmt.Errorf(MsgErrSubmitToolboxes, err)
	}

	cfg := &config.RunConfig{}
	if len(args) > 0 {
		loaded, err := config.Load(args[0])
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if all {
		cfg.Toolboxes = c.Toolboxes.Names()
	}

	if err := c.Startup(cmd.Context(), cfg); err != nil {
		return nil, stderrors.Join(err, c.Shutdown())
	}
	return c, nil
}

func newTypesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "types [file]",
		Short:   MsgTypesShort,
		Long:    MsgTypesLong,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := g.renderer(cmd)
			if err != nil {
				return err
			}
			c, err := startContext(cmd, args, true)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.RenderTypeTree(style.TypesOf(c.Types)))
			return c.Shutdown()
		},
	}
}

func newToolboxesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "toolboxes [file]",
		Short:   MsgToolboxesShort,
		Long:    MsgToolboxesLong,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := g.renderer(cmd)
			if err != nil {
				return err
			}
			c, err := startContext(cmd, args, false)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.RenderToolboxes(style.ToolboxesOf(c.Toolboxes)))
			return c.Shutdown()
		},
	}
}

func newConfigCmd() *cobra.Command {
	var (
		format    string
		overrides []string
	)

	cmd := &cobra.Command{
		Use:     "config <file>",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(args[0], overrides)
			if err != nil {
				return err
			}
			out, err := cfg.Render(f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(config.FormatTOML), MsgFlagConfigFormat)
	cmd.Flags().StringArrayVar(&overrides, "set", nil, MsgFlagSet)
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(config.Formats))
		for i, f := range config.Formats {
			names[i] = string(f)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
