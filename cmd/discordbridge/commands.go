package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joebot/discordbridge/internal/bridge"
	"github.com/joebot/discordbridge/internal/cli"
)

var errCheckFailed = errors.New("bridge config has problems")

func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate settings and the bridge config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.settings()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			cli.PrintStatus(out, cfg)

			ok := true
			if err := cfg.Validate(); err != nil {
				fmt.Fprintln(out, "  "+cli.ErrStyle.Render(err.Error()))
				fmt.Fprintln(out)
				ok = false
			}
			path := cfg.BridgeConfigPath()
			bridgeCfg, err := bridge.LoadFile(path)
			if !cli.PrintCheck(out, path, bridgeCfg, err) {
				ok = false
			}
			if !ok {
				return errCheckFailed
			}
			return nil
		},
	}
}

func newRoutesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the compiled routing table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.settings()
			if err != nil {
				return err
			}
			bridgeCfg, err := bridge.LoadFile(cfg.BridgeConfigPath())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderRoutes(bridgeCfg.Destinations()))
			for _, key := range bridgeCfg.Destinations().Overrides() {
				fmt.Fprintln(out, cli.WarnStyle.Render("! "+string(key)+" is declared more than once, the last rule wins"))
			}
			return nil
		},
	}
}

func newInitCommand(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write an example bridge config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := opts.settings()
				if err != nil {
					return err
				}
				path = cfg.BridgeConfigPath()
			}
			return cli.RunInit(cmd.OutOrStdout(), path, force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Show version",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), cli.TitleStyle.Render(fmt.Sprintf("  %s discordbridge v%s", cli.Logo, cli.Version)))
		},
	}
}
