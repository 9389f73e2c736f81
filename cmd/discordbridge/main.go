package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joebot/discordbridge/internal/cli"
	"github.com/joebot/discordbridge/internal/config"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	envFile    string
	bridgeFile string
}

// settings loads process settings. --config overrides the bridge file.
func (o *rootOptions) settings() (*config.Config, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}
	if o.bridgeFile != "" {
		cfg.Bridge.ConfigFile = o.bridgeFile
	}
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "discordbridge",
		Short:         fmt.Sprintf("%s discordbridge - bridge err rooms and Discord channels v%s", cli.Logo, cli.Version),
		Example:       "discordbridge check --config bridge.yaml",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "dotenv file read for settings not in the environment")
	cmd.PersistentFlags().StringVarP(&opts.bridgeFile, "config", "c", "", "bridge config file (default from DISCORD_BRIDGE_CONFIG_FILE or BOT_DATA_DIR)")

	cmd.AddCommand(
		newRunCommand(opts),
		newCheckCommand(opts),
		newRoutesCommand(opts),
		newInitCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
