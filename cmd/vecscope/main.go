// Command vecscope serves config-defined models over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kailas-cloud/vecscope/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// globalOptions are the flags every subcommand shares.
type globalOptions struct {
	env        string
	configPath string
}

func bindGlobalFlags(fs *pflag.FlagSet, o *globalOptions) {
	fs.StringVar(&o.env, "env", config.GetEnv(), "environment: selects config/<env>.yaml and the log preset")
	fs.StringVarP(&o.configPath, "config", "c", "", "config file, overrides the --env lookup")
}

func (o *globalOptions) load() (config.Config, error) {
	if o.configPath != "" {
		return config.LoadPath(o.configPath)
	}
	return config.Load(o.env)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:          "vecscope",
		Short:        "Composable query scopes over Redis and Valkey search",
		Long:         "vecscope serves the models declared in its config over HTTP.\nWithout a subcommand it runs serve.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	bindGlobalFlags(root.PersistentFlags(), opts)
	root.AddCommand(
		newServeCmd(opts),
		newCheckCmd(opts),
		newVersionCmd(),
	)
	return root
}
