package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-sorter/pkg/simplesorter"
	"github.com/tendant/simple-sorter/pkg/simplesorter/config"
)

// serviceFactory builds the service a command runs against
type serviceFactory func(configPath string) (simplesorter.Service, error)

func buildService(configPath string) (simplesorter.Service, error) {
	cfg, err := config.Load(
		config.WithEventLogging(false),
		config.WithConfigFile(configPath),
		config.WithEnv(),
	)
	if err != nil {
		return nil, err
	}
	return cfg.BuildService()
}

func main() {
	if err := newRootCmd(buildService).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(factory serviceFactory) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "sorterctl",
		Short: "Manage the display order of items",
		Long: `sorterctl lists, reorders and inserts items in a category using the
database configured through --config or the environment (DATABASE_URL,
DATABASE_TYPE, SQLITE_PATH).`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML or .env configuration file")
	rootCmd.PersistentFlags().StringVarP(&opts.category, "category", "c", simplesorter.DefaultCategory, "item category")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "output format: table, json or yaml")

	opts.factory = factory

	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(reorderCmd(opts))
	rootCmd.AddCommand(insertCmd(opts))
	rootCmd.AddCommand(searchCmd(opts))
	rootCmd.AddCommand(addCmd(opts))

	return rootCmd
}
