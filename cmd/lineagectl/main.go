// Command lineagectl queries the lineage graph from a terminal, against
// Neo4j or a YAML seed file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vocal-lineage/backend/internal/util"
	"github.com/vocal-lineage/backend/pkg/logger"
	"github.com/vocal-lineage/backend/pkg/logger/console"
	"github.com/vocal-lineage/backend/pkg/store"
	"github.com/vocal-lineage/backend/pkg/store/memory"
	neo4jstore "github.com/vocal-lineage/backend/pkg/store/neo4j"

	"github.com/spf13/cobra"
)

func main() {
	util.LoadEnv()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	seed  string
	json  bool
	debug bool
}

// open returns the seeded in-memory store when --seed is given and Neo4j
// otherwise.
func (o *options) open(ctx context.Context) (store.GraphStore, error) {
	if o.seed != "" {
		s, err := memory.LoadFile(o.seed)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	s, err := neo4jstore.Connect(ctx, neo4jstore.Config{
		URI:            util.GetEnvString("NEO4J_URI", "neo4j://localhost:7687"),
		Username:       util.GetEnv("NEO4J_USER"),
		Password:       util.GetEnv("NEO4J_PASSWORD"),
		Database:       util.GetEnv("NEO4J_DATABASE"),
		ConnectRetries: 1,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// withStore opens the store, runs fn and closes the store again.
func (o *options) withStore(cmd *cobra.Command, fn func(ctx context.Context, s store.GraphStore) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(context.Background()); err != nil {
			logger.Warn("[CLI] Failed to close store", "err", err)
		}
	}()
	return fn(ctx, s)
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "lineagectl",
		Short:         "Query the vocal lineage graph",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
				Debug:  opts.debug || util.GetEnvBool("DEBUG", false),
				Prefix: "lineagectl",
				Output: cmd.ErrOrStderr(),
			}))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.seed, "seed", util.GetEnv("STORE_SEED_FILE"), "YAML seed file to query instead of Neo4j")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print JSON instead of text")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		pathCmd(opts),
		neighborhoodCmd(opts),
		countsCmd(opts),
		searchCmd(opts),
	)
	return cmd
}
