package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	catalogredis "github.com/dora-network/num2int/catalog/redis"
	"github.com/dora-network/num2int/invalidation"
	"github.com/dora-network/num2int/kafka"
	"github.com/dora-network/num2int/operator"
	"github.com/dora-network/num2int/planner"
	"github.com/dora-network/num2int/redis"
)

type catalogEntry struct {
	Key      string            `json:"key"`
	Identity operator.Identity `json:"identity"`
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and maintain the redis operator catalog",
	}
	cmd.AddCommand(newCatalogListCommand(rootOpts))
	cmd.AddCommand(newCatalogSeedCommand(rootOpts))
	cmd.AddCommand(newCatalogInvalidateCommand(rootOpts))
	return cmd
}

func newCatalogListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered comparison operators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.Config()
			if err != nil {
				return err
			}
			rdb, err := redis.NewClient(cfg.Redis)
			if err != nil {
				return err
			}
			defer rdb.Close()

			catalog := catalogredis.NewCatalog(rdb, cfg.Redis.KeyPrefix, cfg.CatalogTimeout, rootOpts.logger)
			found, err := catalog.LookupOperators(cmd.Context(), operator.Candidates())
			if err != nil {
				return err
			}
			version, err := catalog.Version(cmd.Context())
			if err != nil {
				return err
			}

			entries := make([]catalogEntry, 0, len(found))
			for key, id := range found {
				entries = append(entries, catalogEntry{Key: key.String(), Identity: id})
			}
			sort.Slice(entries, func(i, j int) bool { return entries[i].Identity < entries[j].Identity })

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"version": version, "operators": entries})
			}
			t := newTable(cmd.OutOrStdout(), "Identity", "Operator")
			for _, e := range entries {
				t.AppendRow([]any{e.Identity, e.Key})
			}
			t.AppendFooter([]any{"version", version})
			t.Render()
			return nil
		},
	}
}

func newCatalogSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		first   uint32
		all     bool
		publish bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Register the comparison operators with consecutive identities",
		Long: `Register the comparison operators with consecutive identities starting at --first.
By default only the standard set is registered: equality both ways and ordering with the
literal on the left. --all registers every candidate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if first == uint32(operator.InvalidIdentity) {
				return fmt.Errorf("--first must be positive")
			}
			keys := operator.StandardKeys()
			if all {
				keys = operator.Candidates()
			}
			ops := make(map[operator.Key]operator.Identity, len(keys))
			for i, key := range keys {
				ops[key] = operator.Identity(first) + operator.Identity(i)
			}

			cfg, err := rootOpts.Config()
			if err != nil {
				return err
			}
			rdb, err := redis.NewClient(cfg.Redis)
			if err != nil {
				return err
			}
			defer rdb.Close()

			version, err := catalogredis.SetOperators(cmd.Context(), rdb, cfg.Redis.KeyPrefix, cfg.CatalogTimeout, ops)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %d operators, catalog version %d\n", len(ops), version)

			if publish {
				return publishInvalidation(cmd, cfg, invalidation.Event{Reason: "seed", CatalogVersion: version})
			}
			return nil
		},
	}
	cmd.Flags().Uint32Var(&first, "first", 1000, "identity of the first operator")
	cmd.Flags().BoolVar(&all, "all", false, "register every candidate operator")
	cmd.Flags().BoolVar(&publish, "publish", true, "announce the change on the invalidation topic")
	return cmd
}

func newCatalogInvalidateCommand(rootOpts *RootOptions) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Tell folding workers to reload the operator catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.Config()
			if err != nil {
				return err
			}
			event := invalidation.Event{Reason: reason}
			if len(cfg.Redis.Address) > 0 {
				rdb, err := redis.NewClient(cfg.Redis)
				if err != nil {
					return err
				}
				defer rdb.Close()
				catalog := catalogredis.NewCatalog(rdb, cfg.Redis.KeyPrefix, cfg.CatalogTimeout, rootOpts.logger)
				if event.CatalogVersion, err = catalog.Version(cmd.Context()); err != nil {
					return err
				}
			}
			return publishInvalidation(cmd, cfg, event)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "manual", "reason recorded in the event")
	return cmd
}

func publishInvalidation(cmd *cobra.Command, cfg planner.Config, event invalidation.Event) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured, set NUM2INT_KAFKA_BROKERS")
	}
	client, err := kafka.NewClient(cfg.Kafka, cfg.Kafka.InvalidationTopic, "")
	if err != nil {
		return err
	}
	defer client.Close()

	if err := invalidation.Publish(cmd.Context(), client, cfg.Kafka.InvalidationTopic, event); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published invalidation %q at catalog version %d\n", event.Reason, event.CatalogVersion)
	return nil
}
