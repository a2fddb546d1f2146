package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/datazip-inc/olake-hubspot/destination"
	"github.com/datazip-inc/olake-hubspot/types"
	"github.com/datazip-inc/olake-hubspot/utils"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
	"github.com/spf13/cobra"
)

// syncCmd reads the selected streams from the source and writes them to the destination
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Olake sync command",
	Long:  `Sync command initiates source fetchers and destination writes and starts running sync`,
	Example: `
// Base command, records are printed to stdout:
olake sync --config path/to/config

// With destination, streams and state:
olake sync --config path/to/config --destination path/to/destination --streams path/to/streams --state path/to/state
`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath == notSet {
			return fmt.Errorf("--config not passed")
		}
		if err := utils.UnmarshalFile(configPath, connector.GetConfigRef(), true); err != nil {
			return err
		}

		destinationConfig = defaultDestination()
		if destinationConfigPath != notSet {
			if err := utils.UnmarshalFile(destinationConfigPath, destinationConfig, true); err != nil {
				return err
			}
		}

		catalog = nil
		if streamsPath != "" {
			catalog = &types.Catalog{}
			if err := utils.UnmarshalFile(streamsPath, catalog, false); err != nil {
				return err
			}
		}

		var err error
		state, err = readState()
		return err
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
			defer cancel()
		}

		if err := connector.Setup(ctx); err != nil {
			return err
		}

		streams, err := connector.Discover(ctx)
		if err != nil {
			return err
		}

		// without a streams file every discovered stream runs in its default mode
		if catalog == nil {
			catalog = types.GetWrappedCatalog(streams)
		}

		selected, err := types.IdentifySelectedStreams(catalog, streams, state)
		if err != nil {
			return err
		}
		connector.SetupState(state)

		pool, err := destination.NewWriterPool(ctx, destinationConfig, nil, int(batchSize))
		if err != nil {
			return err
		}

		started := time.Now()
		if err := connector.Read(ctx, pool, selected.StandardStreams, selected.IncrementalStreams); err != nil {
			return fmt.Errorf("error occurred while reading records: %s", err)
		}

		logger.Infof("Total records read: %d", pool.SyncedRecords())
		logger.Infof("Sync completed in %s", time.Since(started).Round(time.Millisecond))
		state.LogState()
		return nil
	},
}

func defaultDestination() *types.WriterConfig {
	return &types.WriterConfig{
		Type:         types.Stdout,
		WriterConfig: map[string]any{},
	}
}
