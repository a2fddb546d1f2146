package protocol

import (
	"fmt"

	"github.com/datazip-inc/olake-hubspot/destination"
	"github.com/datazip-inc/olake-hubspot/types"
	"github.com/datazip-inc/olake-hubspot/utils"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear-destination",
	Short: "Olake clear command to clear destination data and state for selected streams",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if destinationConfigPath == notSet {
			return fmt.Errorf("--destination not passed")
		} else if streamsPath == "" {
			return fmt.Errorf("--streams not passed")
		}

		destinationConfig = &types.WriterConfig{}
		if err := utils.UnmarshalFile(destinationConfigPath, destinationConfig, true); err != nil {
			return err
		}

		catalog = &types.Catalog{}
		if err := utils.UnmarshalFile(streamsPath, catalog, false); err != nil {
			return err
		}

		var err error
		state, err = readState()
		return err
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		selected, err := types.IdentifySelectedStreams(catalog, nil, state)
		if err != nil {
			return fmt.Errorf("failed to get selected streams for clearing: %s", err)
		}
		dropStreams := append(append([]types.StreamInterface{}, selected.IncrementalStreams...), selected.StandardStreams...)
		if len(dropStreams) == 0 {
			logger.Infof("No streams selected for clearing")
			return nil
		}

		// 1. clear bookmarks of the selected streams
		connector.SetupState(state)
		newState, err := connector.ClearState(dropStreams)
		if err != nil {
			return fmt.Errorf("error clearing state: %s", err)
		}
		logger.Infof("State for selected streams cleared successfully.")
		connector.SetupState(newState)

		// 2. drop their data from the destination
		if _, err := destination.NewWriterPool(cmd.Context(), destinationConfig, dropStreams, 0); err != nil {
			return fmt.Errorf("failed to initialize writer pool for dropping streams: %s", err)
		}
		logger.Infof("Successfully cleared destination data for selected streams.")
		newState.LogState()
		return nil
	},
}
