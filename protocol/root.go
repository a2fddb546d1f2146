package protocol

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/datazip-inc/olake-hubspot/constants"
	"github.com/datazip-inc/olake-hubspot/drivers/abstract"
	"github.com/datazip-inc/olake-hubspot/types"
	"github.com/datazip-inc/olake-hubspot/utils"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const notSet = "not-set"

var (
	configPath            string
	destinationConfigPath string
	statePath             string
	streamsPath           string
	batchSize             int64
	noSave                bool
	debug                 bool
	encryptionKey         string
	destinationType       string
	timeout               int64 // timeout in seconds
	catalog               *types.Catalog
	state                 *types.State
	destinationConfig     *types.WriterConfig

	commands  = []*cobra.Command{}
	connector *abstract.AbstractDriver
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "olake",
	Short: "root command",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		setupPaths()
		if encryptionKey != "" {
			viper.Set(constants.EncryptionKey, encryptionKey)
		}
		viper.Set("DEBUG", debug)

		// logger uses CONFIG_FOLDER
		logger.Init()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		if ok := utils.IsValidSubcommand(commands, args[0]); !ok {
			return fmt.Errorf("'%s' is an invalid command. Use 'olake --help' to display usage guide", args[0])
		}
		return nil
	},
}

// setupPaths resolves the artifact paths; they default next to the config file
// unless --no-save keeps them in the temp directory.
func setupPaths() {
	viper.SetDefault(constants.ConfigFolder, os.TempDir())
	viper.SetDefault(constants.StatePath, filepath.Join(os.TempDir(), "state.json"))
	viper.SetDefault(constants.StreamsPath, filepath.Join(os.TempDir(), "streams.json"))
	if noSave {
		return
	}

	configFolder := utils.Ternary(configPath == notSet, filepath.Dir(destinationConfigPath), filepath.Dir(configPath)).(string)
	viper.Set(constants.ConfigFolder, configFolder)
	viper.Set(constants.StatePath, utils.Ternary(statePath == "", filepath.Join(configFolder, "state.json"), statePath).(string))
	viper.Set(constants.StreamsPath, utils.Ternary(streamsPath == "", filepath.Join(configFolder, "streams.json"), streamsPath).(string))
}

func CreateRootCommand(_ bool, driver any) *cobra.Command {
	RootCmd.AddCommand(commands...)
	connector = abstract.NewAbstractDriver(RootCmd.Context(), driver.(abstract.DriverInterface))

	return RootCmd
}

// readState loads --state when passed, otherwise starts from an empty state.
func readState() (*types.State, error) {
	loaded := types.NewState()
	if statePath == "" {
		return loaded, nil
	}
	if err := utils.UnmarshalFile(statePath, loaded, false); err != nil {
		return nil, err
	}
	return loaded, nil
}

func init() {
	commands = append(commands, specCmd, checkCmd, discoverCmd, syncCmd, clearCmd)
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "", notSet, "(Required) Config for connector")
	RootCmd.PersistentFlags().StringVarP(&destinationConfigPath, "destination", "", notSet, "Destination config for connector; records are printed to stdout when not passed")
	RootCmd.PersistentFlags().StringVarP(&destinationType, "destination-type", "", notSet, "Destination type for spec")
	RootCmd.PersistentFlags().StringVarP(&streamsPath, "catalog", "", "", "Path to the streams file for the connector")
	RootCmd.PersistentFlags().StringVarP(&streamsPath, "streams", "", "", "Path to the streams file for the connector")
	RootCmd.PersistentFlags().StringVarP(&statePath, "state", "", "", "(Optional) State for connector")
	RootCmd.PersistentFlags().Int64VarP(&batchSize, "destination-buffer-size", "", constants.DefaultBatchSize, "(Optional) Batch size for destination")
	RootCmd.PersistentFlags().BoolVarP(&noSave, "no-save", "", false, "(Optional) Flag to skip logging artifacts in file")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "", false, "(Optional) Enable debug logs")
	RootCmd.PersistentFlags().StringVarP(&encryptionKey, "encryption-key", "", "", "(Optional) Decryption key. Provide the ARN of a KMS key or a passphrase.")
	RootCmd.PersistentFlags().Int64VarP(&timeout, "timeout", "", -1, "(Optional) Timeout for sync (in seconds)")
	// Disable Cobra CLI's built-in usage and error handling
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
}
