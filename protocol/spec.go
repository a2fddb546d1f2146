package protocol

import (
	"fmt"
	"strings"

	"github.com/datazip-inc/olake-hubspot/destination"
	"github.com/datazip-inc/olake-hubspot/types"
	"github.com/datazip-inc/olake-hubspot/utils"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

// specCmd prints the JSON schema of the driver config, or of a destination
// config when --destination-type is passed
var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "spec command",
	RunE: func(_ *cobra.Command, _ []string) error {
		config := connector.Spec()
		if destinationType != notSet {
			newFunc, found := destination.RegisteredWriters[types.DestinationType(strings.ToUpper(destinationType))]
			if !found {
				return fmt.Errorf("invalid destination type has been passed [%s]", destinationType)
			}
			config = newFunc().Spec()
		}

		spec, err := reflectSpec(config)
		if err != nil {
			return err
		}

		if err := logger.Emit(types.Message{Type: types.SpecMessage, Spec: spec}); err != nil {
			return err
		}
		return logger.FileLogger(map[string]any{"spec": spec}, "spec", "json")
	},
}

// reflectSpec builds an inlined JSON schema from the struct tags of config.
func reflectSpec(config any) (map[string]any, error) {
	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}

	spec := map[string]any{}
	if err := utils.Unmarshal(reflector.Reflect(config), &spec); err != nil {
		return nil, fmt.Errorf("failed to reflect config: %s", err)
	}
	delete(spec, "$schema")
	delete(spec, "$id")
	return spec, nil
}
