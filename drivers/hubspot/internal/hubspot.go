package driver

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/datazip-inc/olake-hubspot/constants"
	"github.com/datazip-inc/olake-hubspot/drivers/abstract"
	"github.com/datazip-inc/olake-hubspot/types"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
)

// HubSpot driver implementation
type HubSpot struct {
	config      *Config
	client      *Client
	state       *types.State
	definitions map[string]*StreamDefinition
}

func (h *HubSpot) GetConfigRef() abstract.Config {
	h.config = &Config{}
	return h.config
}

func (h *HubSpot) Spec() any {
	return Config{}
}

func (h *HubSpot) Type() string {
	return string(constants.HubSpot)
}

// Setup validates the config, builds the API client and verifies the
// credentials with a single owners request.
func (h *HubSpot) Setup(ctx context.Context) error {
	if err := h.config.Validate(); err != nil {
		return fmt.Errorf("failed to validate config: %s", err)
	}

	h.client = NewClient(ctx, h.config)
	h.definitions = streamDefinitions()

	if _, err := h.client.Get(ctx, crmV3+"/owners", url.Values{"limit": []string{"1"}}); err != nil {
		return fmt.Errorf("failed to connect to hubspot: %w", err)
	}

	logger.Info("Successfully connected to HubSpot")
	return nil
}

func (h *HubSpot) SetupState(state *types.State) {
	h.state = state
}

func (h *HubSpot) MaxRetries() int {
	return h.config.RetryCount
}

func (h *HubSpot) GetStreamNames(_ context.Context) ([]string, error) {
	return definitionNames(h.definitions), nil
}

func (h *HubSpot) ProduceSchema(ctx context.Context, streamName string) (*types.Stream, error) {
	def, err := h.definition(streamName)
	if err != nil {
		return nil, err
	}

	stream := types.NewStream(streamName, constants.HubSpotNamespace).
		WithPrimaryKey(def.PrimaryKey...).
		WithSyncMode(types.FULLREFRESH)
	if def.Incremental() {
		stream.WithSyncMode(types.INCREMENTAL).WithCursorField(def.ReplicationKey)
	}

	schema := def.Schema
	if def.ObjectType != "" {
		if schema, err = h.objectColumns(ctx, def); err != nil {
			return nil, err
		}
	}
	return stream.WithSchema(schema.schema()), nil
}

// objectColumns builds the columns of a CRM object from its property
// definitions. Property values arrive as strings, whatever their HubSpot type.
func (h *HubSpot) objectColumns(ctx context.Context, def *StreamDefinition) (columns, error) {
	properties := columns{}
	path := fmt.Sprintf("%s/properties/%s", crmV3, def.ObjectType)
	err := h.pagedFetcher(path, resultsPath, h.pageSize(def), nil)(ctx, func(_ context.Context, record map[string]any) error {
		if name, ok := record["name"].(string); ok && name != "" {
			properties[name] = stringType()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover properties of %s: %w", def.ObjectType, err)
	}

	cols := crmObjectColumns(properties)
	if def.ReplicationKey != "" {
		cols[def.ReplicationKey] = timestampType()
	}
	return cols, nil
}

func (h *HubSpot) StreamFullRefresh(ctx context.Context, stream types.StreamInterface, processFn abstract.BackfillMsgFn) error {
	return h.read(ctx, stream, nil, processFn)
}

func (h *HubSpot) StreamIncrementalChanges(ctx context.Context, stream types.StreamInterface, bookmark any, processFn abstract.BackfillMsgFn) error {
	return h.read(ctx, stream, bookmark, processFn)
}

func (h *HubSpot) read(ctx context.Context, stream types.StreamInterface, bookmark any, processFn abstract.BackfillMsgFn) error {
	def, err := h.definition(stream.Name())
	if err != nil {
		return err
	}

	properties := requestedProperties(def, stream.Schema())
	if def.fetcher != nil {
		return def.fetcher(h, def, properties)(ctx, EmitFunc(processFn))
	}

	plan := selectEndpoint(def, bookmark)
	logger.Debugf("reading stream[%s] with %s %s", stream.ID(), plan.Method, plan.Path)
	return h.readDefinition(ctx, def, plan, properties, EmitFunc(processFn))
}

func (h *HubSpot) definition(streamName string) (*StreamDefinition, error) {
	def, found := h.definitions[streamName]
	if !found {
		return nil, fmt.Errorf("%w: unknown hubspot stream %s", constants.ErrNonRetryable, streamName)
	}
	return def, nil
}

func (h *HubSpot) pageSize(def *StreamDefinition) int {
	if def.PageSize > 0 {
		return def.PageSize
	}
	return h.config.PageSize
}

// requestedProperties lists the discovered properties of a CRM object stream.
func requestedProperties(def *StreamDefinition, schema *types.TypeSchema) []string {
	if def.ObjectType == "" || schema == nil {
		return nil
	}
	found, property := schema.GetProperty("properties")
	if !found || len(property.Properties) == 0 {
		return nil
	}

	names := make([]string, 0, len(property.Properties))
	for name := range property.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
