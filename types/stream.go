package types

import (
	"fmt"

	"github.com/datazip-inc/olake-hubspot/utils/logger"
)

type SyncMode string

const (
	FULLREFRESH SyncMode = "full_refresh"
	INCREMENTAL SyncMode = "incremental"
)

// Stream is the discover-time description of one source collection.
type Stream struct {
	Name      string      `json:"name,omitempty"`
	Namespace string      `json:"namespace,omitempty"`
	Schema    *TypeSchema `json:"type_schema,omitempty"`

	SupportedSyncModes      *Set[SyncMode] `json:"supported_sync_modes,omitempty"`
	SourceDefinedPrimaryKey *Set[string]   `json:"source_defined_primary_key,omitempty"`
	AvailableCursorFields   *Set[string]   `json:"available_cursor_fields,omitempty"`

	// configured by the user in streams.json
	SyncMode    SyncMode `json:"sync_mode,omitempty"`
	CursorField string   `json:"cursor_field,omitempty"`

	DestinationDatabase string `json:"destination_database,omitempty"`
	DestinationTable    string `json:"destination_table,omitempty"`
}

func NewStream(name, namespace string) *Stream {
	return &Stream{
		Name:                    name,
		Namespace:               namespace,
		SupportedSyncModes:      NewSet[SyncMode](),
		SourceDefinedPrimaryKey: NewSet[string](),
		AvailableCursorFields:   NewSet[string](),
		Schema:                  NewTypeSchema(),
		DestinationDatabase:     namespace,
		DestinationTable:        name,
	}
}

func (s *Stream) ID() string {
	return fmt.Sprintf("%s.%s", s.Namespace, s.Name)
}

func (s *Stream) WithSyncMode(modes ...SyncMode) *Stream {
	s.SupportedSyncModes.Insert(modes...)
	return s
}

func (s *Stream) WithPrimaryKey(keys ...string) *Stream {
	s.SourceDefinedPrimaryKey.Insert(keys...)
	return s
}

func (s *Stream) WithCursorField(columns ...string) *Stream {
	s.AvailableCursorFields.Insert(columns...)
	return s
}

func (s *Stream) WithSchema(schema *TypeSchema) *Stream {
	s.Schema = schema
	return s
}

// UpsertField adds a column, merging types if it is already present.
func (s *Stream) UpsertField(column string, typ DataType, nullable bool) {
	types := []DataType{typ}
	if nullable {
		types = append(types, Null)
	}
	s.Schema.AddTypes(column, types...)
}

func (s *Stream) Wrap() *ConfiguredStream {
	return &ConfiguredStream{Stream: s}
}

func StreamsToMap(streams ...*Stream) map[string]*Stream {
	output := make(map[string]*Stream)
	for _, stream := range streams {
		output[stream.ID()] = stream
	}
	return output
}

// LogCatalog emits the discovered streams as a CATALOG message and stores
// them as streams.json in the config folder.
func LogCatalog(streams []*Stream) error {
	catalog := GetWrappedCatalog(streams)
	if err := logger.Emit(Message{Type: CatalogMessage, Catalog: catalog}); err != nil {
		return fmt.Errorf("failed to emit catalog: %s", err)
	}

	if err := logger.FileLogger(catalog, "streams", "json"); err != nil {
		return fmt.Errorf("failed to save streams: %s", err)
	}

	logger.Infof("Discovered %d streams", len(streams))
	return nil
}
