package types

import (
	"fmt"
)

// ConfiguredStream is a stream as selected and configured in streams.json.
type ConfiguredStream struct {
	StreamMetadata StreamMetadata `json:"-"`
	Stream         *Stream        `json:"stream,omitempty"`
}

func (s *ConfiguredStream) ID() string {
	return s.Stream.ID()
}

func (s *ConfiguredStream) Self() *ConfiguredStream {
	return s
}

func (s *ConfiguredStream) Name() string {
	return s.Stream.Name
}

func (s *ConfiguredStream) Namespace() string {
	return s.Stream.Namespace
}

func (s *ConfiguredStream) GetStream() *Stream {
	return s.Stream
}

func (s *ConfiguredStream) Schema() *TypeSchema {
	return s.Stream.Schema
}

func (s *ConfiguredStream) SupportedSyncModes() *Set[SyncMode] {
	return s.Stream.SupportedSyncModes
}

func (s *ConfiguredStream) GetSyncMode() SyncMode {
	return s.Stream.SyncMode
}

// Cursor returns the replication key of an incremental stream.
func (s *ConfiguredStream) Cursor() string {
	return s.Stream.CursorField
}

// Validate checks the configured stream against the discovered source stream
// and takes the source's schema, since the catalog on disk may be stale.
func (s *ConfiguredStream) Validate(source *Stream) error {
	if s.Stream.SyncMode == "" {
		s.Stream.SyncMode = FULLREFRESH
	}

	if !source.SupportedSyncModes.Exists(s.Stream.SyncMode) {
		return fmt.Errorf("invalid sync mode[%s]; valid are %v", s.Stream.SyncMode, source.SupportedSyncModes)
	}

	if s.Stream.SyncMode == INCREMENTAL {
		if s.Stream.CursorField == "" && source.AvailableCursorFields.Len() == 1 {
			s.Stream.CursorField = source.AvailableCursorFields.Array()[0]
		}
		if !source.AvailableCursorFields.Exists(s.Stream.CursorField) {
			return fmt.Errorf("invalid cursor field [%s]; valid are %v", s.Stream.CursorField, source.AvailableCursorFields)
		}
	}

	if s.Stream.SourceDefinedPrimaryKey.Len() > 0 && !s.Stream.SourceDefinedPrimaryKey.IsSubsetOf(source.SourceDefinedPrimaryKey) {
		return fmt.Errorf("difference found with primary keys: %v", s.Stream.SourceDefinedPrimaryKey.Difference(source.SourceDefinedPrimaryKey).Array())
	}

	s.Stream.SourceDefinedPrimaryKey = source.SourceDefinedPrimaryKey
	s.Stream.Schema = source.Schema
	return nil
}
