package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSourceStream() *Stream {
	stream := NewStream("contacts", "hubspot").
		WithSyncMode(FULLREFRESH, INCREMENTAL).
		WithPrimaryKey("id").
		WithCursorField("updatedAt")
	stream.UpsertField("id", String, false)
	stream.UpsertField("updatedAt", Timestamp, true)
	return stream
}

func TestStreamID(t *testing.T) {
	stream := NewStream("deals", "hubspot")
	assert.Equal(t, "hubspot.deals", stream.ID())
	assert.Equal(t, "hubspot", stream.DestinationDatabase)
	assert.Equal(t, "deals", stream.DestinationTable)
}

func TestConfiguredStreamValidate(t *testing.T) {
	tests := []struct {
		name        string
		configure   func(*Stream)
		expectErr   bool
		expectMode  SyncMode
		expectField string
	}{
		{
			name:       "defaults to full refresh",
			configure:  func(s *Stream) {},
			expectMode: FULLREFRESH,
		},
		{
			name:        "incremental picks the only cursor field",
			configure:   func(s *Stream) { s.SyncMode = INCREMENTAL },
			expectMode:  INCREMENTAL,
			expectField: "updatedAt",
		},
		{
			name: "unsupported sync mode",
			configure: func(s *Stream) {
				s.SyncMode = "cdc"
			},
			expectErr: true,
		},
		{
			name: "unknown cursor field",
			configure: func(s *Stream) {
				s.SyncMode = INCREMENTAL
				s.CursorField = "createdAt"
			},
			expectErr: true,
		},
		{
			name: "primary key outside source key",
			configure: func(s *Stream) {
				s.SourceDefinedPrimaryKey = NewSet("email")
			},
			expectErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			source := newSourceStream()
			configured := NewStream("contacts", "hubspot")
			tc.configure(configured)

			err := configured.Wrap().Validate(source)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectMode, configured.SyncMode)
			assert.Equal(t, tc.expectField, configured.CursorField)
			assert.Equal(t, source.Schema, configured.Schema)
			assert.Equal(t, []string{"id"}, configured.SourceDefinedPrimaryKey.Array())
		})
	}
}

func TestGetWrappedCatalog(t *testing.T) {
	streams := []*Stream{NewStream("contacts", "hubspot"), NewStream("deals", "hubspot")}
	catalog := GetWrappedCatalog(streams)

	require.Len(t, catalog.Streams, 2)
	assert.Equal(t, []StreamMetadata{{StreamName: "contacts"}, {StreamName: "deals"}}, catalog.SelectedStreams["hubspot"])
}
