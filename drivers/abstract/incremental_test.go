package abstract

import (
	"context"
	"errors"
	"testing"

	"github.com/datazip-inc/olake-hubspot/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementalBookmark(t *testing.T) {
	tests := []struct {
		name           string
		bookmark       any
		records        []map[string]any
		expectBookmark any
	}{
		{
			name:     "advances to the largest cursor value",
			bookmark: "2023-01-01T00:00:00Z",
			records: []map[string]any{
				{"id": "1", "updatedAt": "2022-12-01"},
				{"id": "2", "updatedAt": "2023-02-01"},
			},
			expectBookmark: "2023-02-01",
		},
		{
			name:     "never regresses below the previous bookmark",
			bookmark: "2023-03-01T00:00:00Z",
			records: []map[string]any{
				{"id": "1", "updatedAt": "2023-02-01T00:00:00Z"},
			},
			expectBookmark: "2023-03-01T00:00:00Z",
		},
		{
			name:     "records without the cursor are skipped",
			bookmark: "2023-01-01T00:00:00Z",
			records: []map[string]any{
				{"id": "1"},
				{"id": "2", "updatedAt": nil},
			},
			expectBookmark: "2023-01-01T00:00:00Z",
		},
		{
			name:     "first sync sets the bookmark",
			bookmark: nil,
			records: []map[string]any{
				{"id": "1", "updatedAt": "2023-01-05T10:00:00.000Z"},
				{"id": "2", "updatedAt": "2023-01-04T10:00:00.000Z"},
			},
			expectBookmark: "2023-01-05T10:00:00.000Z",
		},
		{
			name:           "no records and no bookmark",
			bookmark:       nil,
			records:        nil,
			expectBookmark: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			stream := createConfiguredStream("contacts", types.INCREMENTAL)
			state := types.NewState()
			if tc.bookmark != nil {
				state.SetCursor(stream, "updatedAt", tc.bookmark)
			}

			var received any
			driver := &MockDriver{
				streamIncrementalChangesFunc: func(ctx context.Context, _ types.StreamInterface, bookmark any, cb BackfillMsgFn) error {
					received = bookmark
					return emitAll(ctx, cb, tc.records...)
				},
			}
			abstractDriver := NewAbstractDriver(ctx, driver)
			abstractDriver.SetupState(state)

			pool, err := createTestWriterPool(ctx, false)
			require.NoError(t, err)
			require.NoError(t, abstractDriver.Incremental(ctx, pool, stream))

			assert.Equal(t, tc.bookmark, received, "driver receives the stored bookmark")
			assert.Equal(t, tc.expectBookmark, state.GetCursor(stream, "updatedAt"))
			for _, record := range store.records[stream.ID()] {
				assert.Equal(t, "u", record.OpType)
			}
		})
	}
}

func TestIncrementalFailureKeepsBookmark(t *testing.T) {
	tests := []struct {
		name       string
		failWrite  bool
		fetchError error
	}{
		{name: "fetch error", fetchError: errors.New("fetch failed")},
		{name: "write error", failWrite: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			stream := createConfiguredStream("deals", types.INCREMENTAL)
			state := types.NewState()
			state.SetCursor(stream, "updatedAt", "2023-01-01T00:00:00Z")

			driver := &MockDriver{
				streamIncrementalChangesFunc: func(ctx context.Context, _ types.StreamInterface, _ any, cb BackfillMsgFn) error {
					if err := emitAll(ctx, cb,
						map[string]any{"id": "1", "updatedAt": "2023-05-01T00:00:00Z"},
						map[string]any{"id": "2", "updatedAt": "2023-06-01T00:00:00Z"},
						map[string]any{"id": "3", "updatedAt": "2023-07-01T00:00:00Z"},
					); err != nil {
						return err
					}
					return tc.fetchError
				},
			}
			abstractDriver := NewAbstractDriver(ctx, driver)
			abstractDriver.SetupState(state)

			pool, err := createTestWriterPool(ctx, tc.failWrite)
			require.NoError(t, err)

			require.Error(t, abstractDriver.Incremental(ctx, pool, stream))
			assert.Equal(t, "2023-01-01T00:00:00Z", state.GetCursor(stream, "updatedAt"), "bookmark not committed on failure")
		})
	}
}

func TestMaxIncrementCursor(t *testing.T) {
	assert.Equal(t, "2023-02-01", maxIncrementCursor("updatedAt", nil, map[string]any{"updatedAt": "2023-02-01"}))
	assert.Equal(t, "2023-02-01", maxIncrementCursor("updatedAt", "2023-02-01", map[string]any{"updatedAt": "2023-01-01"}))
	assert.Equal(t, "2023-02-01", maxIncrementCursor("updatedAt", "2023-02-01", map[string]any{"other": "x"}))
}
