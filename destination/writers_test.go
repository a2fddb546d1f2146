package destination

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/datazip-inc/olake-hubspot/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const memoryType types.DestinationType = "MEMORY"

type memoryConfig struct {
	FailWrite bool `json:"fail_write"`
}

func (c *memoryConfig) Validate() error { return nil }

type memoryStore struct {
	mu      sync.Mutex
	batches [][]types.RawRecord
	dropped []string
	closed  int
}

var store = &memoryStore{}

type memoryWriter struct {
	config *memoryConfig
}

func (m *memoryWriter) GetConfigRef() Config {
	m.config = &memoryConfig{}
	return m.config
}
func (m *memoryWriter) Spec() any                     { return memoryConfig{} }
func (m *memoryWriter) Type() string                  { return string(memoryType) }
func (m *memoryWriter) Check(_ context.Context) error { return nil }
func (m *memoryWriter) Setup(_ context.Context, _ types.StreamInterface, _ *Options) error {
	return nil
}

func (m *memoryWriter) Write(_ context.Context, records []types.RawRecord) error {
	if m.config.FailWrite {
		return errors.New("boom")
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.batches = append(store.batches, records)
	return nil
}

func (m *memoryWriter) DropStreams(_ context.Context, streams []types.StreamInterface) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, stream := range streams {
		store.dropped = append(store.dropped, stream.ID())
	}
	return nil
}

func (m *memoryWriter) Close(_ context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.closed++
	return nil
}

func init() {
	RegisteredWriters[memoryType] = func() Writer { return &memoryWriter{} }
}

func resetStore() {
	store = &memoryStore{}
}

func TestNewWriterPoolUnknownType(t *testing.T) {
	_, err := NewWriterPool(context.Background(), &types.WriterConfig{Type: "UNKNOWN"}, nil, 0)
	assert.Error(t, err)
}

func TestWriterPoolBatches(t *testing.T) {
	resetStore()
	ctx := context.Background()
	stream := types.NewStream("contacts", "hubspot").Wrap()

	pool, err := NewWriterPool(ctx, &types.WriterConfig{Type: memoryType, WriterConfig: map[string]any{}}, []types.StreamInterface{stream}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"hubspot.contacts"}, store.dropped)

	thread, err := pool.NewWriter(ctx, stream)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, thread.Push(ctx, types.RawRecord{Data: map[string]any{"id": i}}))
	}
	require.NoError(t, thread.Close(ctx))

	assert.Equal(t, int64(5), pool.SyncedRecords())
	assert.Equal(t, int64(5), pool.GetRecordsToSync())
	require.Len(t, store.batches, 3)
	assert.Len(t, store.batches[0], 2)
	assert.Len(t, store.batches[2], 1)
	assert.Equal(t, 1, store.closed)
}

func TestWriterThreadWriteFailure(t *testing.T) {
	resetStore()
	ctx := context.Background()
	stream := types.NewStream("deals", "hubspot").Wrap()

	pool, err := NewWriterPool(ctx, &types.WriterConfig{Type: memoryType, WriterConfig: map[string]any{"fail_write": true}}, nil, 1)
	require.NoError(t, err)

	thread, err := pool.NewWriter(ctx, stream)
	require.NoError(t, err)

	var pushErr error
	for i := 0; i < 5 && pushErr == nil; i++ {
		pushErr = thread.Push(ctx, types.RawRecord{Data: map[string]any{"id": i}})
	}
	err = thread.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, int64(0), pool.SyncedRecords())
	assert.Equal(t, 1, store.closed, "writer is closed even when a batch fails")
}
