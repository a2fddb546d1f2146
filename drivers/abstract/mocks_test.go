package abstract

import (
	"context"
	"runtime"
	"sync"

	"github.com/datazip-inc/olake-hubspot/constants"
	"github.com/datazip-inc/olake-hubspot/destination"
	"github.com/datazip-inc/olake-hubspot/types"
	"github.com/spf13/viper"
)

func init() {
	// keep LogState() off the filesystem during tests
	if runtime.GOOS == "windows" {
		viper.Set(constants.StatePath, "NUL")
	} else {
		viper.Set(constants.StatePath, "/dev/null")
	}
}

const memoryType types.DestinationType = "MEMORY"

// MemoryWriter keeps written records in memory, keyed by stream ID.
type MemoryWriter struct {
	config *MemoryConfig
	stream types.StreamInterface
}

type MemoryConfig struct {
	FailWrite bool `json:"fail_write"`
}

func (c *MemoryConfig) Validate() error {
	return nil
}

type memoryStore struct {
	mu      sync.Mutex
	records map[string][]types.RawRecord
	order   []string
}

var store = newMemoryStore()

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string][]types.RawRecord{}}
}

func (w *MemoryWriter) GetConfigRef() destination.Config {
	w.config = &MemoryConfig{}
	return w.config
}

func (w *MemoryWriter) Spec() any {
	return MemoryConfig{}
}

func (w *MemoryWriter) Type() string {
	return string(memoryType)
}

func (w *MemoryWriter) Check(_ context.Context) error {
	return nil
}

func (w *MemoryWriter) Setup(_ context.Context, stream types.StreamInterface, _ *destination.Options) error {
	w.stream = stream
	store.mu.Lock()
	defer store.mu.Unlock()
	store.order = append(store.order, stream.ID())
	return nil
}

func (w *MemoryWriter) Write(_ context.Context, records []types.RawRecord) error {
	if w.config.FailWrite {
		return errWrite
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.records[w.stream.ID()] = append(store.records[w.stream.ID()], records...)
	return nil
}

func (w *MemoryWriter) DropStreams(_ context.Context, _ []types.StreamInterface) error {
	return nil
}

func (w *MemoryWriter) Close(_ context.Context) error {
	return nil
}

func init() {
	destination.RegisteredWriters[memoryType] = func() destination.Writer {
		return &MemoryWriter{}
	}
}

// createTestWriterPool resets the memory store and returns a pool writing into it
func createTestWriterPool(ctx context.Context, failWrite bool) (*destination.WriterPool, error) {
	store = newMemoryStore()
	config := &types.WriterConfig{
		Type:         memoryType,
		WriterConfig: map[string]any{"fail_write": failWrite},
	}
	return destination.NewWriterPool(ctx, config, nil, 2)
}

// MockDriver implements DriverInterface with overridable behaviour
type MockDriver struct {
	getStreamNamesFunc           func(ctx context.Context) ([]string, error)
	produceSchemaFunc            func(ctx context.Context, stream string) (*types.Stream, error)
	streamFullRefreshFunc        func(ctx context.Context, stream types.StreamInterface, cb BackfillMsgFn) error
	streamIncrementalChangesFunc func(ctx context.Context, stream types.StreamInterface, bookmark any, cb BackfillMsgFn) error
	maxRetries                   int
}

func (m *MockDriver) GetConfigRef() Config {
	return nil
}

func (m *MockDriver) Spec() any {
	return nil
}

func (m *MockDriver) Type() string {
	return "mock"
}

func (m *MockDriver) Setup(_ context.Context) error {
	return nil
}

func (m *MockDriver) SetupState(_ *types.State) {}

func (m *MockDriver) MaxRetries() int {
	return m.maxRetries
}

func (m *MockDriver) GetStreamNames(ctx context.Context) ([]string, error) {
	if m.getStreamNamesFunc != nil {
		return m.getStreamNamesFunc(ctx)
	}
	return []string{}, nil
}

func (m *MockDriver) ProduceSchema(ctx context.Context, stream string) (*types.Stream, error) {
	if m.produceSchemaFunc != nil {
		return m.produceSchemaFunc(ctx, stream)
	}
	return createMockStream(stream, types.FULLREFRESH), nil
}

func (m *MockDriver) StreamFullRefresh(ctx context.Context, stream types.StreamInterface, cb BackfillMsgFn) error {
	if m.streamFullRefreshFunc != nil {
		return m.streamFullRefreshFunc(ctx, stream, cb)
	}
	return nil
}

func (m *MockDriver) StreamIncrementalChanges(ctx context.Context, stream types.StreamInterface, bookmark any, cb BackfillMsgFn) error {
	if m.streamIncrementalChangesFunc != nil {
		return m.streamIncrementalChangesFunc(ctx, stream, bookmark, cb)
	}
	return nil
}

// emitAll feeds records to cb in order
func emitAll(ctx context.Context, cb BackfillMsgFn, records ...map[string]any) error {
	for _, record := range records {
		if err := cb(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func createMockStream(name string, syncMode types.SyncMode) *types.Stream {
	stream := types.NewStream(name, constants.HubSpotNamespace).
		WithSyncMode(types.FULLREFRESH, types.INCREMENTAL).
		WithPrimaryKey("id").
		WithCursorField("updatedAt")
	stream.SyncMode = syncMode
	stream.CursorField = "updatedAt"
	stream.UpsertField("id", types.String, false)
	stream.UpsertField("updatedAt", types.Timestamp, true)
	return stream
}

func createConfiguredStream(name string, syncMode types.SyncMode) *types.ConfiguredStream {
	return createMockStream(name, syncMode).Wrap()
}
