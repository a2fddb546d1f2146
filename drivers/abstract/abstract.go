package abstract

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/datazip-inc/olake-hubspot/constants"
	"github.com/datazip-inc/olake-hubspot/destination"
	"github.com/datazip-inc/olake-hubspot/types"
	"github.com/datazip-inc/olake-hubspot/utils"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
)

type AbstractDriver struct { //nolint:gosec,revive
	driver    DriverInterface
	state     *types.State
	validator *recordValidator
}

var DefaultColumns = map[string]types.DataType{
	constants.OlakeID:        types.String,
	constants.OlakeTimestamp: types.Timestamp,
	constants.OpType:         types.String,
}

func NewAbstractDriver(_ context.Context, driver DriverInterface) *AbstractDriver {
	return &AbstractDriver{
		driver:    driver,
		state:     types.NewState(),
		validator: newRecordValidator(),
	}
}

func (a *AbstractDriver) SetupState(state *types.State) {
	a.state = state
	a.driver.SetupState(state)
}

func (a *AbstractDriver) GetConfigRef() Config {
	return a.driver.GetConfigRef()
}

func (a *AbstractDriver) Spec() any {
	return a.driver.Spec()
}

func (a *AbstractDriver) Type() string {
	return a.driver.Type()
}

func (a *AbstractDriver) Setup(ctx context.Context) error {
	return a.driver.Setup(ctx)
}

// Discover produces the schema of every stream one at a time, retrying each on backoff.
func (a *AbstractDriver) Discover(ctx context.Context) ([]*types.Stream, error) {
	streamNames, err := a.driver.GetStreamNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream names: %s", err)
	}

	finalStreams := make([]*types.Stream, 0, len(streamNames))
	err = utils.ForEach(streamNames, func(name string) error {
		var stream *types.Stream
		err := RetryOnBackoff(ctx, a.driver.MaxRetries(), time.Second, func() (err error) {
			stream, err = a.driver.ProduceSchema(ctx, name)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to produce schema for stream %s: %s", name, err)
		}

		// add default columns
		for column, typ := range DefaultColumns {
			stream.UpsertField(column, typ, true)
		}

		stream.SyncMode = utils.Ternary(stream.SupportedSyncModes.Exists(types.INCREMENTAL), types.INCREMENTAL, types.FULLREFRESH).(types.SyncMode)
		if stream.SyncMode == types.INCREMENTAL && stream.CursorField == "" && stream.AvailableCursorFields.Len() > 0 {
			stream.CursorField = stream.AvailableCursorFields.Array()[0]
		}

		finalStreams = append(finalStreams, stream)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(finalStreams, func(i, j int) bool {
		return finalStreams[i].Name < finalStreams[j].Name
	})
	logger.Infof("Produced schema of %d streams", len(finalStreams))
	return finalStreams, nil
}

// ClearState drops the bookmarks of the given streams.
func (a *AbstractDriver) ClearState(streams []types.StreamInterface) (*types.State, error) {
	if a.state == nil {
		return types.NewState(), nil
	}

	streamIDs := make([]string, 0, len(streams))
	for _, stream := range streams {
		streamIDs = append(streamIDs, stream.ID())
	}
	a.state.ClearStreams(streamIDs...)
	return a.state, nil
}

// Read syncs incremental streams first, then full refresh streams. Streams
// are drained one at a time and state is logged after each of them.
func (a *AbstractDriver) Read(ctx context.Context, pool *destination.WriterPool, standardStreams, incrementalStreams []types.StreamInterface) error {
	for _, stream := range incrementalStreams {
		if err := a.Incremental(ctx, pool, stream); err != nil {
			return fmt.Errorf("failed to run incremental sync of stream[%s]: %s", stream.ID(), err)
		}
		a.state.LogState()
	}

	for _, stream := range standardStreams {
		if err := a.Backfill(ctx, pool, stream); err != nil {
			return fmt.Errorf("failed to run full refresh of stream[%s]: %s", stream.ID(), err)
		}
		a.state.LogState()
	}
	return nil
}

// generateThreadID creates a unique thread ID for a stream
func generateThreadID(streamID string) string {
	return fmt.Sprintf("%s_%s", streamID, utils.ULID())
}

// handleWriterCleanup closes the writer and recovers panics, then runs
// postProcess only when everything before it succeeded.
func handleWriterCleanup(ctx context.Context, err *error, writer *destination.WriterThread, threadID string, postProcess func(ctx context.Context) error) func() {
	return func() {
		if r := recover(); r != nil {
			*err = utils.Ternary(*err == nil, fmt.Errorf("panic recovered: %v", r), fmt.Errorf("%v: prev error: %w", r, *err)).(error)
		}

		if closeErr := writer.Close(ctx); closeErr != nil {
			*err = utils.Ternary(*err == nil, fmt.Errorf("failed to close writer: %s", closeErr), fmt.Errorf("failed to close writer: %s: prev error: %w", closeErr, *err)).(error)
		}

		if *err == nil && postProcess != nil {
			*err = postProcess(ctx)
		}

		if *err != nil {
			*err = fmt.Errorf("thread[%s]: %w", threadID, *err)
		}
	}
}
