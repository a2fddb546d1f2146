package destination

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/datazip-inc/olake-hubspot/constants"
	"github.com/datazip-inc/olake-hubspot/types"
	"github.com/datazip-inc/olake-hubspot/utils"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
	"github.com/datazip-inc/olake-hubspot/utils/safego"
	"golang.org/x/sync/errgroup"
)

type (
	NewFunc func() Writer

	Options struct {
		Identifier string
		Number     int64
		Backfill   bool
	}

	ThreadOptions func(opt *Options)

	WriterPool struct {
		batchSize     int
		totalRecords  atomic.Int64
		recordCount   atomic.Int64
		ThreadCounter atomic.Int64 // used in naming files and as a global count of threads
		config        any          // respective writer config
		init          NewFunc      // to initialize exclusive destination threads
	}
)

var RegisteredWriters = map[types.DestinationType]NewFunc{}

func WithIdentifier(identifier string) ThreadOptions {
	return func(opt *Options) {
		opt.Identifier = identifier
	}
}

func WithBackfill(backfill bool) ThreadOptions {
	return func(opt *Options) {
		opt.Backfill = backfill
	}
}

// NewWriterPool checks the destination once and clears dropStreams when given.
// batchSize overrides the writer config's batch size when positive.
func NewWriterPool(ctx context.Context, config *types.WriterConfig, dropStreams []types.StreamInterface, batchSize int) (*WriterPool, error) {
	newfunc, found := RegisteredWriters[config.Type]
	if !found {
		return nil, fmt.Errorf("invalid destination type has been passed [%s]", config.Type)
	}

	adapter := newfunc()
	if err := utils.Unmarshal(config.WriterConfig, adapter.GetConfigRef()); err != nil {
		return nil, err
	}

	if err := adapter.GetConfigRef().Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate destination config: %s", err)
	}

	if err := adapter.Check(ctx); err != nil {
		return nil, fmt.Errorf("failed to test destination: %s", err)
	}

	if dropStreams != nil {
		if err := adapter.DropStreams(ctx, dropStreams); err != nil {
			return nil, fmt.Errorf("failed to clear destination: %s", err)
		}
	}

	if batchSize <= 0 {
		batchSize = utils.Ternary(config.BatchSize > 0, config.BatchSize, constants.DefaultBatchSize).(int)
	}
	return &WriterPool{
		batchSize: batchSize,
		config:    config.WriterConfig,
		init:      newfunc,
	}, nil
}

// WriterThread buffers records of one stream and hands full batches to a
// writer goroutine. A thread is not safe for concurrent Push calls.
type WriterThread struct {
	pool      *WriterPool
	stream    types.StreamInterface
	writer    Writer
	buffer    []types.RawRecord
	batchChan chan []types.RawRecord
	group     *errgroup.Group
	groupCtx  context.Context
}

// NewWriter initializes a fresh writer instance for the stream.
func (w *WriterPool) NewWriter(ctx context.Context, stream types.StreamInterface, options ...ThreadOptions) (*WriterThread, error) {
	opts := &Options{Number: w.ThreadCounter.Add(1)}
	for _, one := range options {
		one(opts)
	}

	writer := w.init()
	if err := utils.Unmarshal(w.config, writer.GetConfigRef()); err != nil {
		return nil, err
	}

	if err := writer.Setup(ctx, stream, opts); err != nil {
		return nil, fmt.Errorf("failed to setup writer thread[%d]: %s", opts.Number, err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	thread := &WriterThread{
		pool:      w,
		stream:    stream,
		writer:    writer,
		buffer:    make([]types.RawRecord, 0, w.batchSize),
		batchChan: make(chan []types.RawRecord, 1),
		group:     group,
		groupCtx:  groupCtx,
	}

	group.Go(func() error {
		for batch := range thread.batchChan {
			// a panicking writer fails its stream instead of the process
			err := safego.Go(func() error { return writer.Write(groupCtx, batch) })
			if err != nil {
				return fmt.Errorf("failed to write records of stream[%s]: %s", stream.ID(), err)
			}
			w.recordCount.Add(int64(len(batch)))
		}
		return nil
	})

	return thread, nil
}

func (t *WriterThread) Push(ctx context.Context, record types.RawRecord) error {
	t.buffer = append(t.buffer, record)
	t.pool.totalRecords.Add(1)
	if len(t.buffer) < t.pool.batchSize {
		return nil
	}
	return t.flush(ctx)
}

func (t *WriterThread) flush(ctx context.Context) error {
	if len(t.buffer) == 0 {
		return nil
	}

	select {
	case t.batchChan <- t.buffer:
		t.buffer = make([]types.RawRecord, 0, t.pool.batchSize)
		return nil
	case <-t.groupCtx.Done():
		return fmt.Errorf("writer thread stopped: %w", context.Cause(t.groupCtx))
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes what is buffered, waits for pending batches and closes the writer.
func (t *WriterThread) Close(ctx context.Context) error {
	flushErr := t.flush(ctx)
	close(t.batchChan)

	return utils.ErrExecSequential(
		func() error { return flushErr },
		t.group.Wait,
		func() error {
			if err := t.writer.Close(ctx); err != nil {
				return fmt.Errorf("failed to close writer of stream[%s]: %s", t.stream.ID(), err)
			}
			logger.Debugf("closed writer thread of stream[%s]", t.stream.ID())
			return nil
		},
	)
}

// Returns total records written to the destination at runtime
func (w *WriterPool) SyncedRecords() int64 {
	return w.recordCount.Load()
}

// Returns total records pushed into writer threads
func (w *WriterPool) GetRecordsToSync() int64 {
	return w.totalRecords.Load()
}
