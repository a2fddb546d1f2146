package abstract

import (
	"context"
	"fmt"

	"github.com/datazip-inc/olake-hubspot/destination"
	"github.com/datazip-inc/olake-hubspot/types"
	"github.com/datazip-inc/olake-hubspot/utils"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
	"github.com/datazip-inc/olake-hubspot/utils/typeutils"
)

// Incremental reads a stream from its bookmark and advances the bookmark to
// the largest cursor value seen. The bookmark is saved only when every
// record reached the destination.
func (a *AbstractDriver) Incremental(ctx context.Context, pool *destination.WriterPool, stream types.StreamInterface) (err error) {
	cursorField := stream.Cursor()
	if cursorField == "" {
		return fmt.Errorf("cursor field not set for incremental stream[%s]", stream.ID())
	}

	bookmark := a.state.GetCursor(stream.Self(), cursorField)
	maxCursorValue := bookmark
	logger.Infof("Starting incremental sync of stream[%s] from %s=%v", stream.ID(), cursorField, bookmark)

	threadID := generateThreadID(stream.ID())
	inserter, err := pool.NewWriter(ctx, stream, destination.WithIdentifier(threadID))
	if err != nil {
		return fmt.Errorf("failed to create new writer thread: %s", err)
	}

	var count int64
	defer handleWriterCleanup(ctx, &err, inserter, threadID, func(_ context.Context) error {
		if maxCursorValue != nil {
			a.state.SetCursor(stream.Self(), cursorField, typeutils.FormatCursorValue(maxCursorValue))
		}
		logger.Infof("Thread[%s]: finished incremental sync of stream[%s], %d records, %s=%v", threadID, stream.ID(), count, cursorField, maxCursorValue)
		return nil
	})()

	return a.driver.StreamIncrementalChanges(ctx, stream, bookmark, func(ctx context.Context, record map[string]any) error {
		if err := a.validator.validate(stream, record); err != nil {
			return err
		}
		maxCursorValue = maxIncrementCursor(cursorField, maxCursorValue, record)
		count++
		olakeID := utils.GetKeysHash(record, stream.GetStream().SourceDefinedPrimaryKey.Array()...)
		return inserter.Push(ctx, types.CreateRawRecord(olakeID, record, "u"))
	})
}

// maxIncrementCursor returns the larger of current and the record's cursor
// value. Records without the cursor leave current untouched.
func maxIncrementCursor(cursorField string, current any, record map[string]any) any {
	value, found := record[cursorField]
	if !found || value == nil {
		logger.Debugf("record without cursor field[%s], bookmark unchanged", cursorField)
		return current
	}
	return utils.Ternary(typeutils.Compare(value, current) == 1, value, current)
}
