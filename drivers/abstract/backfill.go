package abstract

import (
	"context"
	"fmt"

	"github.com/datazip-inc/olake-hubspot/destination"
	"github.com/datazip-inc/olake-hubspot/types"
	"github.com/datazip-inc/olake-hubspot/utils"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
)

// Backfill reads the full record set of a stream and leaves no bookmark.
func (a *AbstractDriver) Backfill(ctx context.Context, pool *destination.WriterPool, stream types.StreamInterface) (err error) {
	threadID := generateThreadID(stream.ID())
	inserter, err := pool.NewWriter(ctx, stream, destination.WithIdentifier(threadID), destination.WithBackfill(true))
	if err != nil {
		return fmt.Errorf("failed to create new writer thread: %s", err)
	}
	logger.Infof("Thread[%s]: starting full refresh of stream[%s]", threadID, stream.ID())

	var count int64
	defer handleWriterCleanup(ctx, &err, inserter, threadID, func(_ context.Context) error {
		logger.Infof("Thread[%s]: finished full refresh of stream[%s], %d records", threadID, stream.ID(), count)
		return nil
	})()

	return a.driver.StreamFullRefresh(ctx, stream, func(ctx context.Context, record map[string]any) error {
		if err := a.validator.validate(stream, record); err != nil {
			return err
		}
		count++
		olakeID := utils.GetKeysHash(record, stream.GetStream().SourceDefinedPrimaryKey.Array()...)
		return inserter.Push(ctx, types.CreateRawRecord(olakeID, record, "r"))
	})
}
