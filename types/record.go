package types

import (
	"time"
)

// RawRecord is a source record plus the olake bookkeeping columns.
type RawRecord struct {
	Data           map[string]any `json:"data"`
	OlakeID        string         `json:"_olake_id"`
	OpType         string         `json:"_op_type"` // "r" for full refresh reads, "u" for incremental upserts
	OlakeTimestamp time.Time      `json:"_olake_timestamp"`
}

func CreateRawRecord(olakeID string, data map[string]any, opType string) RawRecord {
	return RawRecord{
		OlakeID:        olakeID,
		Data:           data,
		OpType:         opType,
		OlakeTimestamp: time.Now().UTC(),
	}
}
