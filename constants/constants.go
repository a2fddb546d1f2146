package constants

import "errors"

type DriverType string

const (
	HubSpot DriverType = "hubspot"
)

const (
	ParquetFileExt = "parquet"
	OlakeID        = "_olake_id"
	OlakeTimestamp = "_olake_timestamp"
	OpType         = "_op_type"

	// namespace every hubspot stream is discovered under
	HubSpotNamespace = "hubspot"

	DefaultRetryCount = 3
	DefaultBatchSize  = 10000
)

// viper keys shared across packages
const (
	ConfigFolder  = "CONFIG_FOLDER"
	StatePath     = "STATE_PATH"
	StreamsPath   = "STREAMS_PATH"
	EncryptionKey = "ENCRYPTION_KEY"
)

var (
	ErrNonRetryable   = errors.New("non-retryable error")
	ErrMissingPrimary = errors.New("primary key value missing from record")
)
