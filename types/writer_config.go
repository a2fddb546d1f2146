package types

type DestinationType string

const (
	Stdout  DestinationType = "STDOUT"
	Parquet DestinationType = "PARQUET"
)

// WriterConfig is the content of the --destination file.
type WriterConfig struct {
	Type         DestinationType `json:"type"`
	WriterConfig any             `json:"writer"`
	BatchSize    int             `json:"batch_size,omitempty"`
}
