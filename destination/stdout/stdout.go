package stdout

import (
	"context"
	"fmt"
	"io"

	"github.com/datazip-inc/olake-hubspot/constants"
	"github.com/datazip-inc/olake-hubspot/destination"
	"github.com/datazip-inc/olake-hubspot/types"
	"github.com/datazip-inc/olake-hubspot/utils"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
	"github.com/goccy/go-json"
)

type Config struct {
	// IncludeOlakeColumns adds _olake_id, _op_type and _olake_timestamp to each emitted record
	IncludeOlakeColumns bool `json:"include_olake_columns,omitempty"`
}

func (c *Config) Validate() error {
	return utils.Validate(c)
}

// Stdout writes every record as a single-line RECORD message, sharing the
// protocol output with state and catalog messages unless out is set.
type Stdout struct {
	config *Config
	stream types.StreamInterface
	out    io.Writer
}

func (s *Stdout) GetConfigRef() destination.Config {
	s.config = &Config{}
	return s.config
}

func (s *Stdout) Spec() any {
	return Config{}
}

func (s *Stdout) Type() string {
	return string(types.Stdout)
}

func (s *Stdout) Check(_ context.Context) error {
	return nil
}

func (s *Stdout) Setup(_ context.Context, stream types.StreamInterface, _ *destination.Options) error {
	s.stream = stream
	return nil
}

func (s *Stdout) Write(ctx context.Context, records []types.RawRecord) error {
	emit := logger.Emit
	if s.out != nil {
		emit = json.NewEncoder(s.out).Encode
	}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		data := record.Data
		if s.config != nil && s.config.IncludeOlakeColumns {
			data = make(map[string]any, len(record.Data)+3)
			for key, value := range record.Data {
				data[key] = value
			}
			data[constants.OlakeID] = record.OlakeID
			data[constants.OpType] = record.OpType
			data[constants.OlakeTimestamp] = record.OlakeTimestamp
		}

		message := types.Message{
			Type: types.RecordMessage,
			Record: &types.RecordRow{
				Stream:    s.stream.Name(),
				Namespace: s.stream.Namespace(),
				Data:      data,
				EmittedAt: record.OlakeTimestamp.UnixMilli(),
			},
		}
		if err := emit(message); err != nil {
			return fmt.Errorf("failed to emit record: %s", err)
		}
	}
	return nil
}

// DropStreams is a no-op; nothing is retained on stdout.
func (s *Stdout) DropStreams(_ context.Context, _ []types.StreamInterface) error {
	return nil
}

func (s *Stdout) Close(_ context.Context) error {
	return nil
}

func init() {
	destination.RegisteredWriters[types.Stdout] = func() destination.Writer {
		return new(Stdout)
	}
}
