package abstract

import (
	"context"

	"github.com/datazip-inc/olake-hubspot/types"
)

type BackfillMsgFn func(ctx context.Context, message map[string]any) error

type Config interface {
	Validate() error
}

type DriverInterface interface {
	GetConfigRef() Config
	Spec() any
	Type() string
	// specific to test & setup
	Setup(ctx context.Context) error
	SetupState(state *types.State)
	// sync artifacts
	MaxRetries() int
	// specific to discover
	GetStreamNames(ctx context.Context) ([]string, error)
	ProduceSchema(ctx context.Context, stream string) (*types.Stream, error)
	// specific to full refresh
	StreamFullRefresh(ctx context.Context, stream types.StreamInterface, processFn BackfillMsgFn) error
	// incremental specific; bookmark is nil on the first sync of a stream
	StreamIncrementalChanges(ctx context.Context, stream types.StreamInterface, bookmark any, processFn BackfillMsgFn) error
}
