package types

// Message is the envelope for everything olake writes to stdout.
type Message struct {
	Type             MessageType    `json:"type"`
	Log              *Log           `json:"log,omitempty"`
	ConnectionStatus *StatusRow     `json:"connectionStatus,omitempty"`
	State            *State         `json:"state,omitempty"`
	Catalog          *Catalog       `json:"catalog,omitempty"`
	Record           *RecordRow     `json:"record,omitempty"`
	Spec             map[string]any `json:"spec,omitempty"`
}

type Log struct {
	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
}

type StatusRow struct {
	Status  ConnectionStatus `json:"status,omitempty"`
	Message string           `json:"message,omitempty"`
}

// RecordRow is one emitted record of a stream.
type RecordRow struct {
	Stream    string         `json:"stream"`
	Namespace string         `json:"namespace,omitempty"`
	Data      map[string]any `json:"data"`
	EmittedAt int64          `json:"emitted_at"`
}

type StreamMetadata struct {
	StreamName string `json:"stream_name"`
}

// Catalog lists every stream and, per namespace, the ones selected for sync.
// A nil SelectedStreams selects everything.
type Catalog struct {
	SelectedStreams map[string][]StreamMetadata `json:"selected_streams,omitempty"`
	Streams         []*ConfiguredStream         `json:"streams,omitempty"`
}

func GetWrappedCatalog(streams []*Stream) *Catalog {
	catalog := &Catalog{
		Streams:         []*ConfiguredStream{},
		SelectedStreams: make(map[string][]StreamMetadata),
	}

	for _, stream := range streams {
		catalog.Streams = append(catalog.Streams, stream.Wrap())
		catalog.SelectedStreams[stream.Namespace] = append(catalog.SelectedStreams[stream.Namespace], StreamMetadata{
			StreamName: stream.Name,
		})
	}

	return catalog
}
