package types

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/datazip-inc/olake-hubspot/constants"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
	"github.com/goccy/go-json"
	"github.com/spf13/viper"
)

type StateType string

const (
	StreamType StateType = "STREAM"
)

// State holds one bookmark map per stream. It is shared by every stream of
// a run, so all access goes through the embedded lock.
type State struct {
	*sync.RWMutex `json:"-"`
	Type          StateType      `json:"type"`
	Streams       []*StreamState `json:"streams,omitempty"`
}

type StreamState struct {
	HoldsValue atomic.Bool `json:"-"`

	Stream    string   `json:"stream"`
	Namespace string   `json:"namespace"`
	SyncMode  string   `json:"sync_mode"`
	State     sync.Map `json:"-"`
}

func NewState() *State {
	return &State{
		RWMutex: &sync.RWMutex{},
		Type:    StreamType,
		Streams: []*StreamState{},
	}
}

func (s *State) ResetStreams() {
	s.Lock()
	defer s.Unlock()
	s.Streams = []*StreamState{}
}

func (s *State) streamState(stream *ConfiguredStream) *StreamState {
	for _, streamState := range s.Streams {
		if streamState.Stream == stream.Name() && streamState.Namespace == stream.Namespace() {
			return streamState
		}
	}
	return nil
}

// GetCursor returns the bookmark stored under key, nil when absent.
func (s *State) GetCursor(stream *ConfiguredStream, key string) any {
	s.RLock()
	defer s.RUnlock()

	streamState := s.streamState(stream)
	if streamState == nil || key == "" {
		return nil
	}
	value, _ := streamState.State.Load(key)
	return value
}

func (s *State) SetCursor(stream *ConfiguredStream, key string, value any) {
	if key == "" {
		return
	}

	s.Lock()
	defer s.Unlock()

	streamState := s.streamState(stream)
	if streamState == nil {
		streamState = &StreamState{
			Stream:    stream.Name(),
			Namespace: stream.Namespace(),
			SyncMode:  string(stream.GetSyncMode()),
		}
		s.Streams = append(s.Streams, streamState)
	}
	streamState.State.Store(key, value)
	streamState.HoldsValue.Store(true)
}

// ResetCursor removes the bookmark of the stream's cursor field.
func (s *State) ResetCursor(stream *ConfiguredStream) {
	s.Lock()
	defer s.Unlock()

	streamState := s.streamState(stream)
	if streamState == nil {
		return
	}
	streamState.State.Delete(stream.Cursor())
	empty := true
	streamState.State.Range(func(_, _ any) bool {
		empty = false
		return false
	})
	streamState.HoldsValue.Store(!empty)
}

// ClearStreams drops every bookmark of the given stream IDs.
func (s *State) ClearStreams(streamIDs ...string) {
	s.Lock()
	defer s.Unlock()

	drop := make(map[string]bool, len(streamIDs))
	for _, id := range streamIDs {
		drop[id] = true
	}
	for _, streamState := range s.Streams {
		if drop[fmt.Sprintf("%s.%s", streamState.Namespace, streamState.Stream)] {
			streamState.State.Range(func(key, _ any) bool {
				streamState.State.Delete(key)
				return true
			})
			streamState.HoldsValue.Store(false)
		}
	}
}

func (s *State) isZero() bool {
	for _, streamState := range s.Streams {
		if streamState.HoldsValue.Load() {
			return false
		}
	}
	return true
}

// LogState emits the state as a STATE message and persists it to the state path.
func (s *State) LogState() {
	s.RLock()
	defer s.RUnlock()

	if s.isZero() {
		logger.Debug("state is empty, skipping state log")
		return
	}

	if err := logger.Emit(Message{Type: StateMessage, State: s}); err != nil {
		logger.Errorf("failed to emit state: %s", err)
	}

	if err := logger.FileLoggerAt(s, viper.GetString(constants.StatePath)); err != nil {
		logger.Errorf("failed to persist state: %s", err)
	}
}

// MarshalJSON keeps only streams that hold a value. Callers must hold the lock.
func (s *State) MarshalJSON() ([]byte, error) {
	streams := []*StreamState{}
	for _, streamState := range s.Streams {
		if streamState.HoldsValue.Load() {
			streams = append(streams, streamState)
		}
	}

	return json.Marshal(struct {
		Type    StateType      `json:"type"`
		Streams []*StreamState `json:"streams,omitempty"`
	}{Type: s.Type, Streams: streams})
}

func (s *State) UnmarshalJSON(data []byte) error {
	aux := struct {
		Type    StateType      `json:"type"`
		Streams []*StreamState `json:"streams"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if s.RWMutex == nil {
		s.RWMutex = &sync.RWMutex{}
	}
	s.Type = aux.Type
	if s.Type == "" {
		s.Type = StreamType
	}
	s.Streams = aux.Streams
	if s.Streams == nil {
		s.Streams = []*StreamState{}
	}
	return nil
}

func (s *StreamState) MarshalJSON() ([]byte, error) {
	state := map[string]any{}
	s.State.Range(func(key, value any) bool {
		state[key.(string)] = value
		return true
	})

	return json.Marshal(struct {
		Stream    string         `json:"stream"`
		Namespace string         `json:"namespace"`
		SyncMode  string         `json:"sync_mode"`
		State     map[string]any `json:"state"`
	}{Stream: s.Stream, Namespace: s.Namespace, SyncMode: s.SyncMode, State: state})
}

func (s *StreamState) UnmarshalJSON(data []byte) error {
	aux := struct {
		Stream    string         `json:"stream"`
		Namespace string         `json:"namespace"`
		SyncMode  string         `json:"sync_mode"`
		State     map[string]any `json:"state"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	s.Stream = aux.Stream
	s.Namespace = aux.Namespace
	s.SyncMode = aux.SyncMode
	for key, value := range aux.State {
		s.State.Store(key, value)
	}
	s.HoldsValue.Store(len(aux.State) > 0)
	return nil
}
