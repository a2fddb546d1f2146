package types

import (
	"fmt"
	"strings"

	"github.com/datazip-inc/olake-hubspot/utils"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
)

type StreamCategories struct {
	SelectedStreams    []string
	IncrementalStreams []StreamInterface
	StandardStreams    []StreamInterface
	NewStreamsState    []*StreamState
}

// IdentifySelectedStreams validates the catalog against the discovered
// streams and splits the selection by sync mode. Passing nil streams skips
// validation and leaves the state untouched, which clear-destination relies on.
func IdentifySelectedStreams(catalog *Catalog, streams []*Stream, state *State) (*StreamCategories, error) {
	categories := &StreamCategories{
		SelectedStreams:    []string{},
		IncrementalStreams: []StreamInterface{},
		StandardStreams:    []StreamInterface{},
		NewStreamsState:    []*StreamState{},
	}

	selectedStreamsMap := make(map[string]StreamMetadata)
	for namespace, streamsMetadata := range catalog.SelectedStreams {
		for _, streamMetadata := range streamsMetadata {
			selectedStreamsMap[fmt.Sprintf("%s.%s", namespace, streamMetadata.StreamName)] = streamMetadata
		}
	}

	stateStreamMap := make(map[string]*StreamState)
	for _, stream := range state.Streams {
		stateStreamMap[fmt.Sprintf("%s.%s", stream.Namespace, stream.Stream)] = stream
	}

	sourceStreams := StreamsToMap(streams...)
	_, _ = utils.ArrayContains(catalog.Streams, func(elem *ConfiguredStream) bool {
		sMetadata, selected := selectedStreamsMap[elem.ID()]
		if !(catalog.SelectedStreams == nil || selected) {
			logger.Debugf("Skipping stream %s; not in selected streams.", elem.ID())
			return false
		}

		if streams != nil {
			source, found := sourceStreams[elem.ID()]
			if !found {
				logger.Warnf("Skipping; Configured Stream %s not found in source", elem.ID())
				return false
			}
			elem.StreamMetadata = sMetadata
			if err := elem.Validate(source); err != nil {
				logger.Warnf("Skipping; Configured Stream %s found invalid due to reason: %s", elem.ID(), err)
				return false
			}
		}

		categories.SelectedStreams = append(categories.SelectedStreams, elem.ID())
		if elem.Stream.SyncMode == INCREMENTAL {
			categories.IncrementalStreams = append(categories.IncrementalStreams, elem)
			if streamState, exists := stateStreamMap[elem.ID()]; exists {
				categories.NewStreamsState = append(categories.NewStreamsState, streamState)
			}
		} else {
			categories.StandardStreams = append(categories.StandardStreams, elem)
		}
		return false
	})

	// drop bookmarks of streams that are no longer synced incrementally
	if streams != nil {
		state.Lock()
		state.Streams = categories.NewStreamsState
		state.Unlock()
	}
	if len(categories.SelectedStreams) == 0 {
		return nil, fmt.Errorf("no valid streams found in catalog")
	}

	logger.Infof("Valid selected streams are %s", strings.Join(categories.SelectedStreams, ", "))
	return categories, nil
}
