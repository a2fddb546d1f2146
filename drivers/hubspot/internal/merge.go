package driver

import (
	"context"
	"fmt"
)

// EmitFunc receives records one at a time.
type EmitFunc func(ctx context.Context, record map[string]any) error

// FetchFunc reads a finite record set and hands every record to emit.
type FetchFunc func(ctx context.Context, emit EmitFunc) error

// Concat runs fetchers one after another and emits their records in order.
// All records are buffered first, so a failure in any fetcher emits nothing.
func Concat(fetchers ...FetchFunc) FetchFunc {
	return func(ctx context.Context, emit EmitFunc) error {
		buffered := []map[string]any{}
		for idx, fetch := range fetchers {
			err := fetch(ctx, func(_ context.Context, record map[string]any) error {
				buffered = append(buffered, record)
				return nil
			})
			if err != nil {
				return fmt.Errorf("merged fetch failed at part %d: %w", idx+1, err)
			}
		}

		for _, record := range buffered {
			if err := emit(ctx, record); err != nil {
				return err
			}
		}
		return nil
	}
}

// tagged sets key to value on every record of fetch.
func tagged(fetch FetchFunc, key string, value any) FetchFunc {
	return func(ctx context.Context, emit EmitFunc) error {
		return fetch(ctx, func(ctx context.Context, record map[string]any) error {
			record[key] = value
			return emit(ctx, record)
		})
	}
}

// propertiesFetcher merges the property definitions of every sub-stream
// object with the notes properties, tagging each with its object.
func (h *HubSpot) propertiesFetcher(def *StreamDefinition, _ []string) FetchFunc {
	fetchers := make([]FetchFunc, 0, len(propertySubStreams)+1)
	for _, sub := range propertySubStreams {
		fetchers = append(fetchers, tagged(h.pagedFetcher(def.Base+sub.path, def.recordsPath(), h.pageSize(def), nil), hubspotObjectKey, sub.object))
	}
	fetchers = append(fetchers, tagged(h.pagedFetcher(def.Base+def.Path, def.recordsPath(), h.pageSize(def), nil), hubspotObjectKey, "notes"))
	return Concat(fetchers...)
}
