package driver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/datazip-inc/olake-hubspot/utils"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
	"github.com/datazip-inc/olake-hubspot/utils/typeutils"
)

const (
	// HubSpot search refuses to page past 10,000 results of one query.
	searchResultLimit = 10000
	// longest comma joined property list sent in one query string
	maxPropertiesParam = 2000
)

// requestPlan is the endpoint a stream read starts from.
type requestPlan struct {
	Method   string
	Path     string
	Bookmark any
}

func (p requestPlan) search() bool {
	return p.Method == http.MethodPost
}

// selectEndpoint reads the full path unless the stream is incremental and a
// bookmark exists, in which case the search path filters from the bookmark.
func selectEndpoint(def *StreamDefinition, bookmark any) requestPlan {
	if def.Incremental() && !emptyBookmark(bookmark) {
		return requestPlan{Method: http.MethodPost, Path: def.Base + def.IncrementalPath, Bookmark: bookmark}
	}
	return requestPlan{Method: http.MethodGet, Path: def.Base + def.Path}
}

func emptyBookmark(bookmark any) bool {
	if bookmark == nil {
		return true
	}
	str, ok := bookmark.(string)
	return ok && str == ""
}

// readDefinition runs the plan and follows paging cursors until HubSpot stops returning one.
func (h *HubSpot) readDefinition(ctx context.Context, def *StreamDefinition, plan requestPlan, properties []string, emit EmitFunc) error {
	lift := func(ctx context.Context, record map[string]any) error {
		liftReplicationKey(def, record)
		return emit(ctx, record)
	}

	if plan.search() {
		return h.search(ctx, def, plan, properties, lift)
	}
	return h.pagedFetcher(plan.Path, def.recordsPath(), h.pageSize(def), properties)(ctx, lift)
}

// pagedFetcher reads every page of a GET endpoint. A property list too long
// for one request line is split; each page is then fetched once per part and
// the properties of each part are merged into the first part's records.
func (h *HubSpot) pagedFetcher(path, recordsPath string, pageSize int, properties []string) FetchFunc {
	parts := splitProperties(properties, maxPropertiesParam)
	return func(ctx context.Context, emit EmitFunc) error {
		after := ""
		for {
			response, err := h.client.Get(ctx, path, pageQuery(pageSize, after, parts[0]))
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			for _, part := range parts[1:] {
				extra, err := h.client.Get(ctx, path, pageQuery(pageSize, after, part))
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				if err := mergeProperties(response, extra, recordsPath); err != nil {
					return err
				}
			}

			if err := emitRecords(ctx, response, recordsPath, emit); err != nil {
				return err
			}

			if after = nextAfter(response); after == "" {
				return nil
			}
		}
	}
}

func pageQuery(pageSize int, after string, properties []string) url.Values {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(pageSize))
	if after != "" {
		query.Set("after", after)
	}
	if len(properties) > 0 {
		query.Set("properties", strings.Join(properties, ","))
	}
	return query
}

// splitProperties groups properties so that no group joins to more than limit
// characters. There is always at least one group.
func splitProperties(properties []string, limit int) [][]string {
	parts := [][]string{}
	current, length := []string{}, 0
	for _, property := range properties {
		added := len(property) + utils.Ternary(len(current) > 0, 1, 0).(int)
		if len(current) > 0 && length+added > limit {
			parts = append(parts, current)
			current, length = []string{}, 0
			added = len(property)
		}
		current = append(current, property)
		length += added
	}
	if len(current) > 0 || len(parts) == 0 {
		parts = append(parts, current)
	}
	return parts
}

// mergeProperties copies the properties of records in extra into the records
// of base with the same id.
func mergeProperties(base, extra map[string]any, recordsPath string) error {
	byID := map[string]map[string]any{}
	err := emitRecords(context.Background(), base, recordsPath, func(_ context.Context, record map[string]any) error {
		byID[fmt.Sprintf("%v", record["id"])] = record
		return nil
	})
	if err != nil {
		return err
	}

	return emitRecords(context.Background(), extra, recordsPath, func(_ context.Context, record map[string]any) error {
		target, found := byID[fmt.Sprintf("%v", record["id"])]
		if !found {
			logger.Debugf("record[%v] missing from the first property part, skipping", record["id"])
			return nil
		}
		properties, _ := target["properties"].(map[string]any)
		if properties == nil {
			properties = map[string]any{}
			target["properties"] = properties
		}
		more, _ := record["properties"].(map[string]any)
		for key, value := range more {
			properties[key] = value
		}
		return nil
	})
}

// search pages the search endpoint in ascending replication key order. At the
// result ceiling it restarts from the largest value seen, so boundary records
// may repeat.
func (h *HubSpot) search(ctx context.Context, def *StreamDefinition, plan requestPlan, properties []string, emit EmitFunc) error {
	anchor := plan.Bookmark
	maxSeen := anchor
	after := ""

	for {
		body := searchBody(def.ReplicationKey, anchor, properties, h.pageSize(def), after)
		response, err := h.client.Post(ctx, plan.Path, body)
		if err != nil {
			return fmt.Errorf("failed to search %s: %w", plan.Path, err)
		}

		err = emitRecords(ctx, response, def.recordsPath(), func(ctx context.Context, record map[string]any) error {
			if err := emit(ctx, record); err != nil {
				return err
			}
			if value, found := record[def.ReplicationKey]; found && typeutils.Compare(value, maxSeen) == 1 {
				maxSeen = value
			}
			return nil
		})
		if err != nil {
			return err
		}

		after = nextAfter(response)
		if after == "" {
			return nil
		}

		if offset, err := strconv.Atoi(after); err == nil && offset >= searchResultLimit {
			if typeutils.Compare(maxSeen, anchor) != 1 {
				return fmt.Errorf("more than %d records of %s share %s=%v", searchResultLimit, def.Name, def.ReplicationKey, anchor)
			}
			logger.Debugf("search of %s reached %d results, restarting from %s=%v", def.Name, searchResultLimit, def.ReplicationKey, maxSeen)
			anchor = maxSeen
			after = ""
		}
	}
}

func searchBody(replicationKey string, bookmark any, properties []string, limit int, after string) map[string]any {
	body := map[string]any{
		"filterGroups": []any{
			map[string]any{
				"filters": []any{
					map[string]any{
						"propertyName": replicationKey,
						"operator":     "GTE",
						"value":        filterValue(bookmark),
					},
				},
			},
		},
		"sorts": []any{
			map[string]any{"propertyName": replicationKey, "direction": "ASCENDING"},
		},
		"limit": limit,
	}
	if len(properties) > 0 {
		body["properties"] = properties
	}
	if after != "" {
		body["after"] = after
	}
	return body
}

// filterValue renders timestamps as epoch milliseconds, the form HubSpot
// search compares datetime properties with.
func filterValue(bookmark any) any {
	if ts, err := typeutils.ParseTimestamp(bookmark); err == nil {
		return strconv.FormatInt(ts.UnixMilli(), 10)
	}
	return bookmark
}

func emitRecords(ctx context.Context, response map[string]any, recordsPath string, emit EmitFunc) error {
	raw, found := response[recordsPath]
	if !found || raw == nil {
		return nil
	}
	records, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("unexpected type %T at %s", raw, recordsPath)
	}

	for _, item := range records {
		record, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("unexpected record type %T at %s", item, recordsPath)
		}
		if err := emit(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func nextAfter(response map[string]any) string {
	paging, _ := response["paging"].(map[string]any)
	next, _ := paging["next"].(map[string]any)
	after, found := next["after"]
	if !found || after == nil {
		return ""
	}
	return fmt.Sprintf("%v", after)
}

// liftReplicationKey copies properties.<key> to the top level of the record.
func liftReplicationKey(def *StreamDefinition, record map[string]any) {
	if def.ReplicationKey == "" {
		return
	}
	if _, exists := record[def.ReplicationKey]; exists {
		return
	}
	properties, _ := record["properties"].(map[string]any)
	if value, found := properties[def.ReplicationKey]; found {
		record[def.ReplicationKey] = value
	}
}
