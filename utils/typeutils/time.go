/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package typeutils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// layouts HubSpot is known to return, most specific first
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type Time struct {
	time.Time
}

func (ct *Time) UnmarshalJSON(b []byte) error {
	parsed, err := parseStringTimestamp(strings.Trim(string(b), "\""))
	if err != nil {
		return err
	}

	*ct = Time{parsed}
	return nil
}

func (ct Time) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(ct.UTC().Format(time.RFC3339Nano))), nil
}

func parseStringTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse [%s] as timestamp", value)
}

// ParseTimestamp converts strings in known layouts and epoch milliseconds to time.Time.
func ParseTimestamp(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case Time:
		return v.Time, nil
	case string:
		if millis, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.UnixMilli(millis).UTC(), nil
		}
		return parseStringTimestamp(v)
	case int64:
		return time.UnixMilli(v).UTC(), nil
	case int:
		return time.UnixMilli(int64(v)).UTC(), nil
	case float64:
		return time.UnixMilli(int64(v)).UTC(), nil
	case nil:
		return time.Time{}, fmt.Errorf("nil timestamp")
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp type %T", value)
}

// FormatCursorValue normalises a cursor before it is written to state.
// time.Time becomes an RFC3339 string, everything else is stored as observed.
func FormatCursorValue(value any) any {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case Time:
		return v.UTC().Format(time.RFC3339Nano)
	}
	return value
}
