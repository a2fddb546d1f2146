package typeutils

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	baseTime := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	laterTime := baseTime.Add(time.Hour)

	testCases := []struct {
		name          string
		leftArgument  any
		rightArgument any
		expected      int
	}{
		// nil cases
		{"nil_vs_nil", nil, nil, 0},
		{"nil_vs_value", nil, 1, -1},
		{"value_vs_nil", "2023-01-01", nil, 1},

		// numbers, including the float64 that state files decode into
		{"signed_int_equal", int64(5), int(5), 0},
		{"signed_int_less", int64(-1), int(1), -1},
		{"int_vs_float", int(3), float64(2.5), 1},
		{"uint_vs_int", uint(2), int(2), 0},
		{"float_less", float32(1.1), float64(2.2), -1},
		{"int64_min_vs_max", int64(math.MinInt64), int64(math.MaxInt64), -1},
		{"nan_vs_number", math.NaN(), 1.0, -1},

		// time values
		{"time_equal", baseTime, baseTime, 0},
		{"time_less", baseTime, laterTime, -1},
		{"time_difference", baseTime.UTC(), baseTime.In(time.FixedZone("x", 3600)), 0},
		{"custom_time_less", Time{Time: baseTime}, Time{Time: laterTime}, -1},

		// timestamp strings compare chronologically across layouts
		{"date_vs_rfc3339_after", "2023-02-01", "2023-01-01T00:00:00Z", 1},
		{"date_vs_rfc3339_before", "2022-12-01", "2023-01-01T00:00:00Z", -1},
		{"millis_vs_seconds_precision", "2023-01-01T00:00:00.000Z", "2023-01-01T00:00:00Z", 0},
		{"offset_aware", "2023-01-01T01:00:00+01:00", "2023-01-01T00:00:00Z", 0},
		{"string_vs_time", "2023-01-01T02:00:00Z", laterTime, 1},

		// bool
		{"bool_false_vs_true", false, true, -1},
		{"bool_true_vs_true", true, true, 0},

		// plain strings
		{"empty_vs_non_empty", "", "1", -1},
		{"numeric_string_lex_order", "10", "9", -1},
		{"case_sensitive", "Apple", "apple", -1},

		// fallback
		{"fallback_string_vs_int", "123", 123, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Compare(tc.leftArgument, tc.rightArgument))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	expected := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)

	for _, value := range []any{"2023-02-01", "2023-02-01T00:00:00Z", "2023-02-01T00:00:00.000Z", expected.UnixMilli(), float64(expected.UnixMilli()), "1675209600000"} {
		parsed, err := ParseTimestamp(value)
		assert.NoError(t, err, "value %v", value)
		assert.True(t, expected.Equal(parsed), "value %v parsed as %v", value, parsed)
	}

	_, err := ParseTimestamp("not a date")
	assert.Error(t, err)
	_, err = ParseTimestamp(nil)
	assert.Error(t, err)
	_, err = ParseTimestamp(true)
	assert.Error(t, err)
}

func TestFormatCursorValue(t *testing.T) {
	ts := time.Date(2023, 2, 1, 10, 0, 0, 0, time.FixedZone("x", 3600))
	assert.Equal(t, "2023-02-01T09:00:00Z", FormatCursorValue(ts))
	assert.Equal(t, "2023-02-01", FormatCursorValue("2023-02-01"))
	assert.Equal(t, 42, FormatCursorValue(42))
	assert.Nil(t, FormatCursorValue(nil))
}
