package typeutils

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

// Compare returns 0 for equal, -1 if a < b, 1 if a > b. nil sorts lowest.
// Timestamps compare chronologically even when they arrive as strings in
// different layouts, so "2023-02-01" is after "2023-01-01T00:00:00Z".
func Compare(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if isNumber(a) && isNumber(b) {
		return compareNumbers(a, b)
	}

	if aTime, bTime, ok := bothTimes(a, b); ok {
		return aTime.Compare(bTime)
	}

	switch aVal := a.(type) {
	case bool:
		if bBool, ok := b.(bool); ok {
			switch {
			case aVal == bBool:
				return 0
			case !aVal:
				return -1
			default:
				return 1
			}
		}
	case string:
		if bStr, ok := b.(string); ok {
			return strings.Compare(aVal, bStr)
		}
	}

	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func isInteger(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64:
		return true
	}
	return false
}

func compareNumbers(a, b any) int {
	if isInteger(a) && isInteger(b) {
		aInt := reflect.ValueOf(a).Int()
		bInt := reflect.ValueOf(b).Int()
		switch {
		case aInt < bInt:
			return -1
		case aInt > bInt:
			return 1
		}
		return 0
	}

	aFloat := reflect.ValueOf(a).Convert(reflect.TypeFor[float64]()).Float()
	bFloat := reflect.ValueOf(b).Convert(reflect.TypeFor[float64]()).Float()
	if math.IsNaN(aFloat) || math.IsNaN(bFloat) {
		switch {
		case math.IsNaN(aFloat) && math.IsNaN(bFloat):
			return 0
		case math.IsNaN(aFloat):
			return -1
		}
		return 1
	}

	switch {
	case aFloat < bFloat:
		return -1
	case aFloat > bFloat:
		return 1
	}
	return 0
}

// bothTimes succeeds when each side is a time.Time or a string in a known timestamp layout.
func bothTimes(a, b any) (time.Time, time.Time, bool) {
	aTime, ok := asTime(a)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	bTime, ok := asTime(b)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return aTime, bTime, true
}

func asTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case Time:
		return val.Time, true
	case string:
		parsed, err := parseStringTimestamp(val)
		return parsed, err == nil
	}
	return time.Time{}, false
}
