package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Request construction accepts loosely typed values (any) because parameters
// arrive from loosely typed boundaries: query strings, decoded JSON, config
// files. Validation runs eagerly here, so the aggregation functions never
// re-validate and can assume well-formed input.

// GenreCountRequest asks for the top N genres by frequency.
type GenreCountRequest struct {
	count int
}

// NewGenreCountRequest validates count. It must be an integer-valued number
// (ErrArgumentType otherwise) and positive (ErrArgumentValue otherwise).
// There is no upper bound: asking for more than the number of distinct genres
// simply returns all of them.
func NewGenreCountRequest(count any) (GenreCountRequest, error) {
	n, ok := intValue(count)
	if !ok {
		return GenreCountRequest{}, fmt.Errorf("analysis: count must be an integer, got %T: %w", count, ErrArgumentType)
	}
	if n <= 0 {
		return GenreCountRequest{}, fmt.Errorf("analysis: count must be a positive integer, got %d: %w", n, ErrArgumentValue)
	}
	return GenreCountRequest{count: n}, nil
}

// Count returns the validated count.
func (r GenreCountRequest) Count() int { return r.count }

// ActorFilter restricts the height distribution by gender and height range.
type ActorFilter struct {
	gender    string
	minHeight float64
	maxHeight float64
}

// NewActorFilter validates the filter parameters. Gender must be a string
// ("All" disables the gender restriction). Both heights must be numeric,
// max >= min, and both within (0, 3] meters. The range rejects data-entry
// errors, not real biological limits.
func NewActorFilter(gender, maxHeight, minHeight any) (ActorFilter, error) {
	g, ok := gender.(string)
	if !ok {
		return ActorFilter{}, fmt.Errorf("analysis: gender must be a string, got %T: %w", gender, ErrArgumentType)
	}
	max, ok := floatValue(maxHeight)
	if !ok {
		return ActorFilter{}, fmt.Errorf("analysis: max_height must be numeric, got %T: %w", maxHeight, ErrArgumentType)
	}
	min, ok := floatValue(minHeight)
	if !ok {
		return ActorFilter{}, fmt.Errorf("analysis: min_height must be numeric, got %T: %w", minHeight, ErrArgumentType)
	}
	if max < min {
		return ActorFilter{}, fmt.Errorf("analysis: max_height %v is below min_height %v: %w", max, min, ErrArgumentValue)
	}
	if max <= 0 || min <= 0 || max > 3 || min > 3 {
		return ActorFilter{}, fmt.Errorf("analysis: height bounds must be in (0, 3] meters, got [%v, %v]: %w", min, max, ErrArgumentValue)
	}
	return ActorFilter{gender: g, minHeight: min, maxHeight: max}, nil
}

// Gender returns the validated gender code, or "All".
func (f ActorFilter) Gender() string { return f.gender }

// HeightRange returns the validated inclusive height bounds in meters.
func (f ActorFilter) HeightRange() (min, max float64) { return f.minHeight, f.maxHeight }

// GenreFilter optionally restricts the releases query to one genre. The zero
// value means no restriction. Construction lives on Engine because a genre is
// only valid if it names a category actually present in the loaded data.
type GenreFilter struct {
	genre string
}

// Genre returns the validated genre name, or "" when unrestricted.
func (f GenreFilter) Genre() string { return f.genre }

// intValue extracts an integer from the loosely typed forms an integer
// parameter can arrive in. Floats are accepted only when integral (JSON
// numbers decode as float64); strings are never accepted.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float32:
		return intFromFloat(float64(n))
	case float64:
		return intFromFloat(n)
	case json.Number:
		i, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

func intFromFloat(f float64) (int, bool) {
	if math.Trunc(f) != f || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return int(f), true
}

// floatValue extracts a float from any numeric form.
func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
