// Package analysis implements the aggregation queries over a loaded corpus
// snapshot.
//
// Design goals:
//
//  1. Pure queries: every operation is a deterministic function of the
//     immutable snapshot and a validated request. Nothing here mutates the
//     loaded tables, so queries are safe to run concurrently.
//  2. Eager validation: parameter bundles are validated at construction
//     (requests.go), before any aggregation touches the tables. The two
//     error kinds are ErrArgumentType and ErrArgumentValue.
//  3. Ordered output: every query returns a small summary table with a
//     documented, stable order, so two loads of the same directory yield
//     byte-identical results.
package analysis

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"moviecorpus/internal/dataset"
	"moviecorpus/internal/metrics"
)

// Engine answers aggregation queries over one immutable snapshot.
type Engine struct {
	snap *dataset.Snapshot

	// genres is the set of category display names present in the loaded
	// movie genre data, used to validate GenreFilter construction.
	genres map[string]struct{}
}

// New builds an Engine over a loaded snapshot.
func New(snap *dataset.Snapshot) *Engine {
	genres := make(map[string]struct{})
	for _, m := range snap.Movies {
		for _, g := range m.Genres {
			genres[g] = struct{}{}
		}
	}
	return &Engine{snap: snap, genres: genres}
}

// NewGenreFilter validates an optional genre restriction. nil or "" means no
// restriction. A non-string value is ErrArgumentType; a string that names no
// category present in the loaded genre data is ErrArgumentValue.
func (e *Engine) NewGenreFilter(genre any) (GenreFilter, error) {
	if genre == nil {
		return GenreFilter{}, nil
	}
	s, ok := genre.(string)
	if !ok {
		return GenreFilter{}, fmt.Errorf("analysis: genre must be a string, got %T: %w", genre, ErrArgumentType)
	}
	if s == "" {
		return GenreFilter{}, nil
	}
	if _, ok := e.genres[s]; !ok {
		return GenreFilter{}, fmt.Errorf("analysis: no such genre %q: %w", s, ErrArgumentValue)
	}
	return GenreFilter{genre: s}, nil
}

// GenreCount is one row of the genre frequency table.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// MovieTypes returns the most common genres and their movie counts, ordered
// by descending frequency. Ties keep first-appearance order in the loaded
// data (stable sort). The result holds at most req.Count() rows and exactly
// the number of distinct genres when that is smaller.
func (e *Engine) MovieTypes(req GenreCountRequest) []GenreCount {
	defer record("movie_type", time.Now())

	counts := make(map[string]int)
	var order []string
	for _, m := range e.snap.Movies {
		for _, g := range m.Genres {
			if _, seen := counts[g]; !seen {
				order = append(order, g)
			}
			counts[g]++
		}
	}

	out := make([]GenreCount, len(order))
	for i, g := range order {
		out[i] = GenreCount{Genre: g, Count: counts[g]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })

	if n := req.Count(); n < len(out) {
		out = out[:n]
	}
	return out
}

// ActorCountBucket is one row of the actor-count histogram: Movies movies
// have exactly Actors character rows.
type ActorCountBucket struct {
	Actors int `json:"actors"`
	Movies int `json:"movies"`
}

// ActorCounts groups character rows by movie and histograms the per-movie
// actor counts, ascending by actor count.
func (e *Engine) ActorCounts() []ActorCountBucket {
	defer record("actor_count", time.Now())

	perMovie := make(map[int64]int)
	for _, c := range e.snap.Characters {
		perMovie[c.WikipediaMovieID]++
	}

	hist := make(map[int]int)
	for _, n := range perMovie {
		hist[n]++
	}

	out := make([]ActorCountBucket, 0, len(hist))
	for n, movies := range hist {
		out = append(out, ActorCountBucket{Actors: n, Movies: movies})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Actors < out[j].Actors })
	return out
}

// HeightCount is one row of the height distribution.
type HeightCount struct {
	Height float64 `json:"height"`
	Count  int     `json:"count"`
}

// ActorDistributions filters character rows by gender (exact match unless
// "All") and inclusive height range, drops rows with missing height, and
// counts occurrences of each distinct height value, ascending by height.
func (e *Engine) ActorDistributions(f ActorFilter) []HeightCount {
	defer record("actor_distributions", time.Now())

	min, max := f.HeightRange()
	counts := make(map[float64]int)
	for _, c := range e.snap.Characters {
		if f.Gender() != "All" && c.ActorGender != f.Gender() {
			continue
		}
		if c.ActorHeight == nil {
			continue
		}
		h := *c.ActorHeight
		if h < min || h > max {
			continue
		}
		counts[h]++
	}

	out := make([]HeightCount, 0, len(counts))
	for h, n := range counts {
		out = append(out, HeightCount{Height: h, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Height < out[j].Height })
	return out
}

// YearCount is one row of the releases-per-year table.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Releases counts movies per release year, ascending by year. Movies without
// a resolvable year are dropped. A validated GenreFilter restricts the count
// to movies whose raw genre string contains the genre (substring match, as
// the source data pipeline did). The aggregate total is logged as a
// diagnostic; the returned table is the authoritative result.
func (e *Engine) Releases(f GenreFilter) []YearCount {
	defer record("releases", time.Now())

	counts := make(map[int]int)
	for _, m := range e.snap.Movies {
		if f.Genre() != "" && !strings.Contains(m.GenresRaw, f.Genre()) {
			continue
		}
		if !m.ReleaseDate.Known() {
			continue
		}
		counts[m.ReleaseDate.Year]++
	}

	out := make([]YearCount, 0, len(counts))
	total := 0
	for y, n := range counts {
		out = append(out, YearCount{Year: y, Count: n})
		total += n
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })

	log.Printf("analysis: total number of movies released: %d", total)
	return out
}

// Period modes accepted by Ages.
const (
	PeriodYear  = "year"
	PeriodMonth = "month"
)

// PeriodCount is one row of the birth distribution. Period is a year ("1956")
// in year mode or a full English month name ("January") in month mode.
type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// maxBirthYear excludes the sentinel/invalid birth years that appear in the
// corpus at and above this value; they are not real birth years.
const maxBirthYear = 2025

// Ages counts actor births per year or per month. Characters with an unknown
// birth date never contribute. In year mode, years >= 2025 are discarded as
// sentinel values and rows are ordered by ascending year. In month mode,
// rows are ordered by month number and labeled with full English month
// names.
//
// Known skew, preserved deliberately: year-only birth dates normalize to
// January 1 (see the dates package), so in month mode they all land in the
// January bucket.
func (e *Engine) Ages(period string) (out []PeriodCount, err error) {
	defer func(start time.Time) { metrics.RecordQuery("ages", err, time.Since(start)) }(time.Now())

	switch period {
	case PeriodYear, PeriodMonth:
	default:
		return nil, fmt.Errorf("analysis: period must be %q or %q, got %q: %w",
			PeriodYear, PeriodMonth, period, ErrArgumentValue)
	}

	counts := make(map[int]int)
	for _, c := range e.snap.Characters {
		dob := c.ActorDateOfBirth
		if !dob.Known() {
			continue
		}
		if period == PeriodYear {
			if dob.Year >= maxBirthYear {
				continue
			}
			counts[dob.Year]++
		} else {
			counts[int(dob.Month)]++
		}
	}

	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out = make([]PeriodCount, len(keys))
	for i, k := range keys {
		label := strconv.Itoa(k)
		if period == PeriodMonth {
			label = time.Month(k).String()
		}
		out[i] = PeriodCount{Period: label, Count: counts[k]}
	}
	return out, nil
}

// record reports a successful query to the metrics backend.
func record(query string, start time.Time) {
	metrics.RecordQuery(query, nil, time.Since(start))
}
