package analysis

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"moviecorpus/internal/dataset"
	"moviecorpus/internal/dates"
)

func fptr(v float64) *float64 { return &v }

func movie(id int64, name, release, genresRaw string) dataset.Movie {
	return dataset.Movie{
		WikipediaID: id,
		Name:        name,
		ReleaseDate: dates.Parse(release),
		GenresRaw:   genresRaw,
		Genres:      dataset.ParseCategoryString(genresRaw),
	}
}

func character(movieID int64, gender string, height *float64, dob string) dataset.Character {
	return dataset.Character{
		WikipediaMovieID: movieID,
		ActorGender:      gender,
		ActorHeight:      height,
		ActorDateOfBirth: dates.Parse(dob),
	}
}

func testEngine() *Engine {
	snap := &dataset.Snapshot{
		Movies: []dataset.Movie{
			movie(1, "First", "2001-08-24", `{"/m/01": "Thriller", "/m/02": "Horror"}`),
			movie(2, "Second", "2001", `{"/m/01": "Thriller"}`),
			movie(3, "Third", "1999-03-01", `{"/m/03": "Drama", "/m/02": "Horror"}`),
			movie(4, "Fourth", "", `{"/m/03": "Drama"}`),
		},
		Characters: []dataset.Character{
			character(1, "M", fptr(1.80), "1974-08-15"),
			character(1, "M", fptr(1.80), "1969-06-15"),
			character(2, "F", fptr(1.65), "1980"),
			character(3, "F", nil, ""),
		},
	}
	return New(snap)
}

func TestMovieTypes(t *testing.T) {
	e := testEngine()

	req, err := NewGenreCountRequest(10)
	if err != nil {
		t.Fatal(err)
	}
	got := e.MovieTypes(req)

	// Thriller and Horror both appear twice; Thriller was seen first in the
	// loaded data, so the tie breaks in its favor.
	want := []GenreCount{
		{Genre: "Thriller", Count: 2},
		{Genre: "Horror", Count: 2},
		{Genre: "Drama", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MovieTypes = %v, want %v", got, want)
	}
}

func TestMovieTypesTruncates(t *testing.T) {
	e := testEngine()

	req, err := NewGenreCountRequest(1)
	if err != nil {
		t.Fatal(err)
	}
	got := e.MovieTypes(req)
	if len(got) != 1 || got[0].Genre != "Thriller" {
		t.Fatalf("MovieTypes(1) = %v, want just Thriller", got)
	}
}

func TestActorCounts(t *testing.T) {
	e := testEngine()

	// Movie 1 has two character rows, movies 2 and 3 one each.
	got := e.ActorCounts()
	want := []ActorCountBucket{
		{Actors: 1, Movies: 2},
		{Actors: 2, Movies: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ActorCounts = %v, want %v", got, want)
	}

	// The histogram accounts for every character row exactly once.
	total := 0
	for _, b := range got {
		total += b.Actors * b.Movies
	}
	if total != 4 {
		t.Fatalf("histogram covers %d character rows, want 4", total)
	}
}

func TestActorDistributions(t *testing.T) {
	e := testEngine()

	f, err := NewActorFilter("M", 2.0, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	got := e.ActorDistributions(f)
	want := []HeightCount{{Height: 1.80, Count: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ActorDistributions(M) = %v, want %v", got, want)
	}
}

func TestActorDistributionsAllGenders(t *testing.T) {
	e := testEngine()

	f, err := NewActorFilter("All", 2.0, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	got := e.ActorDistributions(f)

	// Rows without a height never contribute; bounds are inclusive and the
	// result is ascending by height.
	want := []HeightCount{
		{Height: 1.65, Count: 1},
		{Height: 1.80, Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ActorDistributions(All) = %v, want %v", got, want)
	}
}

func TestActorDistributionsBoundsInclusive(t *testing.T) {
	e := testEngine()

	f, err := NewActorFilter("All", 1.80, 1.80)
	if err != nil {
		t.Fatal(err)
	}
	got := e.ActorDistributions(f)
	if len(got) != 1 || got[0].Height != 1.80 || got[0].Count != 2 {
		t.Fatalf("exact-bound filter = %v, want [(1.80, 2)]", got)
	}
}

func TestReleases(t *testing.T) {
	e := testEngine()

	got := e.Releases(GenreFilter{})

	// Movie 4 has no resolvable release year and is dropped.
	want := []YearCount{
		{Year: 1999, Count: 1},
		{Year: 2001, Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Releases = %v, want %v", got, want)
	}
}

func TestReleasesGenreFilter(t *testing.T) {
	e := testEngine()

	f, err := e.NewGenreFilter("Horror")
	if err != nil {
		t.Fatal(err)
	}
	got := e.Releases(f)
	want := []YearCount{
		{Year: 1999, Count: 1},
		{Year: 2001, Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Releases(Horror) = %v, want %v", got, want)
	}
}

func TestNewGenreFilter(t *testing.T) {
	e := testEngine()

	if _, err := e.NewGenreFilter(nil); err != nil {
		t.Fatalf("nil genre: %v", err)
	}
	if _, err := e.NewGenreFilter(""); err != nil {
		t.Fatalf("empty genre: %v", err)
	}
	if _, err := e.NewGenreFilter(42); !errors.Is(err, ErrArgumentType) {
		t.Fatalf("non-string genre: err = %v, want ErrArgumentType", err)
	}
	if _, err := e.NewGenreFilter("Ballet"); !errors.Is(err, ErrArgumentValue) {
		t.Fatalf("unknown genre: err = %v, want ErrArgumentValue", err)
	}
	if f, err := e.NewGenreFilter("Drama"); err != nil || f.Genre() != "Drama" {
		t.Fatalf("known genre: %v, %v", f, err)
	}
}

func TestAgesByYear(t *testing.T) {
	e := testEngine()

	got, err := e.Ages(PeriodYear)
	if err != nil {
		t.Fatal(err)
	}
	want := []PeriodCount{
		{Period: "1969", Count: 1},
		{Period: "1974", Count: 1},
		{Period: "1980", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Ages(year) = %v, want %v", got, want)
	}
}

func TestAgesByMonth(t *testing.T) {
	e := testEngine()

	got, err := e.Ages(PeriodMonth)
	if err != nil {
		t.Fatal(err)
	}

	// The 1980 year-only birth date zero-fills to January; the skew is part
	// of the documented behavior.
	want := []PeriodCount{
		{Period: "January", Count: 1},
		{Period: "June", Count: 1},
		{Period: "August", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Ages(month) = %v, want %v", got, want)
	}
}

func TestAgesDiscardsSentinelYears(t *testing.T) {
	snap := &dataset.Snapshot{
		Characters: []dataset.Character{
			character(1, "M", nil, "1950-02-10"),
			character(1, "M", nil, "2025-01-01"),
			character(1, "F", nil, "2150"),
		},
	}
	e := New(snap)

	got, err := e.Ages(PeriodYear)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Period != "1950" {
		t.Fatalf("Ages(year) = %v, want only 1950", got)
	}

	// Month mode applies no year cutoff.
	byMonth, err := e.Ages(PeriodMonth)
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, p := range byMonth {
		total += p.Count
	}
	if total != 3 {
		t.Fatalf("Ages(month) counted %d rows, want 3", total)
	}
}

func TestAgesRejectsUnknownPeriod(t *testing.T) {
	e := testEngine()

	if _, err := e.Ages("decade"); !errors.Is(err, ErrArgumentValue) {
		t.Fatalf("err = %v, want ErrArgumentValue", err)
	}
}

// The queries are pure functions of the snapshot: calling them repeatedly
// and concurrently must not change results or panic.
func TestQueriesAreRepeatable(t *testing.T) {
	e := testEngine()
	req, _ := NewGenreCountRequest(5)

	first := e.MovieTypes(req)
	for i := 0; i < 3; i++ {
		if got := e.MovieTypes(req); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: MovieTypes drifted: %v vs %v", i, got, first)
		}
	}
}

func TestQueriesOnLargeSnapshot(t *testing.T) {
	movies := make([]dataset.Movie, 0, 5000)
	chars := make([]dataset.Character, 0, 15000)
	for i := 0; i < 5000; i++ {
		year := 1900 + i%120
		raw := fmt.Sprintf(`{"/m/%02d": "Genre %d"}`, i%40, i%40)
		movies = append(movies, movie(int64(i), fmt.Sprintf("Movie %d", i), fmt.Sprintf("%d", year), raw))
		for j := 0; j < 3; j++ {
			h := 1.5 + float64(i%50)/100
			chars = append(chars, character(int64(i), "M", &h, fmt.Sprintf("%d-05-01", 1920+i%80)))
		}
	}
	e := New(&dataset.Snapshot{Movies: movies, Characters: chars})

	req, _ := NewGenreCountRequest(10)
	if got := e.MovieTypes(req); len(got) != 10 {
		t.Fatalf("MovieTypes returned %d rows, want 10", len(got))
	}
	if got := e.ActorCounts(); len(got) != 1 || got[0].Actors != 3 || got[0].Movies != 5000 {
		t.Fatalf("ActorCounts = %v", got)
	}
	f, _ := NewActorFilter("All", 3.0, 0.5)
	if got := e.ActorDistributions(f); len(got) != 50 {
		t.Fatalf("ActorDistributions returned %d distinct heights, want 50", len(got))
	}
	if got := e.Releases(GenreFilter{}); len(got) != 120 {
		t.Fatalf("Releases returned %d years, want 120", len(got))
	}
	if got, err := e.Ages(PeriodYear); err != nil || len(got) != 80 {
		t.Fatalf("Ages(year) = %d rows, err %v; want 80 rows", len(got), err)
	}
}
