// Package dataset loads the five delimited-text corpus sources into typed,
// in-memory collections and holds them for the life of the process.
//
// Design goals:
//
//  1. Declared schemas: the mapping from file name to column layout and
//     target collection is a table in this package, validated at startup.
//     A missing expected file fails the load instead of silently leaving a
//     collection empty; unrecognized files are logged and skipped.
//  2. Best-effort rows: a row that cannot be parsed (wrong width, ill-formed
//     bytes, unparseable key) is dropped with a diagnostic, never fatal.
//  3. Read-only after load: a Snapshot is constructed exactly once and never
//     mutated, so concurrent readers need no locking.
package dataset

import "moviecorpus/internal/dates"

// Movie is one row of movie.metadata.tsv.
//
// Languages, Countries, and Genres hold the display names parsed once at load
// from the Freebase category strings; the raw strings are retained because
// the releases query filters on raw substring containment.
type Movie struct {
	WikipediaID      int64
	FreebaseID       string
	Name             string
	ReleaseDate      dates.Date
	BoxOfficeRevenue *float64
	Runtime          *float64

	LanguagesRaw string
	CountriesRaw string
	GenresRaw    string

	Languages []string
	Countries []string
	Genres    []string
}

// Character is one row of character.metadata.tsv. WikipediaMovieID is a
// foreign key into the movie collection and is not unique: a movie has many
// characters. The three trailing Freebase identifiers are carried through
// uninterpreted.
type Character struct {
	WikipediaMovieID int64
	FreebaseMovieID  string
	MovieReleaseDate dates.Date
	CharacterName    string
	ActorDateOfBirth dates.Date
	ActorGender      string
	ActorHeight      *float64
	ActorEthnicity   string
	ActorName        string
	ActorAgeAtRelease *float64

	FreebaseCharacterActorMapID string
	FreebaseCharacterID         string
	FreebaseActorID             string
}

// NameCluster is one row of name.clusters.txt.
type NameCluster struct {
	Name    string
	ActorID string
}

// PlotSummary is one row of plot_summaries.txt.
type PlotSummary struct {
	WikipediaMovieID int64
	Summary          string
}

// TvTropesCluster is one row of tvtropes.clusters.txt.
type TvTropesCluster struct {
	Name    string
	Cluster string
}

// Snapshot holds the five loaded collections. It is immutable after Load
// returns and safe for concurrent reads.
type Snapshot struct {
	Movies           []Movie
	Characters       []Character
	NameClusters     []NameCluster
	PlotSummaries    []PlotSummary
	TvTropesClusters []TvTropesCluster

	// Fingerprint is an xxh3 digest over the source bytes in schema order.
	// Two loads of the same directory produce the same fingerprint, which
	// makes unnoticed corpus changes visible in logs.
	Fingerprint uint64

	summaryIndex map[int64]int
}

// SummaryFor returns the plot summary for a movie, if one was loaded.
func (s *Snapshot) SummaryFor(movieID int64) (string, bool) {
	i, ok := s.summaryIndex[movieID]
	if !ok {
		return "", false
	}
	return s.PlotSummaries[i].Summary, true
}
