package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/xxh3"

	"moviecorpus/internal/dates"
	"moviecorpus/internal/metrics"
	"moviecorpus/internal/parser/tsv"
)

// fileSpec binds a known corpus file name to its fixed column width and the
// decoder that appends its rows to the Snapshot. The table is the single
// source of truth for what a complete dataset directory looks like.
type fileSpec struct {
	name   string
	fields int
	decode func(snap *Snapshot, rows [][]string) (kept, dropped int)
}

var fileSpecs = []fileSpec{
	{"movie.metadata.tsv", 9, decodeMovies},
	{"character.metadata.tsv", 13, decodeCharacters},
	{"name.clusters.txt", 2, decodeNameClusters},
	{"plot_summaries.txt", 2, decodePlotSummaries},
	{"tvtropes.clusters.txt", 2, decodeTvTropes},
}

// ExpectedFiles returns the file names a complete dataset directory holds,
// in schema order. The downloader uses it to decide whether extraction is
// still needed.
func ExpectedFiles() []string {
	names := make([]string, len(fileSpecs))
	for i, spec := range fileSpecs {
		names[i] = spec.name
	}
	return names
}

// Load reads the five corpus sources from dir and returns an immutable
// Snapshot. A missing directory or missing expected file is fatal; per-row
// failures are dropped with a diagnostic and counted in metrics.
func Load(dir string) (*Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset: read dir %s: %w", dir, err)
	}

	known := make(map[string]bool, len(fileSpecs))
	for _, spec := range fileSpecs {
		known[spec.name] = true
	}
	for _, e := range entries {
		if !e.IsDir() && !known[e.Name()] {
			log.Printf("dataset: file %s does not match any expected data file; skipping", e.Name())
		}
	}

	snap := &Snapshot{summaryIndex: make(map[int64]int)}
	digests := make([]byte, 0, len(fileSpecs)*8)

	for _, spec := range fileSpecs {
		start := time.Now()
		path := filepath.Join(dir, spec.name)

		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("dataset: missing expected file %s", spec.name)
			}
			return nil, fmt.Errorf("dataset: open %s: %w", spec.name, err)
		}

		h := xxh3.New()
		p := tsv.NewParser(tsv.Options{ExpectedFields: spec.fields})
		rows, skipped, err := p.Parse(io.TeeReader(f, h))
		size, _ := f.Seek(0, io.SeekCurrent)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("dataset: parse %s: %w", spec.name, err)
		}

		kept, dropped := spec.decode(snap, rows)
		dropped += skipped
		digests = binary.BigEndian.AppendUint64(digests, h.Sum64())

		metrics.RecordFileLoad(spec.name, kept, dropped, time.Since(start))
		log.Printf("dataset: %s: %d rows loaded, %d dropped (%s)",
			spec.name, kept, dropped, humanize.Bytes(uint64(size)))
	}

	snap.Fingerprint = xxh3.Hash(digests)
	log.Printf("dataset: load complete: %d movies, %d characters, fingerprint=%016x",
		len(snap.Movies), len(snap.Characters), snap.Fingerprint)
	return snap, nil
}

func decodeMovies(snap *Snapshot, rows [][]string) (kept, dropped int) {
	for _, f := range rows {
		id, err := strconv.ParseInt(f[0], 10, 64)
		if err != nil {
			dropped++
			continue
		}
		snap.Movies = append(snap.Movies, Movie{
			WikipediaID:      id,
			FreebaseID:       f[1],
			Name:             f[2],
			ReleaseDate:      dates.Parse(f[3]),
			BoxOfficeRevenue: optFloat(f[4]),
			Runtime:          optFloat(f[5]),
			LanguagesRaw:     f[6],
			CountriesRaw:     f[7],
			GenresRaw:        f[8],
			Languages:        ParseCategoryString(f[6]),
			Countries:        ParseCategoryString(f[7]),
			Genres:           ParseCategoryString(f[8]),
		})
		kept++
	}
	return kept, dropped
}

func decodeCharacters(snap *Snapshot, rows [][]string) (kept, dropped int) {
	for _, f := range rows {
		id, err := strconv.ParseInt(f[0], 10, 64)
		if err != nil {
			dropped++
			continue
		}
		snap.Characters = append(snap.Characters, Character{
			WikipediaMovieID:  id,
			FreebaseMovieID:   f[1],
			MovieReleaseDate:  dates.Parse(f[2]),
			CharacterName:     f[3],
			ActorDateOfBirth:  dates.Parse(f[4]),
			ActorGender:       f[5],
			ActorHeight:       optFloat(f[6]),
			ActorEthnicity:    f[7],
			ActorName:         f[8],
			ActorAgeAtRelease: optFloat(f[9]),

			FreebaseCharacterActorMapID: f[10],
			FreebaseCharacterID:         f[11],
			FreebaseActorID:             f[12],
		})
		kept++
	}
	return kept, dropped
}

func decodeNameClusters(snap *Snapshot, rows [][]string) (kept, dropped int) {
	for _, f := range rows {
		snap.NameClusters = append(snap.NameClusters, NameCluster{Name: f[0], ActorID: f[1]})
		kept++
	}
	return kept, dropped
}

func decodePlotSummaries(snap *Snapshot, rows [][]string) (kept, dropped int) {
	for _, f := range rows {
		id, err := strconv.ParseInt(f[0], 10, 64)
		if err != nil {
			dropped++
			continue
		}
		snap.summaryIndex[id] = len(snap.PlotSummaries)
		snap.PlotSummaries = append(snap.PlotSummaries, PlotSummary{WikipediaMovieID: id, Summary: f[1]})
		kept++
	}
	return kept, dropped
}

func decodeTvTropes(snap *Snapshot, rows [][]string) (kept, dropped int) {
	for _, f := range rows {
		snap.TvTropesClusters = append(snap.TvTropesClusters, TvTropesCluster{Name: f[0], Cluster: f[1]})
		kept++
	}
	return kept, dropped
}

// optFloat decodes an optional numeric column. Absent or unparseable values
// become nil; range filtering happens at query time, not here.
func optFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
