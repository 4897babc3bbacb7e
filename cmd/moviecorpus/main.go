package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"moviecorpus/internal/analysis"
	"moviecorpus/internal/classifier"
	"moviecorpus/internal/config"
	"moviecorpus/internal/dataset"
	"moviecorpus/internal/datasource/file"
	"moviecorpus/internal/datasource/httpds"
	"moviecorpus/internal/download"
	"moviecorpus/internal/metrics"
	"moviecorpus/internal/metrics/prompush"
	"moviecorpus/internal/webui"
)

// main loads the config, makes sure the corpus is on disk, builds the
// aggregation engine, and then either serves the HTTP API, classifies a
// list of movies, or dumps every aggregate as JSON.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		classifyList      string
		validate          bool
		serve             bool
	)

	flag.StringVar(&cfgPath, "config", "", "config JSON path (defaults apply when empty)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (nop, prompush); overrides config")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&classifyList, "classify-list", "", "file of movie IDs to classify, one per line")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&serve, "serve", false, "serve the HTTP API instead of printing aggregates")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	// .env is optional; environment variables win over it either way.
	_ = godotenv.Load()

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			fatalf("%v", err)
		}
	}
	cfg.Classifier.APIKey = os.Getenv("MODEL_API_KEY")
	if metricsBackendFlg != "" {
		cfg.Metrics.Backend = metricsBackendFlg
	}
	if pushGatewayURLFlg != "" {
		cfg.Metrics.PushgatewayURL = pushGatewayURLFlg
	} else if cfg.Metrics.PushgatewayURL == "" {
		cfg.Metrics.PushgatewayURL = os.Getenv("PUSHGATEWAY_URL")
	}

	issues := config.Validate(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	switch cfg.Metrics.Backend {
	case "prompush":
		b, err := prompush.NewBackend(cfg.Metrics.Job, cfg.Metrics.PushgatewayURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: backend=prompush url=%v job=%v", cfg.Metrics.PushgatewayURL, cfg.Metrics.Job)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}
	case "", "nop":
		if *verbose {
			log.Printf("metrics: disabled")
		}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", cfg.Metrics.Backend)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Dataset.Download {
		client := httpds.NewClient(httpds.Config{Timeout: 10 * time.Minute, MaxRetries: 3})
		if err := download.Ensure(ctx, client, cfg.Dataset.URL, cfg.Dataset.Dir); err != nil {
			fatalf("%v", err)
		}
	}

	start := time.Now()
	snap, err := dataset.Load(cfg.Dataset.Dir)
	if err != nil {
		fatalf("%v", err)
	}
	engine := analysis.New(snap)
	if *verbose {
		log.Printf("loaded corpus in %s", time.Since(start).Truncate(time.Millisecond))
	}

	var cl *classifier.Classifier
	if cfg.Classifier.Enabled {
		cl, err = classifier.New(classifier.Config{
			APIKey:   cfg.Classifier.APIKey,
			Model:    cfg.Classifier.Model,
			Endpoint: cfg.Classifier.Endpoint,
		})
		if err != nil {
			fatalf("%v", err)
		}
	}

	switch {
	case classifyList != "":
		if cl == nil {
			fatalf("classify-list requires classifier.enabled and MODEL_API_KEY")
		}
		if err := classifyMovies(ctx, snap, cl, classifyList); err != nil {
			fatalf("%v", err)
		}
	case serve:
		if err := runServer(ctx, cfg, snap, engine, cl); err != nil {
			fatalf("%v", err)
		}
	default:
		if err := dumpAggregates(engine); err != nil {
			fatalf("%v", err)
		}
	}
}

// runServer serves the HTTP API until the context is canceled.
func runServer(ctx context.Context, cfg config.Config, snap *dataset.Snapshot, engine *analysis.Engine, cl *classifier.Classifier) error {
	var gc webui.GenreClassifier
	if cl != nil {
		gc = cl
	}
	srv := webui.NewServer(webui.Config{Addr: cfg.Server.Addr}, snap, engine, gc)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("serving HTTP API on %s", cfg.Server.Addr)
		return srv.Run(ctx)
	})
	return g.Wait()
}

// classifyMovies reads movie IDs from a list file and prints one JSON line
// per movie with the model's genres and the containment check result.
func classifyMovies(ctx context.Context, snap *dataset.Snapshot, cl *classifier.Classifier, listPath string) error {
	lines, err := file.ReadList(listPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", listPath, err)
	}

	byID := make(map[int64]dataset.Movie, len(snap.Movies))
	for _, m := range snap.Movies {
		byID[m.WikipediaID] = m
	}

	enc := json.NewEncoder(os.Stdout)
	for _, line := range lines {
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			log.Printf("classify: skipping %q: not a movie id", line)
			continue
		}
		m, ok := byID[id]
		if !ok {
			log.Printf("classify: skipping %d: no such movie", id)
			continue
		}
		summary, ok := snap.SummaryFor(id)
		if !ok {
			log.Printf("classify: skipping %d (%s): no plot summary", id, m.Name)
			continue
		}

		predicted, err := cl.Classify(ctx, m.Name, summary)
		if err != nil {
			return fmt.Errorf("classify %d (%s): %w", id, m.Name, err)
		}
		verified, err := cl.Verify(ctx, predicted, m.Genres)
		if err != nil {
			return fmt.Errorf("verify %d (%s): %w", id, m.Name, err)
		}

		if err := enc.Encode(map[string]any{
			"wikipedia_id":     id,
			"movie":            m.Name,
			"known_genres":     m.Genres,
			"predicted_genres": predicted,
			"verified":         verified,
		}); err != nil {
			return err
		}
	}
	return nil
}

// dumpAggregates prints every aggregation as one JSON document.
func dumpAggregates(engine *analysis.Engine) error {
	req, err := analysis.NewGenreCountRequest(10)
	if err != nil {
		return err
	}
	noFilter, err := engine.NewGenreFilter(nil)
	if err != nil {
		return err
	}
	heights, err := analysis.NewActorFilter("All", 2.5, 1.0)
	if err != nil {
		return err
	}
	byYear, err := engine.Ages(analysis.PeriodYear)
	if err != nil {
		return err
	}
	byMonth, err := engine.Ages(analysis.PeriodMonth)
	if err != nil {
		return err
	}

	out := map[string]any{
		"movie_types":         engine.MovieTypes(req),
		"actor_counts":        engine.ActorCounts(),
		"actor_distributions": engine.ActorDistributions(heights),
		"releases":            engine.Releases(noFilter),
		"ages_by_year":        byYear,
		"ages_by_month":       byMonth,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
