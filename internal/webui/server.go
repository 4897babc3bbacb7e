// Package webui exposes the aggregation queries and the genre classifier
// over a JSON HTTP API.
//
// Routes:
//
//	GET  /healthz            → liveness plus the loaded corpus fingerprint
//	GET  /api/genres         → top genres (count=N)
//	GET  /api/actor-counts   → histogram of actors per movie
//	GET  /api/heights        → height distribution (gender, min, max)
//	GET  /api/releases       → releases per year (optional genre)
//	GET  /api/ages           → actor births per year or month (period)
//	GET  /api/movies/random  → one random movie with its plot summary
//	POST /api/classify       → model-assigned genres for one movie
//
// Validation failures map to 400, a missing movie to 404, a disabled
// classifier to 503, everything else to 500.
package webui

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"moviecorpus/internal/analysis"
	"moviecorpus/internal/dataset"
)

// GenreClassifier is the part of the classifier the API needs. It is an
// interface so tests can fake the model.
type GenreClassifier interface {
	Classify(ctx context.Context, title, summary string) ([]string, error)
	Verify(ctx context.Context, predicted, known []string) (bool, error)
}

// Config controls server startup.
type Config struct {
	Addr string
}

// Server wires the engine and classifier into a gin router.
type Server struct {
	cfg        Config
	snap       *dataset.Snapshot
	engine     *analysis.Engine
	classifier GenreClassifier

	router *gin.Engine
}

// NewServer constructs a Server with all routes registered. classifier may
// be nil, which turns /api/classify into 503.
func NewServer(cfg Config, snap *dataset.Snapshot, engine *analysis.Engine, classifier GenreClassifier) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		cfg:        cfg,
		snap:       snap,
		engine:     engine,
		classifier: classifier,
		router:     gin.New(),
	}
	s.router.Use(gin.Recovery())
	s.routes()
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.router}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/genres", s.handleGenres)
	api.GET("/actor-counts", s.handleActorCounts)
	api.GET("/heights", s.handleHeights)
	api.GET("/releases", s.handleReleases)
	api.GET("/ages", s.handleAges)
	api.GET("/movies/random", s.handleRandomMovie)
	api.POST("/classify", s.handleClassify)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"movies":      len(s.snap.Movies),
		"fingerprint": fmt.Sprintf("%016x", s.snap.Fingerprint),
	})
}

func (s *Server) handleGenres(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "10"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count must be an integer"})
		return
	}
	req, err := analysis.NewGenreCountRequest(count)
	if err != nil {
		abortWithQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": s.engine.MovieTypes(req)})
}

func (s *Server) handleActorCounts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"buckets": s.engine.ActorCounts()})
}

func (s *Server) handleHeights(c *gin.Context) {
	gender := c.DefaultQuery("gender", "All")
	min, err := strconv.ParseFloat(c.DefaultQuery("min", "1.0"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min must be a number"})
		return
	}
	max, err := strconv.ParseFloat(c.DefaultQuery("max", "2.5"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max must be a number"})
		return
	}
	f, err := analysis.NewActorFilter(gender, max, min)
	if err != nil {
		abortWithQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"heights": s.engine.ActorDistributions(f)})
}

func (s *Server) handleReleases(c *gin.Context) {
	f, err := s.engine.NewGenreFilter(c.Query("genre"))
	if err != nil {
		abortWithQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"years": s.engine.Releases(f)})
}

func (s *Server) handleAges(c *gin.Context) {
	out, err := s.engine.Ages(c.DefaultQuery("period", analysis.PeriodYear))
	if err != nil {
		abortWithQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"periods": out})
}

// randomMovie is the JSON shape of /api/movies/random.
type randomMovie struct {
	WikipediaID int64    `json:"wikipedia_id"`
	Name        string   `json:"name"`
	ReleaseDate string   `json:"release_date"`
	Genres      []string `json:"genres"`
	Summary     string   `json:"summary,omitempty"`
}

func (s *Server) handleRandomMovie(c *gin.Context) {
	if len(s.snap.Movies) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no movies loaded"})
		return
	}
	m := s.snap.Movies[rand.Intn(len(s.snap.Movies))]
	summary, _ := s.snap.SummaryFor(m.WikipediaID)
	c.JSON(http.StatusOK, randomMovie{
		WikipediaID: m.WikipediaID,
		Name:        m.Name,
		ReleaseDate: m.ReleaseDate.String(),
		Genres:      m.Genres,
		Summary:     summary,
	})
}

// classifyRequest selects the movie to classify.
type classifyRequest struct {
	MovieID int64 `json:"movie_id"`
}

func (s *Server) handleClassify(c *gin.Context) {
	if s.classifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "classifier is not configured"})
		return
	}

	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be JSON with movie_id"})
		return
	}

	var movie *dataset.Movie
	for i := range s.snap.Movies {
		if s.snap.Movies[i].WikipediaID == req.MovieID {
			movie = &s.snap.Movies[i]
			break
		}
	}
	if movie == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no movie with id %d", req.MovieID)})
		return
	}
	summary, ok := s.snap.SummaryFor(movie.WikipediaID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("movie %d has no plot summary", req.MovieID)})
		return
	}

	predicted, err := s.classifier.Classify(c.Request.Context(), movie.Name, summary)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	verified, err := s.classifier.Verify(c.Request.Context(), predicted, movie.Genres)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"movie":            movie.Name,
		"known_genres":     movie.Genres,
		"predicted_genres": predicted,
		"verified":         verified,
	})
}

// abortWithQueryError maps engine validation errors to HTTP statuses.
func abortWithQueryError(c *gin.Context, err error) {
	if errors.Is(err, analysis.ErrArgumentType) || errors.Is(err, analysis.ErrArgumentValue) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
