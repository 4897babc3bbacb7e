// Package config defines the canonical, JSON-serializable configuration
// model for the corpus application.
//
// Design goals:
//
//  1. Stability: changes should be additive and backwards-compatible.
//  2. Clarity: Go field names mirror the JSON structure of the config file.
//  3. Minimalism: decoding is performed by the standard library over a
//     fully typed struct; secrets (the model API key) come from the
//     environment, never from the file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the top-level object decoded from the config file. Zero fields
// fall back to Default values at load time.
type Config struct {
	// Dataset controls where the corpus lives and whether it is fetched.
	Dataset Dataset `json:"dataset"`

	// Server configures the HTTP API.
	Server Server `json:"server"`

	// Classifier configures the optional model-backed genre classifier.
	Classifier Classifier `json:"classifier"`

	// Metrics selects the metrics backend.
	Metrics Metrics `json:"metrics"`
}

// Dataset locates the corpus files.
type Dataset struct {
	// Dir is the directory holding the five data files.
	Dir string `json:"dir"`

	// URL is the archive to download when Dir is incomplete.
	URL string `json:"url"`

	// Download enables fetching the archive when data files are missing.
	Download bool `json:"download"`
}

// Server configures the HTTP API listener.
type Server struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `json:"addr"`
}

// Classifier configures the model-backed genre classifier. APIKey is filled
// from the environment (MODEL_API_KEY), not from the config file.
type Classifier struct {
	Enabled  bool   `json:"enabled"`
	Model    string `json:"model"`
	Endpoint string `json:"endpoint"`

	APIKey string `json:"-"`
}

// Metrics selects and configures the metrics backend.
type Metrics struct {
	// Backend is "nop" or "prompush".
	Backend string `json:"backend"`

	// PushgatewayURL is required for the prompush backend.
	PushgatewayURL string `json:"pushgateway_url"`

	// Job labels pushed metrics; defaults to "moviecorpus".
	Job string `json:"job"`
}

// DefaultCorpusURL is the published location of the corpus archive.
const DefaultCorpusURL = "http://www.cs.cmu.edu/~ark/personas/data/MovieSummaries.tar.gz"

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Dataset: Dataset{
			Dir:      "data/MovieSummaries",
			URL:      DefaultCorpusURL,
			Download: true,
		},
		Server:  Server{Addr: ":8080"},
		Metrics: Metrics{Backend: "nop", Job: "moviecorpus"},
	}
}

// Load decodes the JSON config at path over the defaults, so a partial file
// only overrides what it names. Unknown fields are rejected to catch typos.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}
