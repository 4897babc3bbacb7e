// Package classifier asks a hosted text-generation model to assign genres
// to a movie from its title and plot summary, and to double-check its own
// answer against the genres recorded in the corpus.
//
// This is the only package that calls an external API beyond the corpus
// mirror. The transport is the shared httpds client, so transient API
// failures get the same retry treatment as downloads.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"moviecorpus/internal/datasource/httpds"
)

// Config configures the classifier. APIKey is required; Model and Endpoint
// default to a hosted Gemini-style generateContent API.
type Config struct {
	APIKey   string
	Model    string
	Endpoint string

	// Client is the HTTP transport. When nil a default retrying client is
	// constructed.
	Client *httpds.Client
}

// Classifier assigns genres to movies via a generative model.
type Classifier struct {
	cfg    Config
	client *httpds.Client
}

// New builds a Classifier, applying defaults for Model and Endpoint.
func New(cfg Config) (*Classifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("classifier: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	}
	client := cfg.Client
	if client == nil {
		client = httpds.NewClient(httpds.Config{MaxRetries: 2})
	}
	return &Classifier{cfg: cfg, client: client}, nil
}

// Classify asks the model for the genres of one movie. The result is the
// model's comma-separated answer split into trimmed genre names, with any
// chain-of-thought block removed first.
func (c *Classifier) Classify(ctx context.Context, title, summary string) ([]string, error) {
	raw, err := c.generate(ctx, BuildClassifyPrompt(title, summary))
	if err != nil {
		return nil, err
	}
	genres := ParseGenreList(raw)
	if len(genres) == 0 {
		return nil, fmt.Errorf("classifier: model returned no genres for %q", title)
	}
	return genres, nil
}

// Verify asks the model whether its predicted genres are contained in the
// genres the corpus records for the movie. The model is instructed to answer
// only yes or no; anything that does not start with yes counts as no.
func (c *Classifier) Verify(ctx context.Context, predicted, known []string) (bool, error) {
	raw, err := c.generate(ctx, BuildVerifyPrompt(predicted, known))
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(StripThink(raw)))
	return strings.HasPrefix(answer, "yes"), nil
}

// BuildClassifyPrompt renders the genre classification prompt.
func BuildClassifyPrompt(title, summary string) string {
	var b strings.Builder
	b.WriteString("You are a film librarian. Classify the movie below into genres.\n")
	b.WriteString("Respond ONLY with a comma-separated list of genre names, nothing else.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", title)
	fmt.Fprintf(&b, "Plot summary: %s\n", summary)
	return b.String()
}

// BuildVerifyPrompt renders the follow-up containment check.
func BuildVerifyPrompt(predicted, known []string) string {
	return fmt.Sprintf(
		"The identified genres are: %s. Are they contained in this list: %s? Answer only yes or no.",
		strings.Join(predicted, ", "), strings.Join(known, ", "))
}

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThink removes any <think>...</think> block some models prepend to
// their answer.
func StripThink(s string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(s, ""))
}

// ParseGenreList splits a model answer into genre names: strip the thinking
// block, split on commas, trim whitespace and trailing periods, drop empty
// entries.
func ParseGenreList(raw string) []string {
	var out []string
	for _, part := range strings.Split(StripThink(raw), ",") {
		g := strings.Trim(strings.TrimSpace(part), ".")
		if g != "" {
			out = append(out, g)
		}
	}
	return out
}

// Wire types for the generateContent API.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// generate sends one prompt and returns the first candidate's text.
func (c *Classifier) generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.cfg.Endpoint, c.cfg.Model, c.cfg.APIKey)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("classifier: marshal request: %w", err)
	}

	hdr := make(http.Header)
	hdr.Set("Content-Type", "application/json")
	resp, err := c.client.Post(ctx, url, body, hdr)
	if err != nil {
		return "", fmt.Errorf("classifier: call model: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("classifier: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("classifier: model API status %d: %s", resp.StatusCode, truncate(string(payload), 200))
	}

	var gr generateResponse
	if err := json.Unmarshal(payload, &gr); err != nil {
		return "", fmt.Errorf("classifier: decode response: %w", err)
	}
	if gr.Error != nil {
		return "", fmt.Errorf("classifier: model error %d: %s", gr.Error.Code, gr.Error.Message)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("classifier: model returned an empty response")
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
