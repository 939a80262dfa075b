// Package placement resolves one level's raw placement records through an
// ordered fallback chain: remote API, local static file, synthetic layout.
package placement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/toycar/internal/model"
)

// Fixed local paths, relative to the base URL.
const (
	LocalBlocksPath   = "/data/toy_car_blocks.json"
	PreciseModelsPath = "/config/precisePhysicsModels.json"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 8 << 20
)

var (
	errNotJSON      = errors.New("response is not JSON")
	errBodyTooLarge = errors.New("response body too large")
)

// envelopeSchema validates the remote API response shape.
const envelopeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["blocks"],
  "properties": {
    "blocks": {"type": "array"}
  }
}`

// Options configures a Source.
type Options struct {
	// BaseURL prefixes the local fallback and model-hint paths.
	BaseURL string
	// Client is used for all requests; a client with Timeout is created if nil.
	Client *http.Client
	// Timeout applies when Client is nil.
	Timeout time.Duration
	// MaxBodyBytes caps response bodies.
	MaxBodyBytes int64
}

// Batch is everything one load pass needs from the data source.
type Batch struct {
	Records []model.PlacementRecord
	Hints   []string
	Stage   Stage
}

// Source is the placement data source. Safe for concurrent use.
type Source struct {
	base     string
	client   *http.Client
	maxBody  int64
	envelope *jsonschema.Schema
}

// NewSource creates a Source.
func NewSource(opts Options) *Source {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	return &Source{
		base:     strings.TrimSuffix(opts.BaseURL, "/"),
		client:   client,
		maxBody:  maxBody,
		envelope: jsonschema.MustCompileString("placement-envelope.json", envelopeSchema),
	}
}

// Load runs the fallback chain and the model-hint lookup for one pass.
// The hint lookup runs exactly once, alongside the chain.
func (s *Source) Load(ctx context.Context, levelURL string) Batch {
	var batch Batch

	var g errgroup.Group
	g.Go(func() error {
		batch.Hints = s.PreciseModels(ctx)
		return nil
	})
	batch.Records, batch.Stage = s.Fetch(ctx, levelURL)
	_ = g.Wait()

	return batch
}

// Fetch returns the records of the first usable stage. It never fails: the
// synthetic stage always succeeds.
func (s *Source) Fetch(ctx context.Context, levelURL string) ([]model.PlacementRecord, Stage) {
	if levelURL != "" {
		recs, err := s.fetchRemote(ctx, levelURL)
		if err == nil {
			slog.Debug("placements loaded", "stage", StageRemote, "url", levelURL, "count", len(recs))
			return recs, StageRemote
		}
		slog.Warn("remote placements unavailable, trying local fallback", "url", levelURL, "err", err)
	}

	localURL := s.base + LocalBlocksPath
	recs, err := s.fetchLocal(ctx, localURL)
	if err == nil {
		slog.Debug("placements loaded", "stage", StageLocal, "url", localURL, "count", len(recs))
		return recs, StageLocal
	}
	slog.Warn("local placements unavailable, using default layout", "url", localURL, "err", err)

	return DefaultRecords(), StageSynthetic
}

// PreciseModels fetches the model-hint list; any failure yields an empty list.
func (s *Source) PreciseModels(ctx context.Context) []string {
	url := s.base + PreciseModelsPath

	body, err := s.getJSON(ctx, url)
	if err != nil {
		slog.Debug("precise model list unavailable", "url", url, "err", err)
		return []string{}
	}

	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		return []string{}
	}

	names := make([]string, 0, len(raw))
	for _, v := range raw {
		if name, ok := v.(string); ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (s *Source) fetchRemote(ctx context.Context, url string) ([]model.PlacementRecord, error) {
	body, err := s.getJSON(ctx, url)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	if err := s.envelope.Validate(doc); err != nil {
		return nil, fmt.Errorf("validating %s: %w", url, err)
	}

	var env struct {
		Blocks []model.PlacementRecord `json:"blocks"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding blocks from %s: %w", url, err)
	}
	return env.Blocks, nil
}

func (s *Source) fetchLocal(ctx context.Context, url string) ([]model.PlacementRecord, error) {
	body, err := s.getJSON(ctx, url)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	if _, ok := doc.([]any); !ok {
		// Не массив: уровень без премий.
		return []model.PlacementRecord{}, nil
	}

	var recs []model.PlacementRecord
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("decoding records from %s: %w", url, err)
	}
	return recs, nil
}

// getJSON performs a GET and returns the body of a 2xx JSON response.
func (s *Source) getJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("requesting %s: status %d", url, resp.StatusCode)
	}
	if !isJSON(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("requesting %s: %w (%q)", url, errNotJSON, resp.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if int64(len(body)) > s.maxBody {
		return nil, fmt.Errorf("reading %s: %w", url, errBodyTooLarge)
	}
	return body, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mt == "application/json"
}
