// Package pokeapi is a read-only client for the PokeAPI REST service.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/f3rmion/pokedex/internal/pokedex"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL = "https://pokeapi.co/api/v2"
	DefaultLimit   = 20

	maxSpriteBytes = 1 << 20
)

// Client is a PokeAPI client.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	logger         *zap.Logger
	maxConcurrency int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxConcurrency caps the number of in-flight follow-up requests in
// FetchBatch. Zero or less means unlimited.
func WithMaxConcurrency(n int) Option {
	return func(c *Client) { c.maxConcurrency = n }
}

// listResponse is the body of GET /pokemon?limit=N.
type listResponse struct {
	Results []pokedex.Reference `json:"results"`
}

// pokemonResponse is the subset of the pokemon resource we display.
type pokemonResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Height  int    `json:"height"`
	Weight  int    `json:"weight"`
	Sprites struct {
		FrontDefault *string `json:"front_default"`
	} `json:"sprites"`
	Types []struct {
		Slot int `json:"slot"`
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
}

// NewClient creates a client for the API rooted at baseURL.
// An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List returns the first limit name/URL references.
func (c *Client) List(ctx context.Context, limit int) ([]pokedex.Reference, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/pokemon?" + q.Encode()

	var resp listResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Get fetches a single entry by its resource URL.
func (c *Client) Get(ctx context.Context, entryURL string) (*pokedex.Entry, error) {
	var resp pokemonResponse
	if err := c.getJSON(ctx, entryURL, &resp); err != nil {
		return nil, err
	}

	if resp.ID <= 0 || resp.Name == "" {
		return nil, decode(entryURL, fmt.Errorf("incomplete entry (id=%d, name=%q)", resp.ID, resp.Name))
	}

	entry := &pokedex.Entry{
		ID:               resp.ID,
		Name:             strings.ToLower(resp.Name),
		HeightDecimeters: resp.Height,
		WeightHectograms: resp.Weight,
	}
	if resp.Sprites.FrontDefault != nil {
		entry.SpriteURL = *resp.Sprites.FrontDefault
	}
	for _, t := range resp.Types {
		entry.Types = append(entry.Types, t.Type.Name)
	}

	return entry, nil
}

// Lookup fetches a single entry by name. The name is trimmed and lowercased.
func (c *Client) Lookup(ctx context.Context, name string) (*pokedex.Entry, error) {
	key := pokedex.NormalizeName(name)
	if key == "" {
		return nil, &Error{Kind: KindNotFound, Err: errors.New("empty name")}
	}
	return c.Get(ctx, c.baseURL+"/pokemon/"+url.PathEscape(key))
}

// FetchBatch lists limit references and fetches every entry concurrently.
// The batch is all-or-nothing: the first failed follow-up cancels the rest
// and fails the whole call. Entries keep the list order.
func (c *Client) FetchBatch(ctx context.Context, limit int) ([]pokedex.Entry, error) {
	refs, err := c.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	entries := make([]pokedex.Entry, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	if c.maxConcurrency > 0 {
		g.SetLimit(c.maxConcurrency)
	}

	for i, ref := range refs {
		g.Go(func() error {
			entry, err := c.Get(gctx, ref.URL)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", ref.Name, err)
			}
			entries[i] = *entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug("batch fetched", zap.Int("count", len(entries)))
	return entries, nil
}

// Sprite downloads and decodes a sprite image.
func (c *Client) Sprite(ctx context.Context, spriteURL string) (image.Image, error) {
	body, err := c.get(ctx, spriteURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	img, _, err := image.Decode(io.LimitReader(body, maxSpriteBytes))
	if err != nil {
		return nil, decode(spriteURL, err)
	}
	return img, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return decode(endpoint, err)
	}
	return nil
}

// get issues a GET and returns the body of a 2xx response. Any other status
// is reported as not found.
func (c *Client) get(ctx context.Context, endpoint string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transport(endpoint, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("url", endpoint), zap.Error(err))
		return nil, transport(endpoint, err)
	}

	c.logger.Debug("request done",
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, notFound(endpoint, resp.StatusCode)
	}

	return resp.Body, nil
}
