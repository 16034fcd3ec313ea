// Package jlcsearch provides a client for the JLCPCB parts search API
// (https://jlcsearch.tscircuit.com).
//
// Every catalog category is listed at "<base>/<category>/list". The API answers
// a JSON object whose field named after the category holds the matching parts:
//
//	GET /resistors/list?json=true&package=0603&resistance=10000
//	{"resistors": [{"lcsc": 25804, "is_basic": true, ...}, ...]}
//
// Responses are cached by query signature, so a repeated query never reaches
// the network while its cache entry lives.
package jlcsearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/partsengine/pkg/cache"
	"github.com/matzehuels/partsengine/pkg/catalog"
	pkgerrors "github.com/matzehuels/partsengine/pkg/errors"
	"github.com/matzehuels/partsengine/pkg/integrations"
)

// DefaultBaseURL is the public jlcsearch endpoint.
const DefaultBaseURL = "https://jlcsearch.tscircuit.com"

// cacheNamespace scopes jlcsearch responses in a shared cache backend.
const cacheNamespace = "jlcsearch:"

// Client queries the jlcsearch catalog with caching.
type Client struct {
	*integrations.Client
	baseURL string
	group   singleflight.Group
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL  string        // Catalog endpoint, DefaultBaseURL if empty
	TTL      time.Duration // Cache entry lifetime, 0 for no expiry
	Timeout  time.Duration // Per-request timeout
	Attempts int           // Fetch attempts per cache miss, 1 if zero
	HTTP     *http.Client  // Replaces the default HTTP client when set
	Keyer    cache.Keyer   // Replaces the default cache key builder when set
}

// NewClient creates a jlcsearch client that stores responses in backend.
// A nil backend disables caching.
func NewClient(backend cache.Cache, opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	c := integrations.NewClient(backend, cacheNamespace, opts.TTL, map[string]string{
		"Accept": "application/json",
	})
	if opts.HTTP != nil {
		c.SetHTTPClient(opts.HTTP)
	} else if opts.Timeout > 0 {
		c.SetHTTPClient(integrations.NewHTTPClient(opts.Timeout))
	}
	if opts.Attempts > 0 {
		c.SetRetry(opts.Attempts, 0)
	}
	c.SetKeyer(opts.Keyer)

	return &Client{Client: c, baseURL: base}
}

// BaseURL returns the catalog endpoint the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Query returns the candidates listed under category for params.
//
// A cached response for the same signature is returned without a remote call.
// Otherwise exactly one GET is issued (more only when retries are configured),
// and concurrent misses for the same signature share that request. The shared
// request is detached from any single caller's cancellation: a caller whose
// ctx ends stops waiting, the others still get the result. A missing or null
// category field yields an empty candidate list, not an error.
//
// Errors carry the CATALOG_UNAVAILABLE or CATALOG_MALFORMED code. Neither kind
// of failure is cached.
func (c *Client) Query(ctx context.Context, category string, params catalog.Params) (*catalog.Response, error) {
	sig := catalog.Signature(category, params)
	shared := context.WithoutCancel(ctx)

	ch := c.group.DoChan(sig, func() (any, error) {
		return c.fetch(shared, sig, category, params)
	})

	select {
	case <-ctx.Done():
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeCatalogUnavailable, ctx.Err(), "query %s", category)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		resp := res.Val.(*catalog.Response)
		return &catalog.Response{Category: resp.Category, Candidates: slices.Clone(resp.Candidates)}, nil
	}
}

// fetch reads the response body from cache or the network. The category list
// is decoded inside the fetch so that a body which does not hold a candidate
// list never reaches the cache.
func (c *Client) fetch(ctx context.Context, sig, category string, params catalog.Params) (*catalog.Response, error) {
	var (
		body map[string]json.RawMessage
		resp *catalog.Response
	)
	err := c.Cached(ctx, sig, false, &body, func() error {
		body = nil
		if err := c.Get(ctx, c.listURL(category, params), &body); err != nil {
			return err
		}
		var err error
		resp, err = decodeCategory(category, body)
		return err
	})
	switch {
	case err == nil:
	case pkgerrors.GetCode(err) != "":
		return nil, err
	case errors.Is(err, integrations.ErrMalformed):
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeCatalogMalformed, err, "decode %s response", category)
	default:
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeCatalogUnavailable, err, "query %s", category)
	}

	if resp == nil {
		return decodeCategory(category, body)
	}
	return resp, nil
}

func (c *Client) listURL(category string, params catalog.Params) string {
	return c.baseURL + "/" + category + "/list?" + params.Encode()
}

func decodeCategory(category string, body map[string]json.RawMessage) (*catalog.Response, error) {
	resp := &catalog.Response{Category: category, Candidates: []catalog.Candidate{}}

	raw, ok := body[category]
	if !ok || string(raw) == "null" {
		return resp, nil
	}
	if err := json.Unmarshal(raw, &resp.Candidates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeCatalogMalformed, err, "decode %s list", category)
	}
	if resp.Candidates == nil {
		resp.Candidates = []catalog.Candidate{}
	}
	return resp, nil
}
