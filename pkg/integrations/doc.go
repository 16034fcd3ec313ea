// Package integrations provides the shared HTTP client used by part catalog
// clients.
//
// # Overview
//
// Each catalog has its own subpackage:
//
//   - [jlcsearch]: the JLCPCB parts search API
//
// # Shared Infrastructure
//
// The [Client] type provides HTTP functionality used by every catalog client:
//
//   - Response caching through any [cache.Cache] backend, keyed by a
//     per-client namespace
//   - Retry of transient failures via [httputil.Retry]
//   - Status mapping to [ErrNotFound] and [ErrNetwork], and decode failures
//     to [ErrMalformed]
//   - HTTP and cache events reported to [observability] hooks
//
// A catalog client embeds *Client and wraps a fetch in [Client.Cached]:
//
//	var body map[string]json.RawMessage
//	err := c.Cached(ctx, key, false, &body, func() error {
//	    return c.Get(ctx, url, &body)
//	})
//
// [jlcsearch]: github.com/matzehuels/partsengine/pkg/integrations/jlcsearch
// [cache.Cache]: github.com/matzehuels/partsengine/pkg/cache.Cache
// [httputil.Retry]: github.com/matzehuels/partsengine/pkg/httputil.Retry
// [observability]: github.com/matzehuels/partsengine/pkg/observability
package integrations
