// Package engine resolves abstract components into supplier part numbers.
//
// The [Engine] normalizes the component's footprint, picks the catalog
// category for the component kind, builds the category's search parameters,
// queries the catalog, and returns the top-ranked references:
//
//	e := engine.New(jlcsearch.NewClient(cache.NewMemoryCache(), jlcsearch.Options{}), logger)
//	parts, err := e.FindPart(ctx, engine.Request{
//	    SourceComponent:   component.Resistor{Resistance: component.Value(10000)},
//	    FootprinterString: "0603",
//	})
//	// parts = {"jlcpcb": ["C25804", "C98220", "C22810"]}
//
// Components without a catalog category resolve to an empty result without
// contacting the catalog. Only catalog failures are returned as errors.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/partsengine/pkg/catalog"
	"github.com/matzehuels/partsengine/pkg/component"
	pkgerrors "github.com/matzehuels/partsengine/pkg/errors"
	"github.com/matzehuels/partsengine/pkg/footprint"
	"github.com/matzehuels/partsengine/pkg/observability"
)

// SupplierJLCPCB is the supplier key under which references are returned.
const SupplierJLCPCB = "jlcpcb"

// SupplierPartNumbers maps a supplier to its part references, best first.
// It is empty for components the engine cannot resolve.
type SupplierPartNumbers map[string][]string

// Catalog is a searchable parts catalog.
type Catalog interface {
	Query(ctx context.Context, category string, params catalog.Params) (*catalog.Response, error)
}

// Request describes the component to resolve.
type Request struct {
	SourceComponent   component.Descriptor
	FootprinterString string
}

// requestJSON is the wire form of a Request.
type requestJSON struct {
	SourceComponent   json.RawMessage `json:"sourceComponent"`
	FootprinterString string          `json:"footprinterString,omitempty"`
}

// UnmarshalJSON decodes {"sourceComponent": {...}, "footprinterString": "..."}.
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw requestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidInput, err, "decode request")
	}
	if len(raw.SourceComponent) == 0 {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "request has no sourceComponent")
	}
	d, err := component.Decode(raw.SourceComponent)
	if err != nil {
		return err
	}
	*r = Request{SourceComponent: d, FootprinterString: raw.FootprinterString}
	return nil
}

// MarshalJSON encodes the request in its wire form.
func (r Request) MarshalJSON() ([]byte, error) {
	var sc json.RawMessage
	if r.SourceComponent != nil {
		data, err := component.Encode(r.SourceComponent)
		if err != nil {
			return nil, err
		}
		sc = data
	}
	return json.Marshal(requestJSON{SourceComponent: sc, FootprinterString: r.FootprinterString})
}

// Query is a planned catalog search.
type Query struct {
	Category  string
	Params    catalog.Params
	Footprint footprint.Translation
}

// Signature returns the cache signature of the query.
func (q Query) Signature() string {
	return catalog.Signature(q.Category, q.Params)
}

// Engine resolves components against a catalog. It is safe for concurrent use.
type Engine struct {
	Catalog Catalog
	Logger  *log.Logger
}

// New creates an engine over c. A nil logger selects log.Default().
func New(c Catalog, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{Catalog: c, Logger: logger}
}

// Plan returns the catalog query FindPart would issue for req. ok is false
// when the component has no catalog category.
func Plan(req Request) (q Query, ok bool) {
	if req.SourceComponent == nil {
		return Query{}, false
	}
	r, ok := routes[req.SourceComponent.Kind()]
	if !ok {
		return Query{}, false
	}
	tr := footprint.Translate(req.FootprinterString)
	return Query{
		Category:  r.category,
		Params:    r.params(req.SourceComponent, tr.Package, req.FootprinterString),
		Footprint: tr,
	}, true
}

// FindPart returns up to [catalog.MaxResults] supplier references for the
// requested component, basic parts first.
//
// Unknown component kinds yield an empty map and no catalog call. An empty
// catalog answer yields {"jlcpcb": []}. Catalog failures are returned with
// their CATALOG_* code intact.
func (e *Engine) FindPart(ctx context.Context, req Request) (SupplierPartNumbers, error) {
	hooks := observability.Engine()

	q, ok := Plan(req)
	if !ok {
		ftype := ""
		if req.SourceComponent != nil {
			ftype = req.SourceComponent.FType()
		}
		e.Logger.Debug("no catalog category", "ftype", ftype)
		hooks.OnUnknownCategory(ctx, ftype)
		return SupplierPartNumbers{}, nil
	}

	if q.Footprint.Fallback() && q.Params[paramPackage] != "" {
		e.Logger.Warn("unrecognized kicad footprint, searching by raw string",
			"footprint", q.Footprint.Raw, "category", q.Category)
		hooks.OnFootprintFallback(ctx, q.Footprint.Raw)
	}

	hooks.OnResolveStart(ctx, q.Category)
	start := time.Now()

	resp, err := e.Catalog.Query(ctx, q.Category, q.Params)
	if err != nil {
		hooks.OnResolveComplete(ctx, q.Category, 0, time.Since(start), err)
		return nil, fmt.Errorf("find %s: %w", req.SourceComponent.FType(), err)
	}

	refs := catalog.Select(resp.Candidates)
	hooks.OnResolveComplete(ctx, q.Category, len(refs), time.Since(start), nil)
	e.Logger.Debug("resolved",
		"category", q.Category,
		"candidates", len(resp.Candidates),
		"selected", len(refs),
		"duration", time.Since(start))

	return SupplierPartNumbers{SupplierJLCPCB: refs}, nil
}
