// Package pkg holds the partsengine libraries.
//
// # Overview
//
// partsengine resolves abstract circuit components into orderable JLCPCB part
// numbers. The libraries are layered:
//
//  1. [component] - circuit-json source components and their attributes
//  2. [footprint] - footprint strings to catalog package tokens
//  3. [catalog] - query parameters, candidate rows, ranking
//  4. [integrations] - HTTP catalog clients ([integrations/jlcsearch])
//  5. [engine] - per-category dispatch from component to ranked references
//  6. [pipeline] - concurrent batch resolution
//
// Supporting packages: [cache] (response cache backends), [errors] (coded
// errors), [httputil] (retry), [observability] (metrics hooks), [buildinfo].
//
// # Data flow
//
//	source component + footprint
//	         ↓
//	    [footprint] normalize
//	         ↓
//	    [engine] route by kind → category + params
//	         ↓
//	    [integrations/jlcsearch] query (cached by signature)
//	         ↓
//	    [catalog] rank: basic first, top 3, "C" + code
//	         ↓
//	    {"jlcpcb": ["C25804", ...]}
//
// # Quick Start
//
//	client := jlcsearch.NewClient(cache.NewMemoryCache(), jlcsearch.Options{})
//	e := engine.New(client, nil)
//	parts, err := e.FindPart(ctx, engine.Request{
//	    SourceComponent:   component.Resistor{Resistance: component.Value(10000)},
//	    FootprinterString: "0603",
//	})
package pkg
