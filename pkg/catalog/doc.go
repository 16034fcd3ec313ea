// Package catalog defines the data model shared by every part catalog client:
// search parameters, the cache signature derived from them, the candidates a
// catalog returns, and the ranking that turns candidates into supplier
// references.
//
// # Ranking
//
// Catalog results are ordered by the catalog itself. [Rank] keeps that order
// but moves basic (preferred stock) parts ahead of extended ones with a stable
// partition, and [Select] truncates the result to [MaxResults] references of
// the form "C<code>":
//
//	refs := catalog.Select(resp.Candidates)  // ["C25804", "C21190", ...]
//
// # Signatures
//
// [Signature] identifies a query by category and parameters. Two queries with
// equal signatures are guaranteed to hit the same catalog URL, which makes the
// signature the cache key for catalog responses.
package catalog
