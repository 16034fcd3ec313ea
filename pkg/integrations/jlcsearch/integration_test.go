//go:build integration

package jlcsearch

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/partsengine/pkg/catalog"
)

func TestQuery_Integration(t *testing.T) {
	base := os.Getenv("PARTSENGINE_CATALOG_URL")
	if base == "" {
		base = DefaultBaseURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := NewClient(nil, Options{BaseURL: base})
	resp, err := c.Query(ctx, "resistors", catalog.Params{"resistance": "10000", "package": "0603"})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(resp.Candidates) == 0 {
		t.Fatal("expected at least one 10k 0603 resistor")
	}
	refs := catalog.Select(resp.Candidates)
	t.Logf("10k 0603: %v", refs)
}
