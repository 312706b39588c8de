// Package driver orchestrates resolution over many call sites: parallel
// evaluation, diagnostic collection, and chain caching between runs. The
// engine packages stay pure; everything with goroutines or IO lives here.
package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"strata/internal/diag"
	"strata/internal/diagfmt"
	"strata/internal/resolve"
	"strata/internal/source"
	"strata/internal/symbols"
	"strata/internal/types"
)

// CallSite describes one method call to resolve.
type CallSite struct {
	Receiver    types.TypeID
	Method      source.StringID
	RequireDyn  bool
	CallRegions []types.RegionID
	Span        source.Span
}

// SiteResult pairs a call site with its resolution result and diagnostics.
type SiteResult struct {
	Site   CallSite
	Result resolve.Result
	Bag    *diag.Bag
}

// Options tunes a batch run.
type Options struct {
	Jobs           int // <= 0 means GOMAXPROCS
	MaxDiagnostics int // per site; <= 0 means 16
}

// ResolveAll evaluates every call site against one frozen resolver. Sites
// are independent, so they run in parallel; each worker writes only its own
// slot, and the registry is never mutated. The result order matches the
// input order regardless of scheduling, keeping batch output deterministic.
func ResolveAll(ctx context.Context, r *resolve.Resolver, decls *symbols.DeclSet, strs *source.Interner, sites []CallSite, opts Options) ([]SiteResult, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = 16
	}

	results := make([]SiteResult, len(sites))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(sites), 1)))

	for i, site := range sites {
		i, site := i, site
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			bag := diag.NewBag(maxDiagnostics)
			res := r.Resolve(resolve.Request{
				Receiver:           site.Receiver,
				Method:             site.Method,
				Decls:              decls,
				RequireDynDispatch: site.RequireDyn,
				CallRegions:        site.CallRegions,
				Span:               site.Span,
			})
			if res.Failure != nil {
				diagfmt.Report(diag.BagReporter{Bag: bag}, res.Failure, r.Types(), strs, decls)
			}
			// No mutex needed: slot i belongs to this goroutine alone.
			results[i] = SiteResult{Site: site, Result: res, Bag: bag}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// CountFailures reports how many sites failed to resolve. Unlike the merged
// bag, the count is not subject to any diagnostic limit.
func CountFailures(results []SiteResult) int {
	failed := 0
	for _, r := range results {
		if r.Result.Failure != nil {
			failed++
		}
	}
	return failed
}

// MergeBags collects per-site diagnostics into one sorted bag, truncated at
// maxDiagnostics. Use CountFailures for an uncapped failure total.
func MergeBags(results []SiteResult, maxDiagnostics int) *diag.Bag {
	if maxDiagnostics <= 0 {
		maxDiagnostics = 256
	}
	merged := diag.NewBag(maxDiagnostics)
	for _, r := range results {
		if r.Bag == nil {
			continue
		}
		for _, d := range r.Bag.Items() {
			if !merged.Add(d) {
				merged.Sort()
				return merged
			}
		}
	}
	merged.Sort()
	return merged
}
