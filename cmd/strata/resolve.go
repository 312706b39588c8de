package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"strata/internal/diag"
	"strata/internal/diagfmt"
	"strata/internal/driver"
	"strata/internal/manifest"
	"strata/internal/observ"
	"strata/internal/resolve"
)

var (
	resolveJobs     int
	resolveJSON     bool
	resolveUseCache bool
	resolveMaxDepth int
)

func init() {
	resolveCmd.Flags().IntVar(&resolveJobs, "jobs", 0, "parallel workers (0 = GOMAXPROCS)")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "emit diagnostics as JSON")
	resolveCmd.Flags().BoolVar(&resolveUseCache, "cache", false, "reuse chains cached from previous runs")
	resolveCmd.Flags().IntVar(&resolveMaxDepth, "max-depth", 0, "chain depth bound (0 = scenario setting)")
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <scenario.toml>",
	Short: "Resolve every call site in a scenario file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxDiagnostics, _ := cmd.Flags().GetInt("max-diagnostics")
		showTimings, _ := cmd.Flags().GetBool("timings")
		timer := observ.NewTimer()

		loadPhase := timer.Begin("load")
		sc, err := manifest.Load(args[0])
		timer.End(loadPhase, args[0])
		if err != nil {
			return reportLoadError(cmd, err)
		}

		maxDepth := sc.MaxDepth
		if resolveMaxDepth > 0 {
			maxDepth = resolveMaxDepth
		}
		r := resolve.New(sc.Types, sc.Registry, maxDepth)

		var cache *driver.DiskCache
		var key driver.Digest
		if resolveUseCache {
			cache, err = driver.OpenDiskCache("strata")
			if err != nil {
				return err
			}
			key = driver.Fingerprint(sc.Registry)
			if err := cache.SeedBuilder(key, r.Chains()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: chain cache unreadable: %v\n", err)
			}
		}

		runPhase := timer.Begin("resolve")
		results, err := driver.ResolveAll(cmd.Context(), r, sc.Decls, sc.Strings, sc.Sites, driver.Options{
			Jobs:           resolveJobs,
			MaxDiagnostics: maxDiagnostics,
		})
		timer.End(runPhase, fmt.Sprintf("%d call sites", len(sc.Sites)))
		if err != nil {
			return err
		}

		if cache != nil {
			if err := cache.PutChains(key, r.Chains().Snapshot()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: chain cache not written: %v\n", err)
			}
		}

		out := cmd.OutOrStdout()
		if !resolveJSON {
			for _, res := range results {
				if res.Result.Outcome.Kind != resolve.OutcomeResolved {
					continue
				}
				sel := res.Result.Outcome.Selected
				decl := sc.Decls.Get(sel.Decl)
				fmt.Fprintf(out, "%s.%s -> %s::%s (%s, chain index %d)\n",
					diagfmt.Label(sc.Types, sc.Strings, res.Site.Receiver),
					sc.Strings.MustLookup(res.Site.Method),
					diagfmt.Label(sc.Types, sc.Strings, decl.Owner),
					sc.Strings.MustLookup(decl.Name),
					sel.Form, sel.ChainIndex)
			}
		}

		merged := driver.MergeBags(results, maxDiagnostics)
		if resolveJSON {
			if err := diagfmt.JSON(out, merged, sc.Files); err != nil {
				return err
			}
		} else {
			diagfmt.Pretty(out, merged, sc.Files, diagfmt.PrettyOpts{
				Color:     useColor(cmd, os.Stdout),
				ShowNotes: true,
			})
		}

		if showTimings {
			fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
		}
		// The merged bag is capped by --max-diagnostics; count from the
		// results so the summary never undercounts.
		if failed := driver.CountFailures(results); failed > 0 {
			return fmt.Errorf("%d of %d call sites failed", failed, len(sc.Sites))
		}
		return nil
	},
}

// reportLoadError prints manifest failures through the diagnostic pipeline so
// scripted callers see the same codes as resolution failures.
func reportLoadError(cmd *cobra.Command, err error) error {
	var me *manifest.Error
	if !errors.As(err, &me) {
		return err
	}
	bag := diag.NewBag(1)
	bag.Add(me.Diagnostic(0))
	diagfmt.Pretty(cmd.ErrOrStderr(), bag, nil, diagfmt.PrettyOpts{
		Color: useColor(cmd, os.Stderr),
	})
	return err
}
