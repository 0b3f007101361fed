// Command faident identifies fatty acid peaks in chromatography exports.
// Each argument is one sample's peak CSV; the combined compound matrix
// goes to stdout or the -o file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	facore "github.com/xhn-ccc/fat-analysis-tool"
	"github.com/xhn-ccc/fat-analysis-tool/internal/processing"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/config"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/ingest"
)

func usage() {
	fmt.Fprintf(os.Stderr, `faident - fatty acid peak identification

Usage:
  faident [options] sample.csv [sample2.csv ...]

Each sample file needs a header row with the retention time and area
columns (see -time-col and -area-col). The sample ID is the file name
without its extension. Per-sample problems are reported on stderr and
never abort the other samples.

Options:
`)
	flag.PrintDefaults()
}

func main() {
	cfg := config.DefaultConfig()
	cfg.FromEnv()

	flag.StringVar(&cfg.RefFile, "ref", cfg.RefFile, "reference table CSV (name,expected_time); empty uses the built-in standard mix")
	flag.StringVar(&cfg.AnchorName, "anchor", cfg.AnchorName, "anchor compound for drift calibration; empty disables calibration")
	flag.Float64Var(&cfg.SearchRadius, "radius", cfg.SearchRadius, "anchor search radius in minutes")
	flag.Float64Var(&cfg.Tolerance, "tolerance", cfg.Tolerance, "match tolerance in minutes")
	flag.StringVar(&cfg.Refine, "refine", cfg.Refine, `offset refinement method ("nelder-mead", "lm" or empty)`)
	flag.StringVar(&cfg.TimeColumn, "time-col", cfg.TimeColumn, "retention time column name")
	flag.StringVar(&cfg.AreaColumn, "area-col", cfg.AreaColumn, "peak area column name")
	flag.StringVar(&cfg.Metric, "metric", cfg.Metric, `matrix metric ("percentage" or "area")`)
	flag.StringVar(&cfg.OutFile, "o", cfg.OutFile, "output CSV file (default stdout)")
	flag.UintVar(&cfg.Workers, "workers", cfg.Workers, "concurrent sample workers")
	flag.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "suppress progress output")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	log.SetFlags(0)

	table, err := loadTable(cfg.RefFile)
	if err != nil {
		log.Fatalf("faident: %v", err)
	}

	opts := facore.Options{
		AnchorName:   cfg.AnchorName,
		SearchRadius: cfg.SearchRadius,
		Tolerance:    cfg.Tolerance,
		Refine:       cfg.Refine,
	}
	if err := opts.Validate(table); err != nil {
		log.Fatalf("faident: %v", err)
	}

	samples, failed := loadSamples(flag.Args(), cfg)

	results, outcomes := facore.ProcessBatch(samples, table, opts, int(cfg.Workers))
	outcomes = append(outcomes, failed...)
	for _, o := range outcomes {
		report(o, cfg.Quiet)
	}

	combined := facore.Combine(results, table, processing.ParseMetric(cfg.Metric))
	if err := writeCombined(cfg.OutFile, combined); err != nil {
		log.Fatalf("faident: write output: %v", err)
	}

	if len(failed) > 0 {
		os.Exit(1)
	}
}

// loadSamples reads every sample file, turning an unreadable or malformed
// file into an error outcome for that sample instead of aborting the run.
func loadSamples(paths []string, cfg *config.Config) ([]facore.Sample, []facore.Outcome) {
	var samples []facore.Sample
	var failed []facore.Outcome
	for _, path := range paths {
		sample, dropped, err := readSampleFile(path, cfg)
		if err != nil {
			failed = append(failed, facore.Outcome{
				SampleID: sampleID(path),
				Status:   facore.StatusError,
				Err:      err,
			})
			continue
		}
		if dropped > 0 && !cfg.Quiet {
			log.Printf("%s: dropped %d rows without a usable retention time", sample.ID, dropped)
		}
		samples = append(samples, sample)
	}
	return samples, failed
}

func writeCombined(path string, combined facore.CombinedResult) error {
	if path == "" {
		return ingest.WriteCombined(os.Stdout, combined)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ingest.WriteCombined(f, combined); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func loadTable(path string) (*facore.ReferenceTable, error) {
	if path == "" {
		return facore.DefaultReferenceTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingest.ReadReference(f)
}

func readSampleFile(path string, cfg *config.Config) (facore.Sample, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return facore.Sample{}, 0, err
	}
	defer f.Close()

	return ingest.ReadSample(f, sampleID(path), cfg.TimeColumn, cfg.AreaColumn)
}

func sampleID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func report(o facore.Outcome, quiet bool) {
	switch o.Status {
	case facore.StatusError:
		log.Printf("%s: ERROR: %v", o.SampleID, o.Err)
	case facore.StatusWarning:
		for _, w := range o.Warnings {
			log.Printf("%s: warning: %s", o.SampleID, w)
		}
	default:
		if !quiet {
			log.Printf("%s: ok", o.SampleID)
		}
	}
}
