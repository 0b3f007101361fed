// Command faidentd serves fatty acid peak identification over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	facore "github.com/xhn-ccc/fat-analysis-tool"
	"github.com/xhn-ccc/fat-analysis-tool/internal/processing"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/config"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/ingest"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/server"
)

func main() {
	cfg := config.DefaultConfig()
	cfg.FromEnv()
	srvCfg := config.DefaultServerConfig()
	srvCfg.FromEnv()

	flag.StringVar(&srvCfg.Port, "port", srvCfg.Port, "HTTP listen port")
	flag.IntVar(&srvCfg.WorkerCount, "workers", srvCfg.WorkerCount, "identification workers")
	flag.StringVar(&srvCfg.WebhookURL, "webhook", srvCfg.WebhookURL, "endpoint for async result publication")
	flag.BoolVar(&srvCfg.EnableMetrics, "metrics", srvCfg.EnableMetrics, "expose /metrics")
	flag.BoolVar(&srvCfg.EnableProfiling, "pprof", srvCfg.EnableProfiling, "run pprof on the profiling port")
	flag.StringVar(&cfg.RefFile, "ref", cfg.RefFile, "reference table CSV; empty uses the built-in standard mix")
	flag.StringVar(&cfg.AnchorName, "anchor", cfg.AnchorName, "anchor compound for drift calibration; empty disables calibration")
	flag.Float64Var(&cfg.SearchRadius, "radius", cfg.SearchRadius, "anchor search radius in minutes")
	flag.Float64Var(&cfg.Tolerance, "tolerance", cfg.Tolerance, "match tolerance in minutes")
	flag.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "suppress progress output")
	flag.Parse()

	table, err := loadTable(cfg.RefFile)
	if err != nil {
		log.Fatalf("faidentd: %v", err)
	}
	log.Printf("reference table loaded with %d compounds", table.Len())

	processor := processing.New(cfg, table)
	srv := server.New(srvCfg, processor, cfg.Quiet)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("faidentd: %v", err)
		}
	}()

	<-done
	log.Printf("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("faidentd: shutdown: %v", err)
	}
	log.Printf("faidentd stopped")
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
