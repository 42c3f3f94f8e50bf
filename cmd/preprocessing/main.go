package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/lintang-b-s/navigatorx-table/pkg/config"
	"github.com/lintang-b-s/navigatorx-table/pkg/contractor"
	"github.com/lintang-b-s/navigatorx-table/pkg/customizer"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/kv"
	"github.com/lintang-b-s/navigatorx-table/pkg/logger"
	"github.com/lintang-b-s/navigatorx-table/pkg/osmparser"
	"github.com/lintang-b-s/navigatorx-table/pkg/partitioner"
	"github.com/lintang-b-s/navigatorx-table/pkg/storage"
	"github.com/lintang-b-s/navigatorx-table/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	configFile = flag.String("config", "", "yaml config file, kosong = default")
	mapFile    = flag.String("f", "solo_jogja.osm.pbf", "openstreeetmap file buat road network graphnya")
	algorithm  = flag.String("algorithm", "", "ch atau mld, overrides index.algorithm")
	metric     = flag.String("metric", "", "duration atau distance, overrides index.metric")
	out        = flag.String("out", "", "output index file, overrides index.path")
	buildKV    = flag.Bool("kv", false, "also build the h3 cell -> edge index for snapping")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *algorithm != "" {
		cfg.Index.Algorithm = *algorithm
	}
	if *metric != "" {
		cfg.Index.Metric = *metric
	}
	if *out != "" {
		cfg.Index.Path = *out
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if *cpuprofile != "" {
		// https://go.dev/blog/pprof
		// ./bin/navigatorx-preprocessing -cpuprofile=navigatorxcpu.prof -memprofile=navigatorxmem.mprof
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("create cpu profile", zap.Error(err))
		}
		defer f.Close()

		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("preprocessing failed", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := time.Now()
	algo, _ := cfg.Algorithm()
	weightMetric, _ := cfg.Metric()
	workers := util.NumWorkers(cfg.Preprocessing.Workers)

	log.Info("reading osm file", zap.String("file", *mapFile))
	g, err := osmparser.NewOSMParser(log).Parse(ctx, *mapFile)
	if err != nil {
		return fmt.Errorf("parse osm: %w", err)
	}
	recordMemProfile(memprofile, "parsing_osm_data")

	g.ApplyMetric(weightMetric)
	contractor.ComputeComponents(g, log)

	eg, egctx := errgroup.WithContext(ctx)
	if *buildKV {
		eg.Go(func() error {
			backend, _ := kv.ParseBackend(cfg.Snap.KVBackend)
			store, err := kv.OpenStore(backend, cfg.Snap.KVDir)
			if err != nil {
				return fmt.Errorf("open kv store: %w", err)
			}
			kvDB := kv.NewKVDB(store, kv.DefaultResolution, log)
			defer kvDB.Close()
			return kvDB.BuildH3IndexedEdges(egctx, g, workers)
		})
	}

	eg.Go(func() error {
		switch algo {
		case datastructure.AlgorithmCH:
			ch := contractor.NewContractor(g, log).Contract()
			log.Info("saving contraction hierarchies index", zap.String("path", cfg.Index.Path))
			return storage.WriteCHIndex(cfg.Index.Path, ch, weightMetric)
		default:
			hp, err := partitioner.NewH3Partitioner(cfg.Preprocessing.H3Resolutions, log)
			if err != nil {
				return err
			}
			p, err := hp.Partition(g)
			if err != nil {
				return fmt.Errorf("partition: %w", err)
			}
			overlay := customizer.NewCustomizer(g, p, workers, log).Customize()
			log.Info("saving multi-level dijkstra index", zap.String("path", cfg.Index.Path))
			return storage.WriteMLDIndex(cfg.Index.Path, datastructure.NewMLDIndex(g, p, overlay), weightMetric)
		}
	})

	if err := eg.Wait(); err != nil {
		return err
	}
	recordMemProfile(memprofile, "finish_preprocessing")

	log.Info("preprocessing done",
		zap.Stringer("algorithm", algo),
		zap.Stringer("metric", weightMetric),
		zap.Int("nodes", g.NumNodes()),
		zap.Int("edges", g.NumEdges()),
		zap.Duration("elapsed", time.Since(st)))
	return nil
}

func recordMemProfile(memprofile *string, name string) {
	if *memprofile != "" {
		path := strings.Replace(*memprofile, ".mprof", fmt.Sprintf("%s.mprof", name), -1)
		f, err := os.Create(path)
		if err != nil {
			return
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
