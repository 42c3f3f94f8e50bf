package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lintang-b-s/navigatorx-table/pkg/config"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/table"
	"github.com/lintang-b-s/navigatorx-table/pkg/logger"
	"github.com/lintang-b-s/navigatorx-table/pkg/server"
	"github.com/lintang-b-s/navigatorx-table/pkg/snap"
	"github.com/lintang-b-s/navigatorx-table/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

var (
	configFile = flag.String("config", "", "yaml config file, kosong = default")
	indexFile  = flag.String("index", "", "index file, overrides index.path")
	algorithm  = flag.String("algorithm", "", "ch atau mld, overrides index.algorithm")
	numSources = flag.Int("sources", 3000, "jumlah source")
	numTargets = flag.Int("destinations", 3000, "jumlah destination")
	seed       = flag.Uint64("seed", 42, "random seed")
)

// central london bounding box
const (
	minLat = 51.5062628
	maxLat = 51.5293873
	minLon = -0.124899
	maxLon = -0.0996648
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *indexFile != "" {
		cfg.Index.Path = *indexFile
	}
	if *algorithm != "" {
		cfg.Index.Algorithm = *algorithm
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

	if err := run(cfg, log); err != nil {
		log.Fatal("table query failed", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx := context.Background()
	algo, _ := cfg.Algorithm()
	metric, _ := cfg.Metric()

	eng := engine.NewEngine(engine.Config{
		IndexPath: cfg.Index.Path,
		Algorithm: algo,
		Metric:    metric,
		Workers:   util.NumWorkers(cfg.Table.Workers),
		Table: table.Options{
			MaxMatrixSize: cfg.Table.MaxMatrixSize,
			// random points can land far from any road
			UnsnappablePolicy: table.PolicyUnreachable,
		},
	}, log)
	if err := eng.Load(ctx); err != nil {
		return err
	}

	locator, err := snap.NewLocator(eng.Graph(), snap.NewRtreeIndex(eng.Graph(), log), snap.LocatorOptions{
		MaxSnapRadius:      cfg.Snap.MaxRadius,
		SmallComponentSize: cfg.Snap.SmallComponentSize,
		CacheSize:          cfg.Snap.CacheSize,
	}, log)
	if err != nil {
		return err
	}

	coords := randomCoordinates(rand.New(rand.NewSource(*seed)), *numSources+*numTargets)

	params := table.Params{
		Sources:      make([]int, *numSources),
		Destinations: make([]int, *numTargets),
		Annotations:  table.AnnotationDuration | table.AnnotationDistance,
	}
	for i := range params.Sources {
		params.Sources[i] = i
	}
	for j := range params.Destinations {
		params.Destinations[j] = *numSources + j
	}

	st := time.Now()
	phantoms, err := locator.LocateAll(ctx, coords)
	if err != nil {
		return err
	}
	snapped := time.Since(st)

	st = time.Now()
	m, err := eng.Table(ctx, phantoms, params)
	if err != nil {
		return queryError(err)
	}

	reachable := 0
	for _, row := range table.Rows2D(m.Durations) {
		for _, d := range row {
			if d != table.Unreachable {
				reachable++
			}
		}
	}
	fmt.Printf("%s table %dx%d: snapping %v, query %v, %d reachable pairs\n",
		eng.Algorithm(), m.Rows, m.Cols, snapped, time.Since(st), reachable)
	return nil
}

func randomCoordinates(rng *rand.Rand, n int) []datastructure.Coordinate {
	coords := make([]datastructure.Coordinate, n)
	for i := range coords {
		coords[i] = datastructure.NewCoordinate(
			minLat+rng.Float64()*(maxLat-minLat),
			minLon+rng.Float64()*(maxLon-minLon))
	}
	return coords
}

// queryError prints the engine's code and message and returns a non-nil error
// so main exits with status 1.
func queryError(err error) error {
	code := server.CodeOf(err)
	msg := err.Error()
	var se *server.Error
	if errors.As(err, &se) {
		msg = se.Message()
	}
	fmt.Printf("code: %s\nmessage: %s\n", code, msg)
	return fmt.Errorf("table query: %s: %s", code, msg)
}
