package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	_ "github.com/lintang-b-s/navigatorx-table/docs"
	"github.com/lintang-b-s/navigatorx-table/pkg/config"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/table"
	"github.com/lintang-b-s/navigatorx-table/pkg/kv"
	"github.com/lintang-b-s/navigatorx-table/pkg/logger"
	"github.com/lintang-b-s/navigatorx-table/pkg/server/rest"
	"github.com/lintang-b-s/navigatorx-table/pkg/server/rest/service"
	"github.com/lintang-b-s/navigatorx-table/pkg/snap"
	"github.com/lintang-b-s/navigatorx-table/pkg/util"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

var (
	configFile = flag.String("config", "", "yaml config file, kosong = default")
	listenAddr = flag.String("listenaddr", "", "server listen address, overrides server.addr")
	indexFile  = flag.String("index", "", "index file, overrides index.path")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")
)

//	@title			navigatorx-table API
//	@version		1.0
//	@description	many-to-many distance/duration table over Contraction Hierarchies or Multi-Level Dijkstra

//	@contact.name	lintang birda saputra

//	@license.name	GNU Affero General Public License v3.0
//	@license.url	https://www.gnu.org/licenses/gpl-3.0.en.html

// @host		localhost:5000
// @BasePath	/api
// @schemes	http
func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.Server.Addr = *listenAddr
	}
	if *indexFile != "" {
		cfg.Index.Path = *indexFile
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("engine stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	algo, _ := cfg.Algorithm()
	metric, _ := cfg.Metric()
	policy, _ := cfg.UnsnappablePolicy()

	eng := engine.NewEngine(engine.Config{
		IndexPath: cfg.Index.Path,
		Algorithm: algo,
		Metric:    metric,
		Workers:   util.NumWorkers(cfg.Table.Workers),
		Table: table.Options{
			MaxMatrixSize:     cfg.Table.MaxMatrixSize,
			UnsnappablePolicy: policy,
		},
	}, log)
	if err := eng.Load(ctx); err != nil {
		return err
	}
	recordMemProfile(memprofile, "load_index")

	var candidates snap.CandidateIndex
	switch cfg.Snap.Index {
	case "kv":
		backend, _ := kv.ParseBackend(cfg.Snap.KVBackend)
		store, err := kv.OpenStore(backend, cfg.Snap.KVDir)
		if err != nil {
			return fmt.Errorf("open kv store: %w", err)
		}
		kvDB := kv.NewKVDB(store, kv.DefaultResolution, log)
		defer kvDB.Close()
		candidates = kvDB
	default:
		candidates = snap.NewRtreeIndex(eng.Graph(), log)
	}

	locator, err := snap.NewLocator(eng.Graph(), candidates, snap.LocatorOptions{
		MaxSnapRadius:      cfg.Snap.MaxRadius,
		SmallComponentSize: cfg.Snap.SmallComponentSize,
		CacheSize:          cfg.Snap.CacheSize,
	}, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.Server.CORSOrigin, ","),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Mount("/debug", middleware.Profiler())
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	tableSvc := service.NewTableService(eng, locator, cfg.Table.DefaultScale, log)
	rest.TableRouter(r, tableSvc, cfg.Server.Profile, m)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server started",
			zap.String("addr", cfg.Server.Addr),
			zap.Stringer("algorithm", eng.Algorithm()),
			zap.Stringer("metric", eng.Metric()),
			zap.Int("max_matrix_size", eng.MaxMatrixSize()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
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
