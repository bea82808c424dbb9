package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"edgelink.local/gee"
	"edgelink.local/gee/middleware"
	"edgelink.local/internal/app/shortlink"
	"edgelink.local/internal/app/shortlink/audit"
	slcache "edgelink.local/internal/app/shortlink/cache"
	shortlinkhttpapi "edgelink.local/internal/app/shortlink/httpapi"
	"edgelink.local/internal/app/shortlink/repo"
	"edgelink.local/internal/app/shortlink/signer"
	"edgelink.local/internal/platform/awscfg"
	platformcache "edgelink.local/internal/platform/cache"
	"edgelink.local/internal/platform/config"
	"edgelink.local/internal/platform/db"
	"edgelink.local/internal/platform/httpmiddleware"
	"edgelink.local/internal/platform/httpserver"
	"edgelink.local/internal/platform/metrics"
	"edgelink.local/internal/platform/migrate"
	"edgelink.local/internal/platform/trace"
	"edgelink.local/migrations"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cfg := config.Load()

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	slog.SetDefault(slog.New(h))

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// AWS config is needed for the S3 signer even when records live elsewhere.
	awsCtx, cancelAWS := context.WithTimeout(context.Background(), 5*time.Second)
	awsConf, errAWS := awscfg.Load(awsCtx, cfg.AWSRegion)
	cancelAWS()
	if errAWS != nil {
		log.Fatal(errAWS)
	}

	// Store
	var (
		store  shortlink.Store
		dbPool *pgxpool.Pool
		ready  = func(context.Context) error { return nil }
		issued *slcache.BloomFilter
	)
	switch cfg.StoreBackend {
	case "memory":
		mem := repo.NewMemoryStore()
		store = mem
		go repo.NewSweeper(mem, cfg.PurgeInterval).Run(stopCtx)
		slog.Warn("using in-memory store; records are lost on restart")
	case "postgres":
		dbCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		pool, errDB := db.New(dbCtx, cfg.DBDSN)
		if errDB != nil {
			cancel()
			log.Fatal(errDB)
		}
		if err := pool.Ping(dbCtx); err != nil {
			cancel()
			log.Fatal(err)
		}
		cancel()
		dbPool = pool
		defer dbPool.Close()
		slog.Info("database connected")

		migCtx, cancelMig := context.WithTimeout(context.Background(), 30*time.Second)
		res, errMig := migrate.Up(migCtx, dbPool, migrate.Options{Dir: cfg.MigrationsDir, FS: migrations.FS})
		cancelMig()
		if errMig != nil {
			log.Fatal(errMig)
		}
		slog.Info("migrations done", "applied", len(res.AppliedFiles), "skipped", len(res.SkippedFiles))

		pg := repo.NewPostgresStore(dbPool)
		store = pg
		go repo.NewSweeper(pg, cfg.PurgeInterval).Run(stopCtx)

		// expect 1M codes at 1% false positives
		issued = slcache.NewBloomFilter(1_000_000, 0.01)
		warmCtx, cancelWarm := context.WithTimeout(context.Background(), 30*time.Second)
		if err := issued.Warm(warmCtx, pg); err != nil {
			slog.Warn("bloom filter warm-up failed", "err", err)
		}
		cancelWarm()
		slog.Info("bloom filter warmed", "approx_codes", issued.Count())

		ready = func(ctx context.Context) error { return dbPool.Ping(ctx) }
	case "dynamodb":
		store = repo.NewDynamoStore(dynamodb.NewFromConfig(awsConf), cfg.DynamoDBTable)
		slog.Info("using dynamodb store", "table", cfg.DynamoDBTable, "region", cfg.AWSRegion)
	default:
		log.Fatalf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	// Cache
	if cfg.CacheEnabled {
		redisClient, errRedis := platformcache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if errRedis != nil {
			log.Fatal(errRedis)
		}
		defer redisClient.Close()
		localCache, errLocal := slcache.NewLocalCache(cfg.LocalCacheMax, cfg.LocalCacheTTL)
		if errLocal != nil {
			log.Fatal(errLocal)
		}
		recordCache := slcache.NewRecordCache(redisClient, localCache)
		defer recordCache.Close()
		store = repo.NewCachedStore(store, recordCache)
	} else {
		slog.Warn("record cache disabled by config", "CACHE_ENABLED", false)
	}

	// Audit
	var opts []shortlink.AllocatorOption
	if issued != nil {
		opts = append(opts, shortlink.WithIssuedFilter(issued))
	}
	if cfg.AuditEnabled {
		var sink audit.Sink = audit.LogSink{}
		if dbPool != nil {
			sink = audit.NewPostgresSink(dbPool)
		}
		if cfg.KafkaEnabled {
			slog.Info("publishing link events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
			publisher := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
			defer publisher.Close()
			consumer := audit.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, sink)
			defer consumer.Close()
			go consumer.Run(stopCtx)
			opts = append(opts, shortlink.WithPublisher(publisher))
		} else {
			publisher := audit.NewChannelPublisher(10000)
			defer publisher.Close()
			go audit.NewConsumer(publisher, sink).Run(stopCtx)
			opts = append(opts, shortlink.WithPublisher(publisher))
		}
	}

	slCfg := shortlink.Config{
		Domain:          cfg.Domain,
		MaxCodeAttempts: cfg.MaxCodeAttempts,
		Location:        cfg.DisplayLocation,
	}
	var gen shortlink.CodeGenerator = shortlink.NewSampleGenerator(nil)
	if issued != nil {
		gen = shortlink.NewSampleGenerator(issued)
	}
	allocator := shortlink.NewAllocator(store, gen, slCfg, opts...)
	resolver := shortlink.NewResolver(store, signer.NewS3SignerFromConfig(awsConf))

	metrics.Init()

	if cfg.TracingEnabled {
		shutdown, errTrace := trace.InitTrace(cfg.OtlpGrpcEndpoint, cfg.OtlpServiceName, version)
		if errTrace != nil {
			slog.Error("trace init failed", "err", errTrace)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					slog.Error("trace shutdown failed", "err", err)
				}
			}()
		}
	} else {
		slog.Warn("tracing disabled by config", "TRACING_ENABLED", false)
	}

	// Public
	r := gee.Default()
	r.Use(middleware.ReqID(), middleware.AccessLog(), httpmiddleware.Metrics(), httpmiddleware.TraceName())

	api := r.Group("/api/v1")
	shortlinkhttpapi.RegisterAPIRoutes(api, allocator)
	shortlinkhttpapi.RegisterPublicRoutes(r, resolver)

	publicHandler := http.Handler(r)
	if cfg.TracingEnabled {
		publicHandler = otelhttp.NewHandler(r, "http")
	}
	publicSrv := httpserver.New(cfg, publicHandler)

	// Admin, loopback or private network only
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("store not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})
	adminMux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"service_name":  cfg.ServiceName,
			"version":       version,
			"commit":        commit,
			"build_time":    buildTime,
			"go_version":    runtime.Version(),
			"store_backend": cfg.StoreBackend,
		})
	})
	if cfg.PprofEnabled {
		adminMux.HandleFunc("/debug/pprof/", pprof.Index)
		adminMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		adminMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		adminMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		adminMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	adminSrv := httpserver.NewAdmin(cfg, adminMux)

	errch := make(chan error, 2)
	go func() {
		errch <- httpserver.Run(stopCtx, publicSrv, cfg.ShutdownTimeout)
	}()
	go func() {
		errch <- httpserver.Run(stopCtx, adminSrv, cfg.ShutdownTimeout)
	}()

	err := <-errch
	stop()
	select {
	case err2 := <-errch:
		err = errors.Join(err, err2)
	case <-time.After(cfg.ShutdownTimeout + time.Second):
	}
	if err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}
