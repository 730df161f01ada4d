package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"counter-service/counter"
	"counter-service/counter/application"
	"counter-service/counter/domain"
	"counter-service/counter/infra"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// .env é opcional; variáveis já exportadas têm precedência
	_ = godotenv.Load()

	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	var store domain.CounterStore
	switch cfg.storeKind {
	case "memory":
		store = infra.NewMemoryCounterStore()
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis ping error: %v", err)
		}

		store = infra.NewRedisCounterStore(
			rdb,
			infra.WithKeyPrefix(cfg.visitsPrefix),
			infra.WithScanCount(cfg.scanCount),
		)
	default:
		log.Fatalf("unknown STORE %q (want redis or memory)", cfg.storeKind)
	}

	stats := application.NewStatsService(store, application.WithTTL(cfg.statsTTL))

	var remote domain.CountryLookup
	if cfg.countryAPIURL != "" {
		remote = infra.NewRESTCountriesLookup(
			infra.WithBaseURL(cfg.countryAPIURL),
			infra.WithHTTPClient(&http.Client{Timeout: cfg.countryAPITimeout}),
		)
	}
	countries := application.NewValidator(remote, infra.NewStaticCountries(),
		application.WithCacheTTL(cfg.countryCacheTTL),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.countryWarm && remote != nil {
		go func() {
			warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			n, err := countries.Warm(warmCtx)
			if err != nil {
				log.Printf("country warm error (static fallback stays available): %v", err)
				return
			}
			log.Printf("country cache warmed with %d entries", n)
		}()
	}

	h := http.Handler(counter.NewHandler(stats, countries, store).Routes())
	h = counter.Throttle(ctx, counter.ThrottleOptions{
		RPS:         cfg.rateRPS,
		Burst:       cfg.rateBurst,
		MaxInFlight: cfg.concurrencyMax,
		KeyHeader:   cfg.rateKeyHeader,
	})(h)

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("counterd listening on %s (store=%s prefix=%q)", cfg.listenAddr, cfg.storeKind, cfg.visitsPrefix)
	log.Printf("stats: ttl=%s", cfg.statsTTL)
	log.Printf("countries: api=%q timeout=%s cacheTTL=%s warm=%v", cfg.countryAPIURL, cfg.countryAPITimeout, cfg.countryCacheTTL, cfg.countryWarm)
	log.Printf("throttle: rps=%.3f burst=%d maxInFlight=%d", cfg.rateRPS, cfg.rateBurst, cfg.concurrencyMax)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

type config struct {
	listenAddr string

	storeKind     string
	redisAddr     string
	redisPassword string
	redisDB       int
	visitsPrefix  string
	scanCount     int64

	statsTTL time.Duration

	countryAPIURL     string
	countryAPITimeout time.Duration
	countryCacheTTL   time.Duration
	countryWarm       bool

	rateRPS        float64
	rateBurst      int
	rateKeyHeader  string
	concurrencyMax int

	shutdownTimeout time.Duration
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")

	cfg.storeKind = getenvDefault("STORE", "redis")
	cfg.redisAddr = getenvDefault("REDIS_ADDR", "localhost:6379")
	cfg.redisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.redisDB = getenvIntDefault("REDIS_DB", 0)
	cfg.visitsPrefix = getenvDefault("VISITS_PREFIX", "visits")
	cfg.scanCount = int64(getenvIntDefault("SCAN_COUNT", 128))

	cfg.statsTTL = getenvDurationDefault("STATS_TTL", 1*time.Second)

	cfg.countryAPIURL = getenvDefault("COUNTRY_API_URL", "https://restcountries.com/v3.1")
	cfg.countryAPITimeout = getenvDurationDefault("COUNTRY_API_TIMEOUT", 3*time.Second)
	cfg.countryCacheTTL = getenvDurationDefault("COUNTRY_CACHE_TTL", 24*time.Hour)
	cfg.countryWarm = getenvBoolDefault("COUNTRY_WARM", false)

	cfg.rateRPS = getenvFloatDefault("RATE_RPS", 0)
	cfg.rateBurst = getenvIntDefault("RATE_BURST", 20)
	cfg.rateKeyHeader = os.Getenv("RATE_KEY_HEADER")
	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 0)

	cfg.shutdownTimeout = getenvDurationDefault("SHUTDOWN_TIMEOUT", 10*time.Second)

	if cfg.storeKind == "redis" && cfg.redisAddr == "" {
		return config{}, errors.New("REDIS_ADDR is required when STORE=redis")
	}
	if cfg.statsTTL <= 0 {
		return config{}, errors.New("STATS_TTL must be > 0")
	}
	if cfg.countryCacheTTL <= 0 {
		return config{}, errors.New("COUNTRY_CACHE_TTL must be > 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
