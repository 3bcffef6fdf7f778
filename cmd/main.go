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

	"github.com/redis/go-redis/v9"

	"github.com/Broconuts/TransSpell/internal/api"
	"github.com/Broconuts/TransSpell/internal/corpus"
	"github.com/Broconuts/TransSpell/internal/customdict"
	"github.com/Broconuts/TransSpell/internal/frequency"
	"github.com/Broconuts/TransSpell/internal/lexicon"
	"github.com/Broconuts/TransSpell/internal/oracle"
	"github.com/Broconuts/TransSpell/internal/textnorm"
	"github.com/Broconuts/TransSpell/pkg/options"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisAddr := getenv("REDIS_ADDR", "localhost:6379")
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := getEnvInt("REDIS_DB", 0)

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	defer client.Close()

	dict := customdict.New(client)

	lex, err := lexicon.LoadWordlists(getenv("WORDLISTS", "en_US.dic"), textnorm.Clean)
	if err != nil {
		log.Fatalf("init error: %v", err)
	}

	freq := frequency.Empty()
	if path := os.Getenv("CORPUS_PATH"); path != "" {
		docs, err := corpus.ReadFile(path)
		if err != nil {
			log.Printf("corpus %s: %v; proceeding without frequency list", path, err)
		} else {
			freq = frequency.Build(corpus.Sentences(docs), textnorm.Clean)
		}
	}
	log.Printf("lexicon: %d entries in %v; frequency table: %d words", lex.Size(), lex.Dialects(), freq.Len())

	stopwords, err := lexicon.LoadStopwords(os.Getenv("STOPWORDS"))
	if err != nil {
		log.Fatalf("init error: %v", err)
	}

	timeout := time.Duration(getEnvInt("ORACLE_TIMEOUT_MS", 5000)) * time.Millisecond
	remote := oracle.NewHTTP(getenv("ORACLE_URL", "http://localhost:8000/fill-mask"), timeout)
	var cache oracle.Cache
	if getenv("ORACLE_CACHE", "lru") == "redis" {
		cache = oracle.NewRedisCache(client, "transspell:oracle:", 24*time.Hour)
	} else {
		lru, err := oracle.NewLRUCache(getEnvInt("ORACLE_CACHE_SIZE", 4096))
		if err != nil {
			log.Fatalf("init error: %v", err)
		}
		cache = lru
	}
	logger := log.Default()
	o := &oracle.Cached{Oracle: remote, Cache: cache, Logger: logger}

	srv, err := api.NewServer(ctx, api.Config{
		Frequencies: freq,
		Lexicon:     lex,
		Oracle:      o,
		Dict:        dict,
		Normalize:   textnorm.Clean,
		Options: []options.Options{
			options.WithTopK(getEnvInt("TOPK", options.DefaultOptions.TopK)),
			options.WithOracleTimeout(timeout),
			options.WithConcurrency(getEnvInt("CONCURRENCY", 1)),
			options.WithStopwords(stopwords...),
		},
		Workers: getEnvInt("WORKERS", 4),
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("init error: %v", err)
	}

	addr := getenv("HTTP_ADDR", ":8080")
	httpServer := &http.Server{Addr: addr, Handler: srv.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}
