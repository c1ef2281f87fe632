package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"sehyeong/promoworker/config"
	"sehyeong/promoworker/internal/observability"
	"sehyeong/promoworker/internal/scraper"
	"sehyeong/promoworker/internal/store"
	"sehyeong/promoworker/internal/tagger"
	"sehyeong/promoworker/logger"
	"sehyeong/promoworker/services/cache"
	"sehyeong/promoworker/services/publisher"
	"sehyeong/promoworker/services/worker"
)

func main() {
	once := flag.Bool("once", false, "run one pipeline pass and exit")
	flag.Parse()

	// Load .env file if it exists
	godotenv.Load()

	logger.Init()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("잘못된 설정: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if port, err := strconv.Atoi(cfg.MetricsPort); err == nil {
		go observability.Start(port)
	}

	fs, err := store.NewFileStore(cfg.DBDir)
	if err != nil {
		logger.Fatal("파일 스토어 초기화 실패: %v", err)
	}

	cacheSvc := cache.NewMemcacheService(cfg.MemcacheAddr)

	pub := publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamCount, cfg.RedisStreamMaxLength)
	defer pub.Close()

	var enricher worker.Enricher
	var extractor scraper.Extractor
	if cfg.OpenAIKey != "" {
		client := tagger.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.TagChunkSize, cfg.TagConcurrency)
		enricher = client
		extractor = client
	} else {
		logger.Warn("OPENAI_API_KEY 미설정: 태깅과 이마트 수집을 건너뜀")
	}

	scrapers := scraper.CreateScrapers(cfg, cacheSvc, extractor)
	w := worker.NewWorker(scrapers, fs, pub, cacheSvc, enricher, cfg.CrawlInterval)

	if *once {
		w.RunOnce(ctx)
		return
	}
	w.Run(ctx)
}
