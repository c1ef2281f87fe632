package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sehyeong/promoworker/config"
	"sehyeong/promoworker/internal/api"
	"sehyeong/promoworker/internal/observability"
	"sehyeong/promoworker/internal/store"
	"sehyeong/promoworker/internal/tools"
	"sehyeong/promoworker/logger"
)

func main() {
	godotenv.Load()
	logger.Init()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("잘못된 설정: %v", err)
	}

	fs, err := store.NewFileStore(cfg.DBDir)
	if err != nil {
		logger.Fatal("파일 스토어 초기화 실패: %v", err)
	}

	if port, err := strconv.Atoi(cfg.MetricsPort); err == nil {
		go observability.Start(port)
	}

	engine := tools.NewEngine(fs)
	srv := &http.Server{
		Addr:    cfg.ToolAddr,
		Handler: api.NewRouter(engine),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("도구 서버 시작: %s", cfg.ToolAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("도구 서버 오류: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("도구 서버 종료 실패: %v", err)
	}
}
