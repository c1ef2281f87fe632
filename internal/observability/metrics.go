package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sehyeong/promoworker/logger"
)

// Pipeline and query metrics, labeled by retailer or tool name.
var (
	ItemsScraped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promoworker_items_scraped_total",
		Help: "Number of promotion items scraped, per retailer.",
	}, []string{"store"})

	ScrapeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promoworker_scrape_errors_total",
		Help: "Number of failed scrape runs, per retailer.",
	}, []string{"store"})

	ScrapeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "promoworker_scrape_duration_seconds",
		Help:    "Wall time of one scrape run, per retailer.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"store"})

	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promoworker_llm_requests_total",
		Help: "Number of language model calls, per purpose.",
	}, []string{"purpose"})

	LLMFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promoworker_llm_failures_total",
		Help: "Number of failed language model calls, per purpose.",
	}, []string{"purpose"})

	ItemsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promoworker_items_published_total",
		Help: "Number of promotion items published to the stream.",
	})

	ToolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promoworker_tool_invocations_total",
		Help: "Number of tool invocations, per tool and status.",
	}, []string{"tool", "status"})
)

// Start serves the Prometheus scrape endpoint on its own port. It never
// returns unless the listener fails.
func Start(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Info("메트릭 서버 시작: :%d", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("메트릭 서버 오류: %v", err)
	}
}
