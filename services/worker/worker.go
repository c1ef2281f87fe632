package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"sehyeong/promoworker/internal/model"
	"sehyeong/promoworker/internal/observability"
	"sehyeong/promoworker/internal/scraper"
	"sehyeong/promoworker/internal/store"
	"sehyeong/promoworker/logger"
	"sehyeong/promoworker/services/cache"
	"sehyeong/promoworker/services/publisher"
)

// publishedTTL is how long a published promotion stays deduplicated. Runs
// within a day republish nothing; the next day's run refreshes the stream.
const publishedTTL = 24 * time.Hour

// Enricher runs the tagging pass after a scrape. Implemented by the tagger
// client; mocked in tests.
type Enricher interface {
	GenerateTagCandidates(ctx context.Context, names []string) (model.TagCandidates, error)
	EnrichStore(ctx context.Context, fs *store.FileStore, storeID string, candidates model.TagCandidates) error
}

// Worker runs the scrape, persist, publish, enrich pipeline on an interval.
type Worker struct {
	scrapers []scraper.Scraper
	fs       *store.FileStore
	pub      publisher.Publisher
	cacheSvc cache.CacheService
	enricher Enricher
	interval time.Duration
	log      *logger.Logger
}

// NewWorker creates a pipeline worker. enricher may be nil, which skips the
// tagging pass.
func NewWorker(scrapers []scraper.Scraper, fs *store.FileStore, pub publisher.Publisher, cacheSvc cache.CacheService, enricher Enricher, interval time.Duration) *Worker {
	return &Worker{
		scrapers: scrapers,
		fs:       fs,
		pub:      pub,
		cacheSvc: cacheSvc,
		enricher: enricher,
		interval: interval,
		log:      logger.ForWorker(),
	}
}

// Run executes the pipeline immediately and then on every interval tick
// until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("워커 종료")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce runs one full pipeline pass: scrape all retailers in parallel,
// persist and publish, then enrich.
func (w *Worker) RunOnce(ctx context.Context) {
	runID := uuid.New().String()
	log := w.log.WithField("run_id", runID)
	started := time.Now()
	log.Info().Int("scrapers", len(w.scrapers)).Msg("수집 시작")

	var wg sync.WaitGroup
	for _, s := range w.scrapers {
		wg.Add(1)
		go func(s scraper.Scraper) {
			defer wg.Done()
			w.scrapeOne(ctx, s, runID)
		}(s)
	}
	wg.Wait()

	if w.pub != nil {
		if err := w.pub.TrimStreams(); err != nil {
			log.Warn().Err(err).Msg("스트림 정리 실패")
		}
	}

	w.enrich(ctx, log)

	log.Info().Dur("elapsed", time.Since(started)).Msg("수집 완료")
}

func (w *Worker) scrapeOne(ctx context.Context, s scraper.Scraper, runID string) {
	storeID := s.StoreID()
	log := logger.ForScraper(storeID).WithField("run_id", runID)
	started := time.Now()

	items, err := s.FetchItems(ctx)
	observability.ScrapeDuration.WithLabelValues(storeID).Observe(time.Since(started).Seconds())
	if err != nil {
		observability.ScrapeErrors.WithLabelValues(storeID).Inc()
		// Never persist a failed scrape; the previous file stays intact.
		log.Error().Err(err).Int("partial", len(items)).Msg("수집 실패")
		return
	}

	observability.ItemsScraped.WithLabelValues(storeID).Add(float64(len(items)))
	log.Info().Int("items", len(items)).Dur("elapsed", time.Since(started)).Msg("수집 결과")

	if len(items) == 0 {
		return
	}

	if err := w.fs.SaveStore(storeID, items); err != nil {
		log.Error().Err(err).Msg("저장 실패")
		return
	}

	w.publishNew(storeID, items, log)
}

// publishNew pushes items onto the stream, skipping anything published
// within the dedup window.
func (w *Worker) publishNew(storeID string, items []model.PromotionItem, log *logger.Logger) {
	if w.pub == nil {
		return
	}

	published := 0
	for _, item := range items {
		key := "published:" + storeID + ":" + item.ProductName + ":" + item.DiscountCondition
		if w.cacheSvc != nil {
			if _, err := w.cacheSvc.Get(key); err == nil {
				continue
			}
		}

		payload, err := json.Marshal(item)
		if err != nil {
			continue
		}
		if err := w.pub.Publish(storeID, payload); err != nil {
			log.Warn().Err(err).Msg("발행 실패")
			continue
		}
		published++
		observability.ItemsPublished.Inc()

		if w.cacheSvc != nil {
			w.cacheSvc.Set(key, []byte("1"), publishedTTL)
		}
	}

	if published > 0 {
		log.Info().Int("published", published).Msg("신규 행사 발행")
	}
}

// enrich makes sure a tag vocabulary exists and then tags every retailer's
// fresh items.
func (w *Worker) enrich(ctx context.Context, log *logger.Logger) {
	if w.enricher == nil {
		return
	}

	candidates, err := w.fs.LoadTagCandidates()
	if err != nil {
		log.Warn().Err(err).Msg("태그 후보 읽기 실패")
		return
	}

	if candidates.IsEmpty() {
		names := w.collectNames()
		if len(names) == 0 {
			return
		}
		candidates, err = w.enricher.GenerateTagCandidates(ctx, names)
		if err != nil {
			log.Error().Err(err).Msg("태그 후보 생성 실패")
			return
		}
		if err := w.fs.SaveTagCandidates(candidates); err != nil {
			log.Error().Err(err).Msg("태그 후보 저장 실패")
			return
		}
		log.Info().
			Int("category", len(candidates.Category)).
			Int("taste", len(candidates.Taste)).
			Int("situation", len(candidates.Situation)).
			Msg("태그 후보 생성 완료")
	}

	for _, s := range w.scrapers {
		storeID := s.StoreID()
		if err := w.enricher.EnrichStore(ctx, w.fs, storeID, candidates); err != nil {
			log.Error().Err(err).Str("store", storeID).Msg("태깅 실패")
		}
	}
}

// collectNames gathers every product name across retailer files for
// vocabulary generation.
func (w *Worker) collectNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, s := range w.scrapers {
		db, err := w.fs.LoadStore(s.StoreID())
		if err != nil {
			continue
		}
		for _, item := range db.Items {
			if seen[item.ProductName] {
				continue
			}
			seen[item.ProductName] = true
			names = append(names, item.ProductName)
		}
	}
	return names
}
