package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr string

	// Crawler configuration
	CrawlInterval time.Duration

	// Flat-file store
	DBDir string

	// URLs for the retailer scrapers
	CUURL          string
	GS25URL        string
	GS25APIURL     string
	SevenElevenURL string
	EmartURL       string
	GSTheFreshURL  string

	// LLM tagging configuration
	OpenAIKey      string
	OpenAIModel    string
	TagChunkSize   int
	TagConcurrency int

	// Tool API
	ToolAddr    string
	MetricsPort string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "4"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "2000"))
	crawlInterval, _ := strconv.Atoi(getEnv("CRAWL_INTERVAL_SECONDS", "21600"))
	chunkSize, _ := strconv.Atoi(getEnv("TAG_CHUNK_SIZE", "100"))
	concurrency, _ := strconv.Atoi(getEnv("TAG_CONCURRENCY", "30"))

	return Config{
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "promotions"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLen,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		CrawlInterval:        time.Duration(crawlInterval) * time.Second,
		DBDir:                getEnv("DB_DIR", "db"),
		CUURL:                getEnv("CU_URL", "https://cu.bgfretail.com/event/plusAjax.do"),
		GS25URL:              getEnv("GS25_URL", "http://gs25.gsretail.com/gscvs/ko/products/event-goods"),
		GS25APIURL:           getEnv("GS25_API_URL", "http://gs25.gsretail.com/gscvs/ko/products/event-goods-search"),
		SevenElevenURL:       getEnv("SEVENELEVEN_URL", "https://www.7-eleven.co.kr/product/listMoreAjax.asp"),
		EmartURL:             getEnv("EMART_URL", "https://eapp.emart.com/webapp/main/leaflet.do"),
		GSTheFreshURL:        getEnv("GSTHEFRESH_URL", "http://gsthefresh.gsretail.com/thefresh/ko/market-info/flyer-list"),
		OpenAIKey:            getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		TagChunkSize:         chunkSize,
		TagConcurrency:       concurrency,
		ToolAddr:             getEnv("TOOL_ADDR", ":8080"),
		MetricsPort:          getEnv("METRICS_PORT", "9090"),
		Environment:          getEnv("PROMO_ENVIRONMENT", "development"),
	}
}

// Validate rejects impossible configurations before any service starts.
func (c Config) Validate() error {
	if c.CrawlInterval < time.Minute {
		return fmt.Errorf("crawl interval too short: %s", c.CrawlInterval)
	}
	if c.RedisStreamCount <= 0 {
		return fmt.Errorf("redis stream count must be positive, got %d", c.RedisStreamCount)
	}
	if c.RedisStreamMaxLength <= 0 {
		return fmt.Errorf("redis stream max length must be positive, got %d", c.RedisStreamMaxLength)
	}
	if c.TagChunkSize <= 0 {
		return fmt.Errorf("tag chunk size must be positive, got %d", c.TagChunkSize)
	}
	if c.TagConcurrency <= 0 {
		return fmt.Errorf("tag concurrency must be positive, got %d", c.TagConcurrency)
	}
	if c.DBDir == "" {
		return fmt.Errorf("db dir must not be empty")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
