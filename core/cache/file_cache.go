package cache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tristendillon/pytree/core/ast"
	"github.com/tristendillon/pytree/core/logger"
	"github.com/tristendillon/pytree/core/models"
)

// FileCache keeps extracted imports per file path. Entries are checked
// against the file on every lookup, so a stale entry is never returned.
type FileCache struct {
	entries *lru.Cache[string, *models.CacheEntry]
	config  *CacheConfig
	metrics *CacheMetrics
	mutex   sync.Mutex
}

func NewFileCache(config *CacheConfig) (*FileCache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	fc := &FileCache{
		config:  config,
		metrics: &CacheMetrics{},
	}

	entries, err := lru.New[string, *models.CacheEntry](config.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create file cache: %w", err)
	}
	fc.entries = entries

	logger.Debug("Created new file cache with config: MaxEntries=%d", config.MaxEntries)
	return fc, nil
}

func (fc *FileCache) ValidateAndGet(filePath string) (*models.ParsedFile, bool) {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	entry, exists := fc.entries.Get(filePath)
	if !exists {
		fc.metrics.Misses++
		logger.Debug("Cache miss for %s - entry not found", filePath)
		return nil, false
	}

	valid, err := entry.IsValid()
	if err != nil {
		logger.Debug("Cache validation error for %s: %v", filePath, err)
		fc.invalidateLocked(filePath)
		fc.metrics.Misses++
		return nil, false
	}

	if !valid {
		logger.Debug("Cache miss for %s - file modified", filePath)
		fc.invalidateLocked(filePath)
		fc.metrics.Misses++
		return nil, false
	}

	fc.metrics.Hits++
	logger.Debug("Cache hit for %s", filePath)
	return entry.ParsedFile, true
}

func (fc *FileCache) Set(filePath string, parsedFile *models.ParsedFile) error {
	entry, err := models.NewCacheEntry(filePath, parsedFile)
	if err != nil {
		return fmt.Errorf("failed to create cache entry: %w", err)
	}

	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	if evicted := fc.entries.Add(filePath, entry); evicted {
		fc.metrics.Evictions++
		logger.Debug("Cache full, evicted least recently used entry")
	}
	logger.Debug("Cached imports for %s", filePath)
	return nil
}

func (fc *FileCache) InvalidateFile(filePath string) {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()
	fc.invalidateLocked(filePath)
}

func (fc *FileCache) invalidateLocked(filePath string) {
	if fc.entries.Contains(filePath) {
		fc.entries.Remove(filePath)
		fc.metrics.Invalidations++
		logger.Debug("Invalidated cache entry for %s", filePath)
	}
}

func (fc *FileCache) Clear() {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	entriesCount := fc.entries.Len()
	fc.entries.Purge()
	fc.metrics.Invalidations += int64(entriesCount)
	logger.Debug("Cleared entire cache, invalidated %d entries", entriesCount)
}

func (fc *FileCache) GetMetrics() *CacheMetrics {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	metrics := *fc.metrics
	metrics.TotalEntries = fc.entries.Len()
	metrics.CalculateHitRate()
	return &metrics
}

func (fc *FileCache) LogStats() {
	if !fc.config.EnableMetrics {
		return
	}
	metrics := fc.GetMetrics()
	logger.Debug("Cache stats: Hits=%d, Misses=%d, Hit Rate=%.1f%%, Total Entries=%d, Invalidations=%d, Evictions=%d",
		metrics.Hits, metrics.Misses, metrics.HitRate, metrics.TotalEntries, metrics.Invalidations, metrics.Evictions)
}

// CachedExtractor serves imports from a FileCache and falls back to the
// wrapped extractor on a miss.
type CachedExtractor struct {
	inner ast.ImportExtractor
	cache *FileCache
}

func NewCachedExtractor(inner ast.ImportExtractor, cache *FileCache) *CachedExtractor {
	return &CachedExtractor{inner: inner, cache: cache}
}

func (ce *CachedExtractor) Extract(path string) (*models.ParsedFile, error) {
	if parsed, ok := ce.cache.ValidateAndGet(path); ok {
		return parsed, nil
	}

	parsed, err := ce.inner.Extract(path)
	if err != nil {
		return nil, err
	}

	if err := ce.cache.Set(path, parsed); err != nil {
		logger.Debug("Not caching %s: %v", path, err)
	}
	return parsed, nil
}
