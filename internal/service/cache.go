// ChartCache — LRU-кэш распределений значений с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Divyamm05/chatbot/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ls_chart_cache_hits_total",
		Help: "Общее количество попаданий в кэш распределений.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ls_chart_cache_misses_total",
		Help: "Общее количество промахов кэша распределений.",
	})
)

// ChartCache — in-memory кэш распределений, собственный у каждого экземпляра.
// Результаты поиска не кэшируются: поиск всегда читает хранилище.
// nil *ChartCache допустим и отключает кэширование.
type ChartCache struct {
	cache *expirable.LRU[string, *model.Distribution]
}

// NewChartCache создаёт кэш. maxSize — максимальное количество записей,
// ttl — время жизни записи после добавления.
func NewChartCache(maxSize int, ttl time.Duration) *ChartCache {
	return &ChartCache{cache: expirable.NewLRU[string, *model.Distribution](maxSize, nil, ttl)}
}

// distributionKey — ключ кэша для таблицы, столбца и диапазона строк.
func distributionKey(table, column string, start, end int) string {
	return fmt.Sprintf("%q/%q/%d-%d", table, column, start, end)
}

// Get возвращает распределение из кэша. Обновляет метрики hit/miss.
func (c *ChartCache) Get(key string) (*model.Distribution, bool) {
	if c == nil {
		return nil, false
	}
	val, ok := c.cache.Get(key)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись.
func (c *ChartCache) Set(key string, d *model.Distribution) {
	if c == nil {
		return
	}
	c.cache.Add(key, d)
}

// Purge очищает кэш.
func (c *ChartCache) Purge() {
	if c == nil {
		return
	}
	c.cache.Purge()
}

// Len возвращает количество записей.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}
