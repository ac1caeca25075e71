package services

import (
	"context"
	"time"

	"github.com/apex-platform/tf-forge/internal/repository"
	"github.com/apex-platform/tf-forge/pkg/logger"
	"github.com/apex-platform/tf-forge/pkg/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// TemplateStore answers template lookups, memoizing results so repeated
// generations for the same (cloud, resource_type, module_version) triple do
// not hammer the backing store.
type TemplateStore interface {
	// Get returns the template text and whether one exists. Backing-store
	// faults are swallowed and reported as "missing"; the store never errors.
	Get(ctx context.Context, cloudID, resourceType, moduleVersion string) (string, bool)
}

type templateKey struct {
	cloudID       string
	resourceType  string
	moduleVersion string
}

type templateStore struct {
	repo repository.TemplateRepository
	// Entries live until the TTL lapses or capacity evicts them; a hit never
	// revalidates against the store, so template updates become visible only
	// after expiry. Concurrent misses for one key may both fetch.
	cache *expirable.LRU[templateKey, string]
}

// NewTemplateStore builds a store with the given cache capacity and TTL.
func NewTemplateStore(repo repository.TemplateRepository, size int, ttl time.Duration) TemplateStore {
	return &templateStore{
		repo:  repo,
		cache: expirable.NewLRU[templateKey, string](size, nil, ttl),
	}
}

var _ TemplateStore = (*templateStore)(nil)

func (s *templateStore) Get(ctx context.Context, cloudID, resourceType, moduleVersion string) (string, bool) {
	key := templateKey{cloudID, resourceType, moduleVersion}

	if content, ok := s.cache.Get(key); ok {
		metrics.TemplateCacheHits.Inc()
		return content, true
	}
	metrics.TemplateCacheMisses.Inc()

	content, err := s.repo.Find(ctx, cloudID, resourceType, moduleVersion)
	if err != nil {
		logger.L().Error("template fetch failed, treating as missing",
			zap.String("cloud_id", cloudID),
			zap.String("resource_type", resourceType),
			zap.String("module_version", moduleVersion),
			zap.Error(err),
		)
		return "", false
	}
	if content == "" {
		return "", false
	}

	s.cache.Add(key, content)
	return content, true
}
