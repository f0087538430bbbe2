package store

import (
	"context"
)

// CachedStore 先查本地bson缓存，未命中时从inner下载并写入缓存
type CachedStore struct {
	inner Store
	cache *FileStore
}

// WithCache cacheDir为空时不启用缓存
func WithCache(inner Store, cacheDir string) Store {
	if cacheDir == "" {
		return inner
	}
	return &CachedStore{inner: inner, cache: NewFileStore(cacheDir)}
}

func (s *CachedStore) Load(ctx context.Context, year int) (*Snapshot, error) {
	if s.cache.Has(year) {
		snapshot, err := s.cache.Load(ctx, year)
		if err == nil {
			log.Infof("load snapshot of year %d from cache %s", year, s.cache.PathOf(year))
			return snapshot, nil
		}
		log.Warnf("ignore broken cache %s: %v", s.cache.PathOf(year), err)
	}
	snapshot, err := s.inner.Load(ctx, year)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Save(ctx, snapshot); err != nil {
		log.Warnf("failed to write cache %s: %v", s.cache.PathOf(year), err)
	}
	return snapshot, nil
}
