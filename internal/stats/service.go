package stats

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"mangashelf/pkg/models"
)

// LocalAggregator supplies the shelf-side numbers; implemented by the
// entries repo.
type LocalAggregator interface {
	Aggregate(ctx context.Context) (models.LocalStats, error)
}

// RemoteFetcher supplies the AniList snapshot; implemented by the anilist
// client.
type RemoteFetcher interface {
	FetchUserStats(ctx context.Context, username string) (*models.AniListStats, error)
}

// Service serves blended dashboard stats with a cache-first policy: a fresh
// cached snapshot short-circuits the remote fetch entirely, a stale one is
// kept as fallback when the refetch fails, and the dashboard degrades to
// local-only numbers when neither exists. The remote side is best-effort
// throughout; only a local aggregation failure is an error.
type Service struct {
	Remote   RemoteFetcher
	Cache    *CacheRepo
	Local    LocalAggregator
	Username string
	TTL      time.Duration

	now func() time.Time // test override
}

func NewService(remote RemoteFetcher, cache *CacheRepo, local LocalAggregator, username string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		Remote:   remote,
		Cache:    cache,
		Local:    local,
		Username: username,
		TTL:      ttl,
		now:      time.Now,
	}
}

func (s *Service) Dashboard(ctx context.Context) (models.DashboardStats, error) {
	local, err := s.Local.Aggregate(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}

	remote, stale := s.remoteStats(ctx)
	out := Blend(remote, local)
	out.Stale = stale
	return out, nil
}

// remoteStats resolves the AniList snapshot: cache when fresh, refetch when
// stale or missing, stale cache when the refetch fails, nil when nothing is
// available.
func (s *Service) remoteStats(ctx context.Context) (*models.AniListStats, bool) {
	var cached *models.AniListStats

	payload, fetchedAt, ok, err := s.Cache.Get(ctx, s.Username)
	if err != nil {
		log.Printf("[stats] cache read failed: %v", err)
	} else if ok {
		var snap models.AniListStats
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			log.Printf("[stats] cache payload corrupt, discarding: %v", err)
		} else {
			if s.now().Sub(fetchedAt) < s.TTL {
				return &snap, false
			}
			cached = &snap
		}
	}

	fetched, err := s.Remote.FetchUserStats(ctx, s.Username)
	if err != nil {
		log.Printf("[stats] anilist fetch failed: %v", err)
		if cached != nil {
			return cached, true
		}
		return nil, false
	}

	if b, err := json.Marshal(fetched); err == nil {
		if err := s.Cache.Upsert(ctx, s.Username, string(b), s.now()); err != nil {
			log.Printf("[stats] cache write failed: %v", err)
		}
	}
	return fetched, false
}
