package stats

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"mangashelf/pkg/database"
	"mangashelf/pkg/models"
)

type fakeRemote struct {
	stats *models.AniListStats
	err   error
	calls int
}

func (f *fakeRemote) FetchUserStats(ctx context.Context, username string) (*models.AniListStats, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := *f.stats
	return &out, nil
}

type fakeLocal struct {
	stats models.LocalStats
}

func (f *fakeLocal) Aggregate(ctx context.Context) (models.LocalStats, error) {
	return f.stats, nil
}

func newStatsDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, remote *fakeRemote, local models.LocalStats) (*Service, *time.Time) {
	t.Helper()
	svc := NewService(remote, NewCacheRepo(newStatsDB(t)), &fakeLocal{stats: local}, "tester", 24*time.Hour)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestCacheFreshnessWindow(t *testing.T) {
	remote := &fakeRemote{stats: &models.AniListStats{Count: 10, ChaptersRead: 100, MeanScore: 70}}
	svc, now := newTestService(t, remote, models.LocalStats{})
	ctx := context.Background()

	if _, err := svc.Dashboard(ctx); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if remote.calls != 1 {
		t.Fatalf("calls = %d, want 1 (cold cache)", remote.calls)
	}

	// 23h59m later the cache is still fresh
	*now = now.Add(23*time.Hour + 59*time.Minute)
	if _, err := svc.Dashboard(ctx); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if remote.calls != 1 {
		t.Fatalf("calls = %d, want 1 (cache fresh)", remote.calls)
	}

	// past 24h it refetches
	*now = now.Add(2 * time.Minute)
	if _, err := svc.Dashboard(ctx); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if remote.calls != 2 {
		t.Fatalf("calls = %d, want 2 (cache expired)", remote.calls)
	}
}

func TestStaleCacheServedWhenRemoteDown(t *testing.T) {
	remote := &fakeRemote{stats: &models.AniListStats{Count: 10, ChaptersRead: 100, MeanScore: 70}}
	svc, now := newTestService(t, remote, models.LocalStats{Count: 2, ChaptersRead: 5})
	ctx := context.Background()

	if _, err := svc.Dashboard(ctx); err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	// expire the cache, then break the remote
	*now = now.Add(25 * time.Hour)
	remote.err = fmt.Errorf("anilist down")

	out, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if !out.Stale {
		t.Fatal("expected stale flag when serving an expired snapshot")
	}
	if out.Remote == nil || out.Remote.Count != 10 {
		t.Fatalf("remote = %+v, want cached snapshot", out.Remote)
	}
	if out.Count != 12 || out.ChaptersRead != 105 {
		t.Fatalf("blend = %d/%d, want 12/105", out.Count, out.ChaptersRead)
	}
}

func TestLocalOnlyWhenRemoteNeverSucceeded(t *testing.T) {
	remote := &fakeRemote{err: fmt.Errorf("anilist down")}
	local := models.LocalStats{Count: 5, ChaptersRead: 50, MeanScore: 8, RatedCount: 3}
	svc, _ := newTestService(t, remote, local)

	out, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if out.Remote != nil {
		t.Fatalf("remote = %+v, want nil", out.Remote)
	}
	if out.Stale {
		t.Fatal("local-only result must not be flagged stale")
	}
	if out.Count != 5 || out.ChaptersRead != 50 || out.MeanScore != 8 {
		t.Fatalf("local-only blend = %+v", out)
	}
}

func TestCorruptCachePayloadRefetches(t *testing.T) {
	remote := &fakeRemote{stats: &models.AniListStats{Count: 1}}
	svc, _ := newTestService(t, remote, models.LocalStats{})
	ctx := context.Background()

	if err := svc.Cache.Upsert(ctx, "tester", "{not json", svc.now()); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	out, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if remote.calls != 1 {
		t.Fatalf("calls = %d, want 1 (corrupt cache forces refetch)", remote.calls)
	}
	if out.Remote == nil || out.Remote.Count != 1 {
		t.Fatalf("remote = %+v, want fresh snapshot", out.Remote)
	}

	// and the fresh snapshot replaced the corrupt payload
	payload, _, ok, err := svc.Cache.Get(ctx, "tester")
	if err != nil || !ok {
		t.Fatalf("cache get: ok=%v err=%v", ok, err)
	}
	var snap models.AniListStats
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		t.Fatalf("cache payload still corrupt: %v", err)
	}
}
