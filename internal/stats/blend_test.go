package stats

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"mangashelf/pkg/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBlendRemoteOnly(t *testing.T) {
	// remote mean 70 on the 0-100 scale is 7.0 locally
	remote := &models.AniListStats{Count: 10, ChaptersRead: 200, MeanScore: 70}
	out := Blend(remote, models.LocalStats{})

	if out.Count != 10 || out.ChaptersRead != 200 {
		t.Fatalf("totals = %d/%d, want 10/200", out.Count, out.ChaptersRead)
	}
	if !almostEqual(out.MeanScore, 7.0) {
		t.Fatalf("mean = %v, want 7.0", out.MeanScore)
	}
}

func TestBlendLocalOnly(t *testing.T) {
	local := models.LocalStats{Count: 5, ChaptersRead: 50, MeanScore: 8.0, RatedCount: 5}

	out := Blend(&models.AniListStats{}, local)
	if !almostEqual(out.MeanScore, 8.0) {
		t.Fatalf("mean with zero remote = %v, want 8.0", out.MeanScore)
	}

	out = Blend(nil, local)
	if !almostEqual(out.MeanScore, 8.0) {
		t.Fatalf("mean with nil remote = %v, want 8.0", out.MeanScore)
	}
	if out.Count != 5 || out.ChaptersRead != 50 {
		t.Fatalf("totals with nil remote = %d/%d, want 5/50", out.Count, out.ChaptersRead)
	}
}

func TestBlendWeightedMidpoint(t *testing.T) {
	remote := &models.AniListStats{Count: 10, MeanScore: 60}
	local := models.LocalStats{Count: 10, MeanScore: 8.0, RatedCount: 10}

	out := Blend(remote, local)
	if !almostEqual(out.MeanScore, 7.0) {
		t.Fatalf("mean = %v, want 7.0 (equal-weight midpoint)", out.MeanScore)
	}
	if out.Count != 20 {
		t.Fatalf("count = %d, want 20", out.Count)
	}
}

func TestBlendBothEmpty(t *testing.T) {
	out := Blend(&models.AniListStats{}, models.LocalStats{})
	if out.MeanScore != 0 {
		t.Fatalf("mean = %v, want 0", out.MeanScore)
	}
	out = Blend(nil, models.LocalStats{})
	if out.MeanScore != 0 {
		t.Fatalf("mean = %v, want 0", out.MeanScore)
	}
}

// The blended mean must always lie between the two source means (inclusive),
// and totals must be exact sums, for any combination of counts and scores.
func TestBlendProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("blended mean is bounded by the source means", prop.ForAll(
		func(remoteCount int, remoteMean100 float64, localRated int, localMean float64) bool {
			remote := &models.AniListStats{Count: remoteCount, MeanScore: remoteMean100}
			local := models.LocalStats{Count: localRated, MeanScore: localMean, RatedCount: localRated}

			out := Blend(remote, local)

			remoteMean := remoteMean100 / 10
			lo := math.Min(remoteMean, localMean)
			hi := math.Max(remoteMean, localMean)

			switch {
			case remoteCount == 0 && localRated == 0:
				return out.MeanScore == 0
			case remoteCount == 0:
				return almostEqual(out.MeanScore, localMean)
			case localRated == 0:
				return almostEqual(out.MeanScore, remoteMean)
			default:
				return out.MeanScore >= lo-1e-9 && out.MeanScore <= hi+1e-9
			}
		},
		gen.IntRange(0, 10000),
		gen.Float64Range(0, 100),
		gen.IntRange(0, 10000),
		gen.Float64Range(0, 10),
	))

	properties.Property("counts and chapters add exactly", prop.ForAll(
		func(remoteCount, remoteChapters, localCount, localChapters int) bool {
			remote := &models.AniListStats{Count: remoteCount, ChaptersRead: remoteChapters}
			local := models.LocalStats{Count: localCount, ChaptersRead: localChapters}

			out := Blend(remote, local)
			return out.Count == remoteCount+localCount &&
				out.ChaptersRead == remoteChapters+localChapters
		},
		gen.IntRange(0, 1<<20),
		gen.IntRange(0, 1<<20),
		gen.IntRange(0, 1<<20),
		gen.IntRange(0, 1<<20),
	))

	properties.TestingRun(t)
}
