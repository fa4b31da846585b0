package stats

import "mangashelf/pkg/models"

// Blend merges the remote AniList aggregates with the local shelf numbers.
// The two catalogs are disjoint by construction (the shelf tracks titles
// absent from AniList), so counts and chapters simply add. The mean is a
// count-weighted average, with either side short-circuiting when the other
// has no entries. AniList reports meanScore on a 0-100 scale; it is divided
// by 10 here to match the local 1-10 ratings.
func Blend(remote *models.AniListStats, local models.LocalStats) models.DashboardStats {
	out := models.DashboardStats{
		Count:        local.Count,
		ChaptersRead: local.ChaptersRead,
		MeanScore:    0,
		Remote:       remote,
		Local:        local,
	}

	localMean := local.MeanScore
	localCount := local.RatedCount

	if remote == nil {
		if localCount > 0 {
			out.MeanScore = localMean
		}
		return out
	}

	out.Count += remote.Count
	out.ChaptersRead += remote.ChaptersRead
	out.SiteURL = remote.SiteURL

	remoteMean := remote.MeanScore / 10
	remoteCount := remote.Count

	switch {
	case remoteCount == 0 && localCount == 0:
		out.MeanScore = 0
	case remoteCount == 0:
		out.MeanScore = localMean
	case localCount == 0:
		out.MeanScore = remoteMean
	default:
		out.MeanScore = (remoteMean*float64(remoteCount) + localMean*float64(localCount)) /
			float64(remoteCount+localCount)
	}
	return out
}
