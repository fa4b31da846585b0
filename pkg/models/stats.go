package models

// AniListStats is the remote aggregate snapshot. MeanScore is on AniList's
// 0-100 scale as fetched; the blender rescales it before mixing with local
// 1-10 ratings.
type AniListStats struct {
	Count        int     `json:"count"`
	ChaptersRead int     `json:"chaptersRead"`
	MeanScore    float64 `json:"meanScore"`
	SiteURL      string  `json:"siteUrl,omitempty"`
}

// LocalStats are aggregates computed from the entries table.
type LocalStats struct {
	Count        int     `json:"count"`
	ChaptersRead int     `json:"chapters_read"`
	MeanScore    float64 `json:"mean_score"`
	RatedCount   int     `json:"rated_count"`
}

// DashboardStats is the blended headline view served to the dashboard.
type DashboardStats struct {
	Count        int           `json:"count"`
	ChaptersRead int           `json:"chapters_read"`
	MeanScore    float64       `json:"mean_score"`
	Remote       *AniListStats `json:"remote,omitempty"`
	Local        LocalStats    `json:"local"`
	Stale        bool          `json:"stale"`
	SiteURL      string        `json:"site_url,omitempty"`
}
