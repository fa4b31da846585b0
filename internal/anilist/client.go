package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mangashelf/pkg/models"
)

const (
	defaultEndpoint = "https://graphql.anilist.co"
	defaultTimeout  = 10 * time.Second
)

// statsQuery pulls the manga aggregates for one user. meanScore comes back
// on AniList's 0-100 scale.
const statsQuery = `
query ($name: String) {
  User(name: $name) {
    statistics {
      manga {
        count
        chaptersRead
        meanScore
      }
    }
    siteUrl
  }
}
`

// Client handles all interactions with the AniList GraphQL API.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type statsResponse struct {
	Data struct {
		User struct {
			Statistics struct {
				Manga struct {
					Count        int     `json:"count"`
					ChaptersRead int     `json:"chaptersRead"`
					MeanScore    float64 `json:"meanScore"`
				} `json:"manga"`
			} `json:"statistics"`
			SiteURL string `json:"siteUrl"`
		} `json:"User"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func NewClient() *Client {
	return &Client{
		endpoint: defaultEndpoint,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// SetEndpoint allows overriding the GraphQL endpoint (useful for testing).
func (c *Client) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

// FetchUserStats returns the manga aggregates for the given AniList user.
// Any transport error, non-2xx status, or errors array in the envelope is a
// plain error; the caller treats them all as "remote unavailable".
func (c *Client) FetchUserStats(ctx context.Context, username string) (*models.AniListStats, error) {
	if username == "" {
		return nil, fmt.Errorf("anilist: username required")
	}

	body, err := json.Marshal(graphQLRequest{
		Query:     statsQuery,
		Variables: map[string]any{"name": username},
	})
	if err != nil {
		return nil, fmt.Errorf("anilist: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anilist: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anilist: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("anilist: status %d: %s", resp.StatusCode, string(b))
	}

	var envelope statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("anilist: decode: %w", err)
	}

	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("anilist: api error: %s", envelope.Errors[0].Message)
	}

	manga := envelope.Data.User.Statistics.Manga
	return &models.AniListStats{
		Count:        manga.Count,
		ChaptersRead: manga.ChaptersRead,
		MeanScore:    manga.MeanScore,
		SiteURL:      envelope.Data.User.SiteURL,
	}, nil
}
