package utils

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

// AppConfig carries everything outside auth and the DB path: listen address,
// the AniList account whose aggregates get blended into the dashboard, and
// the external endpoints the image pipeline talks to. Endpoints are
// overridable so tests can point them at local servers.
type AppConfig struct {
	Addr            string
	AniListUsername string
	AniListEndpoint string
	CatboxEndpoint  string
	CORSProxy       string
	CacheTTL        time.Duration
}

// LoadDotenv pulls in a .env file when one exists. Missing file is fine;
// real env vars always win.
func LoadDotenv() {
	_ = godotenv.Load()
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("MANGASHELF_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("MANGASHELF_JWT_ISSUER")
	if issuer == "" {
		issuer = "mangashelf"
	}

	dur := 24 * time.Hour
	if ttl := os.Getenv("MANGASHELF_JWT_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			dur = time.Duration(hours) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: dur,
	}
}

func LoadAppConfig() AppConfig {
	cfg := AppConfig{
		Addr:            ":8080",
		AniListUsername: "AstralArefin",
		AniListEndpoint: "https://graphql.anilist.co",
		CatboxEndpoint:  "https://catbox.moe/user/api.php",
		CORSProxy:       "https://api.allorigins.win/raw?url=",
		CacheTTL:        24 * time.Hour,
	}

	if v := os.Getenv("MANGASHELF_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("MANGASHELF_ANILIST_USER"); v != "" {
		cfg.AniListUsername = v
	}
	if v := os.Getenv("MANGASHELF_ANILIST_ENDPOINT"); v != "" {
		cfg.AniListEndpoint = v
	}
	if v := os.Getenv("MANGASHELF_CATBOX_ENDPOINT"); v != "" {
		cfg.CatboxEndpoint = v
	}
	if v := os.Getenv("MANGASHELF_CORS_PROXY"); v != "" {
		cfg.CORSProxy = v
	}
	if v := os.Getenv("MANGASHELF_CACHE_TTL_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			cfg.CacheTTL = time.Duration(hours) * time.Hour
		}
	}

	return cfg
}
