package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDriver        string `env:"DATABASE_DRIVER,default=postgres"`
	DatabaseDSN           string `env:"DATABASE_DSN,required=true"`
	TablePrefix           string `env:"TABLE_PREFIX,default=mdl_"`
	RedisURL              string `env:"REDIS_URL,required=true"`
	WWWRoot               string `env:"WWWROOT,required=true"`
	APIPort               int    `env:"API_PORT,default=8080"`
	LogLevel              string `env:"LOG_LEVEL,default=info"`
	Timezone              string `env:"TIMEZONE,default=UTC"`
	Lang                  string `env:"REPORT_LANG,default=en"`
	AuthHeader            string `env:"AUTH_HEADER,default=X-Remote-User"`
	SiteAdmins            string `env:"SITE_ADMINS"`
	ReportViewers         string `env:"REPORT_VIEWERS"`
	ForceLoginForProfiles bool   `env:"FORCE_LOGIN_FOR_PROFILES,default=true"`
	DownloadRateLimit     int    `env:"DOWNLOAD_RATE_LIMIT,default=10"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if _, err := cfg.SiteAdminIDs(); err != nil {
		return nil, err
	}
	if _, err := cfg.ReportViewerIDs(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Location resolves the timezone used to format event timestamps.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		name = "UTC"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) SiteAdminIDs() ([]int64, error) {
	ids, err := parseIDList(c.SiteAdmins)
	if err != nil {
		return nil, fmt.Errorf("invalid SITE_ADMINS: %w", err)
	}
	return ids, nil
}

func (c *Config) ReportViewerIDs() ([]int64, error) {
	ids, err := parseIDList(c.ReportViewers)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_VIEWERS: %w", err)
	}
	return ids, nil
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("user id %q is not a positive integer", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
