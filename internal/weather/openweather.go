package weather

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DhavalSuthar-24/padel/pkg/apperror"
	"github.com/coocood/freecache"
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// Forecast entries are three hours apart; an instant further than one
	// step from every entry is outside the window.
	forecastStep = 3 * time.Hour
	rainPop      = 0.5
)

var rainyConditions = map[string]bool{
	"Rain":         true,
	"Drizzle":      true,
	"Thunderstorm": true,
}

type forecastResponse struct {
	List []forecastEntry `json:"list"`
}

type forecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Pop float64 `json:"pop"`
}

type Options struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
	// CacheSize is the freecache arena size in bytes.
	CacheSize int
}

// OpenWeatherClient queries the OpenWeatherMap 5 day / 3 hour forecast.
type OpenWeatherClient struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	cache    *freecache.Cache
	cacheTTL int
	logger   zerolog.Logger
}

func NewOpenWeatherClient(opts Options, logger zerolog.Logger) *OpenWeatherClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024 * 1024
	}
	return &OpenWeatherClient{
		apiKey:   opts.APIKey,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     &http.Client{Timeout: opts.Timeout},
		cache:    freecache.NewCache(opts.CacheSize),
		cacheTTL: int(opts.CacheTTL / time.Second),
		logger:   logger.With().Str("component", "weather").Logger(),
	}
}

func cacheKey(city string, at time.Time) []byte {
	return []byte(fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSpace(city)), at.Unix()))
}

func (c *OpenWeatherClient) Lookup(ctx context.Context, city string, at time.Time) (Report, error) {
	key := cacheKey(city, at)
	if c.cacheTTL > 0 {
		if raw, err := c.cache.Get(key); err == nil {
			var cached Report
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	forecast, err := c.fetch(ctx, city)
	if err != nil {
		return Report{}, apperror.Wrap(apperror.KindUpstream, err, "weather lookup failed")
	}
	report := pick(forecast.List, at)

	if c.cacheTTL > 0 {
		if raw, err := json.Marshal(report); err == nil {
			if err := c.cache.Set(key, raw, c.cacheTTL); err != nil {
				c.logger.Warn().Err(err).Str("city", city).Msg("failed to cache forecast")
			}
		}
	}
	return report, nil
}

func (c *OpenWeatherClient) fetch(ctx context.Context, city string) (*forecastResponse, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "failed to build forecast request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "forecast request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("forecast API answered %d for %q", resp.StatusCode, city)
	}

	var out forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, eris.Wrap(err, "failed to decode forecast")
	}
	c.logger.Debug().Str("city", city).Int("entries", len(out.List)).Msg("forecast fetched")
	return &out, nil
}

// pick returns the report of the entry closest to at.
func pick(entries []forecastEntry, at time.Time) Report {
	best := -1
	bestGap := time.Duration(math.MaxInt64)
	for i, e := range entries {
		gap := time.Unix(e.Dt, 0).Sub(at)
		if gap < 0 {
			gap = -gap
		}
		if gap < bestGap {
			best, bestGap = i, gap
		}
	}
	if best < 0 || bestGap > forecastStep {
		return Report{Weather: Unavailable}
	}

	e := entries[best]
	report := Report{RainWarning: e.Pop >= rainPop}
	desc := ""
	if len(e.Weather) > 0 {
		desc = e.Weather[0].Description
		if rainyConditions[e.Weather[0].Main] {
			report.RainWarning = true
		}
	}
	report.Weather = fmt.Sprintf("%s, %.0f°C", desc, e.Main.Temp)
	return report
}
