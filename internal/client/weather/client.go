package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dugout/internal/models"
)

const (
	geocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	forecastURL = "https://api.open-meteo.com/v1/forecast"
)

type geocodeResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Name      string  `json:"name"`
		Admin1    string  `json:"admin1"`
	} `json:"results"`
}

type forecastResponse struct {
	Hourly struct {
		Time                     []string  `json:"time"`
		Temperature              []float64 `json:"temperature_2m"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		WeatherCode              []int     `json:"weather_code"`
	} `json:"hourly"`
	HourlyUnits struct {
		Temperature string `json:"temperature_2m"`
	} `json:"hourly_units"`
}

// Client answers "what will the weather be at game time" against the
// Open-Meteo public API. A nil *Client disables the feature.
type Client struct {
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{httpClient: httpClient}
}

func (c *Client) get(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API returned %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}

// Forecast returns a one-line summary for the event's location and hour.
// TBD times fall back to noon for display only; this value never feeds
// scheduling decisions.
func (c *Client) Forecast(ctx context.Context, ev models.Event) (string, error) {
	if c == nil {
		return "", nil
	}
	lat, lon, name, err := c.geocode(ctx, ev.Location)
	if err != nil {
		return "", err
	}

	hour := 12
	if ev.Time.Known {
		hour = ev.Time.Hour
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", lat))
	q.Set("longitude", fmt.Sprintf("%f", lon))
	q.Set("hourly", "temperature_2m,precipitation_probability,weather_code")
	q.Set("temperature_unit", "fahrenheit")
	q.Set("start_date", ev.Date.Format("2006-01-02"))
	q.Set("end_date", ev.Date.Format("2006-01-02"))
	q.Set("timezone", "auto")

	var fr forecastResponse
	if err := c.get(ctx, forecastURL+"?"+q.Encode(), &fr); err != nil {
		return "", err
	}
	if hour >= len(fr.Hourly.Time) ||
		hour >= len(fr.Hourly.Temperature) ||
		hour >= len(fr.Hourly.PrecipitationProbability) ||
		hour >= len(fr.Hourly.WeatherCode) {
		return "", fmt.Errorf("no forecast data for hour %d", hour)
	}

	return fmt.Sprintf("🌡️ Forecast for %s: %.1f%s - %s, 💧 %.0f%% precip",
		name,
		fr.Hourly.Temperature[hour],
		fr.HourlyUnits.Temperature,
		conditionText(fr.Hourly.WeatherCode[hour]),
		fr.Hourly.PrecipitationProbability[hour],
	), nil
}

// geocode tries increasingly loose readings of the roster's free-text
// location: parenthesized city, city before a comma, then the cleaned
// whole string.
func (c *Client) geocode(ctx context.Context, location string) (float64, float64, string, error) {
	var candidates []string

	if open := strings.Index(location, "("); open >= 0 {
		if closed := strings.Index(location, ")"); closed > open {
			if inner := strings.TrimSpace(location[open+1 : closed]); inner != "" {
				candidates = append(candidates, inner)
			}
		}
	}
	if comma := strings.LastIndex(location, ","); comma > 0 {
		parts := strings.Fields(location[:comma])
		for n := 1; n <= 3 && n <= len(parts); n++ {
			candidates = append(candidates, strings.Join(parts[len(parts)-n:], " "))
		}
	}
	clean := location
	if open := strings.Index(clean, "("); open >= 0 {
		clean = clean[:open]
	}
	clean = strings.TrimSpace(clean)
	if clean != "" && !strings.EqualFold(clean, "tbd") {
		candidates = append(candidates, clean)
	}

	for _, cand := range candidates {
		q := url.Values{}
		q.Set("name", cand)
		q.Set("count", "1")
		q.Set("language", "en")
		q.Set("format", "json")
		var gr geocodeResponse
		if err := c.get(ctx, geocodeURL+"?"+q.Encode(), &gr); err != nil {
			continue
		}
		if len(gr.Results) == 0 {
			continue
		}
		r := gr.Results[0]
		name := r.Name
		if r.Admin1 != "" {
			name = fmt.Sprintf("%s, %s", r.Name, r.Admin1)
		}
		return r.Latitude, r.Longitude, name, nil
	}
	return 0, 0, "", fmt.Errorf("location not found: %s", location)
}

func conditionText(code int) string {
	switch {
	case code == 0:
		return "Clear sky"
	case code >= 1 && code <= 3:
		return "Partly cloudy"
	case code == 45 || code == 48:
		return "Foggy"
	case code >= 51 && code <= 57:
		return "Drizzle"
	case code >= 61 && code <= 67:
		return "Rain"
	case code >= 71 && code <= 77:
		return "Snow"
	case code >= 80 && code <= 82:
		return "Rain showers"
	case code == 85 || code == 86:
		return "Snow showers"
	case code >= 95:
		return "Thunderstorm"
	default:
		return "Unknown conditions"
	}
}
