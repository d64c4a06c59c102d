package recommendation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// WeatherClient queries OpenWeatherMap for current conditions.
type WeatherClient struct {
	apiKey string
	city   string
	client *http.Client
}

func NewWeatherClient(apiKey, city string, timeout time.Duration) *WeatherClient {
	return &WeatherClient{
		apiKey: apiKey,
		city:   city,
		client: &http.Client{Timeout: timeout},
	}
}

// CurrentWeather is the subset of the OpenWeatherMap payload we use.
type CurrentWeather struct {
	Main        string // e.g. "Rain", "Clear"
	Description string
	TempC       float64
}

type owmResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// Current fetches the current weather for the configured city.
func (w *WeatherClient) Current(ctx context.Context) (*CurrentWeather, error) {
	if w.apiKey == "" {
		return nil, fmt.Errorf("weather API key is not configured")
	}

	endpoint := "https://api.openweathermap.org/data/2.5/weather?q=" +
		url.QueryEscape(w.city) + "&appid=" + url.QueryEscape(w.apiKey) + "&units=metric&lang=fr"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request failed: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var payload owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weather response failed: %w", err)
	}
	if len(payload.Weather) == 0 {
		return nil, fmt.Errorf("weather API returned no conditions")
	}

	return &CurrentWeather{
		Main:        payload.Weather[0].Main,
		Description: payload.Weather[0].Description,
		TempC:       payload.Main.Temp,
	}, nil
}

// WantsCovered reports whether conditions call for a covered terrain.
func (cw *CurrentWeather) WantsCovered() bool {
	return cw.Main == "Rain" || cw.Main == "Snow" || cw.Main == "Thunderstorm"
}
