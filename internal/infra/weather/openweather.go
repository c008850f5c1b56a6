// Package weather reads current conditions from OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra"
)

const kelvinOffset = 273.15

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retry      infra.RetryConfig
}

func NewClient(apiKey string) *Client {
	return NewClientWithURL(apiKey, "https://api.openweathermap.org/data/2.5")
}

func NewClientWithURL(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retry:      infra.DefaultRetryConfig(),
	}
}

type currentResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
}

// Current returns the conditions for city as ten speakable lines.
// An unknown city yields domain.ErrNotFound.
func (c *Client) Current(ctx context.Context, city string) ([]string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, errors.New("no city given")
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	endpoint := c.baseURL + "/weather?" + q.Encode()

	var data currentResponse
	err := infra.WithRetry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return infra.Permanent(fmt.Errorf("city %q: %w", city, domain.ErrNotFound))
		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(resp.Body)
			apiErr := fmt.Errorf("openweathermap error %d: %s", resp.StatusCode, string(body))
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return apiErr
			}
			return infra.Permanent(apiErr)
		}

		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return formatReport(city, &data), nil
}

func formatReport(city string, data *currentResponse) []string {
	var main, description string
	if len(data.Weather) > 0 {
		main = data.Weather[0].Main
		description = data.Weather[0].Description
	}

	return []string{
		fmt.Sprintf("Current weather for %s:", city),
		main,
		description,
		fmt.Sprintf("Temperature: %s degrees celsius", celsius(data.Main.Temp)),
		fmt.Sprintf("Feels like: %s degrees celsius", celsius(data.Main.FeelsLike)),
		fmt.Sprintf("Pressure: %d hectopascals", data.Main.Pressure),
		fmt.Sprintf("Humidity: %d percent", data.Main.Humidity),
		fmt.Sprintf("Visibility: %d metres", data.Visibility),
		fmt.Sprintf("Wind speed: %s meters per second", strconv.FormatFloat(data.Wind.Speed, 'f', -1, 64)),
		fmt.Sprintf("Wind direction: %s", WindDirection(data.Wind.Deg)),
	}
}

// celsius converts Kelvin and rounds to two decimals.
func celsius(kelvin float64) string {
	c := math.Round((kelvin-kelvinOffset)*100) / 100
	return strconv.FormatFloat(c, 'f', -1, 64)
}

// WindDirection names the compass sector for a bearing in degrees.
// Cardinal sectors are 20 degrees wide, intercardinal ones fill the gaps.
func WindDirection(deg float64) string {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	switch {
	case deg >= 350 || deg <= 10:
		return "North"
	case deg < 80:
		return "North-East"
	case deg <= 100:
		return "East"
	case deg < 170:
		return "South-East"
	case deg <= 190:
		return "South"
	case deg < 260:
		return "South-West"
	case deg <= 280:
		return "West"
	default:
		return "North-West"
	}
}
