package estimator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tablebook/pkg/client"
)

type predictionRequest struct {
	PartySize int `json:"partySize"`
	DayOfWeek int `json:"dayOfWeek"`
	TimeOfDay int `json:"timeOfDay"`
}

type predictionResponse struct {
	Duration          float64 `json:"duration"`
	PredictedDuration float64 `json:"predictedDuration"`
}

// Client calls the external duration model. The endpoint URL is posted to
// directly; the API key, when set, is sent as a bearer token.
type Client struct {
	http *client.HttpClient
}

func New(url, apiKey string, timeout time.Duration) *Client {
	hc := client.NewHttpClient(url, timeout)
	if apiKey != "" {
		hc.Headers["Authorization"] = "Bearer " + apiKey
	}
	return &Client{http: hc}
}

func (c *Client) PredictDuration(ctx context.Context, partySize, dayOfWeek, hourOfDay int) (int, error) {
	resp, err := c.http.POST(ctx, "", predictionRequest{
		PartySize: partySize,
		DayOfWeek: dayOfWeek,
		TimeOfDay: hourOfDay,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to call duration model: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("duration model returned %s", resp.ToString())
	}

	var body predictionResponse
	if err := resp.DecodeJSON(&body); err != nil {
		return 0, fmt.Errorf("failed to decode duration model response: %w", err)
	}

	minutes := body.Duration
	if minutes <= 0 {
		minutes = body.PredictedDuration
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("duration model response has no duration: %s", string(resp.Body))
	}
	return int(minutes + 0.5), nil
}
