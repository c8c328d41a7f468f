package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"golfwatch/internal/httpx"
)

// NtfyTransport publishes to an ntfy topic. The topic is the audience, so
// Recipients is ignored.
type NtfyTransport struct {
	baseURL string
	topic   string
	httpCfg httpx.ClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewNtfyTransport(client *http.Client, baseURL, topic string) *NtfyTransport {
	if baseURL == "" {
		baseURL = "https://ntfy.sh"
	}
	return &NtfyTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		topic:   topic,
		httpCfg: httpx.ClientConfig{
			Client:  client,
			Backoff: httpx.DefaultBackoff(),
		},
		circuit: httpx.NewBreaker("notify-ntfy"),
	}
}

func (t *NtfyTransport) Name() string {
	return "ntfy"
}

func (t *NtfyTransport) Send(ctx context.Context, msg Message) error {
	resp, err := httpx.Do(ctx, t.httpCfg, t.circuit, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, t.baseURL+"/"+t.topic, strings.NewReader(msg.Body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Title", msg.Subject)
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}
	return nil
}
