package settings

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"golfwatch/internal/httpx"
)

// GitHubConfig locates the settings file inside a repository. Repo is
// "owner/name"; Path and Branch default to settings.json on main.
type GitHubConfig struct {
	APIBase          string
	Repo             string
	Path             string
	Branch           string
	Token            string
	DefaultRecipient string
}

// GitHubStore persists the reservation record as a JSON file through the
// GitHub contents API. The blob sha is the optimistic-concurrency token: a
// PUT carrying a stale sha is rejected upstream and surfaces as ErrConflict.
type GitHubStore struct {
	cfg     GitHubConfig
	httpCfg httpx.ClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewGitHubStore(client *http.Client, cfg GitHubConfig) *GitHubStore {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.github.com"
	}
	if cfg.Path == "" {
		cfg.Path = "settings.json"
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	return &GitHubStore{
		cfg: cfg,
		httpCfg: httpx.ClientConfig{
			Client:  client,
			Backoff: httpx.DefaultBackoff(),
		},
		circuit: httpx.NewBreaker("settings-github"),
	}
}

func (g *GitHubStore) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/contents/%s", g.cfg.APIBase, g.cfg.Repo, g.cfg.Path)
}

func (g *GitHubStore) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+g.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
}

// Load fetches the current record and its blob sha. A missing file is not an
// error: the default record is returned with an empty token and the first
// save creates the file.
func (g *GitHubStore) Load(ctx context.Context) (Settings, string, error) {
	resp, err := httpx.Do(ctx, g.httpCfg, g.circuit, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, g.contentsURL()+"?ref="+g.cfg.Branch, nil)
		if err != nil {
			return nil, err
		}
		g.authorize(req)
		return req, nil
	})
	if err != nil {
		return Settings{}, "", fmt.Errorf("load settings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Default(g.cfg.DefaultRecipient).Normalize(), "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return Settings{}, "", fmt.Errorf("load settings: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Settings{}, "", fmt.Errorf("load settings: decode response: %w", err)
	}

	// The contents API wraps base64 at 60 columns.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
	if err != nil {
		return Settings{}, "", fmt.Errorf("load settings: decode content: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return Settings{}, "", fmt.Errorf("load settings: parse record: %w", err)
	}

	return s.Normalize(), payload.SHA, nil
}

// Save writes the record back. An empty token creates the file; a stale
// token is rejected by the API (409 on ref races, 422 on sha mismatch) and
// maps to ErrConflict. The new blob sha is returned on success.
func (g *GitHubStore) Save(ctx context.Context, s Settings, token string) (string, error) {
	record, err := json.MarshalIndent(s.Normalize(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("save settings: encode record: %w", err)
	}

	payload := map[string]string{
		"message": "update reservation settings",
		"content": base64.StdEncoding.EncodeToString(record),
		"branch":  g.cfg.Branch,
	}
	if token != "" {
		payload["sha"] = token
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("save settings: encode request: %w", err)
	}

	resp, err := httpx.Do(ctx, g.httpCfg, g.circuit, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPut, g.contentsURL(), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		g.authorize(req)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("save settings: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return "", ErrConflict
	default:
		return "", fmt.Errorf("save settings: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Content struct {
			SHA string `json:"sha"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("save settings: decode response: %w", err)
	}

	return result.Content.SHA, nil
}
