package settings

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGitHubTestStore(t *testing.T, handler http.HandlerFunc) *GitHubStore {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewGitHubStore(server.Client(), GitHubConfig{
		APIBase:          server.URL,
		Repo:             "course/golf-app",
		Token:            "test-token",
		DefaultRecipient: "owner@example.com",
	})
}

func TestGitHubLoad(t *testing.T) {
	record := `{"reserved_date":"2026-03-01","emails":["a@example.com"]}`
	// The contents API wraps base64 payloads at 60 columns.
	encoded := base64.StdEncoding.EncodeToString([]byte(record))
	wrapped := encoded[:20] + "\n" + encoded[20:]

	store := newGitHubTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/repos/course/golf-app/contents/settings.json", r.URL.Path)
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]string{
			"content": wrapped,
			"sha":     "abc123",
		})
	})

	rec, token, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
	assert.Equal(t, "2026-03-01", rec.ReservedDate)
	assert.Equal(t, []string{"a@example.com"}, rec.Emails)
}

func TestGitHubLoadMissingFileReturnsDefault(t *testing.T) {
	store := newGitHubTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec, token, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Equal(t, []string{"owner@example.com"}, rec.Emails)
}

func TestGitHubSave(t *testing.T) {
	var gotBody map[string]string
	store := newGitHubTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]string{"sha": "def456"},
		})
	})

	rec := Settings{ReservedDate: "2026-03-01", Emails: []string{"a@example.com", "a@example.com"}}
	newToken, err := store.Save(context.Background(), rec, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "def456", newToken)

	assert.Equal(t, "abc123", gotBody["sha"])
	assert.Equal(t, "main", gotBody["branch"])

	raw, err := base64.StdEncoding.DecodeString(gotBody["content"])
	require.NoError(t, err)
	var stored Settings
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, []string{"a@example.com"}, stored.Emails, "record is normalized before upload")
}

func TestGitHubSaveWithoutTokenOmitsSHA(t *testing.T) {
	var gotBody map[string]string
	store := newGitHubTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]string{"sha": "first"},
		})
	})

	_, err := store.Save(context.Background(), Settings{Emails: []string{"a@example.com"}}, "")
	require.NoError(t, err)

	_, hasSHA := gotBody["sha"]
	assert.False(t, hasSHA)
}

func TestGitHubSaveStaleTokenConflicts(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusUnprocessableEntity} {
		store := newGitHubTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := store.Save(context.Background(), Settings{Emails: []string{"a@example.com"}}, "stale")
		assert.ErrorIs(t, err, ErrConflict, "status %d", status)
	}
}
