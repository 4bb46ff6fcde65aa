package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/tripsync/internal/client/models"
	"github.com/dmitrijs2005/tripsync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func TestGateway_SaveSendsBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	g := New(srv.URL, staticToken("tok-123"), logging.NewDiscardLogger())

	ok := g.Save(context.Background(), "u1", "d1", models.DomainPreferences, map[string]string{"activeTab": "currency"})
	require.True(t, ok)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "/api/sync/u1/d1/preferences", gotPath)
	assert.Equal(t, map[string]any{"activeTab": "currency"}, gotBody["data"])
}

func TestGateway_NoTokenShortCircuits(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	g := New(srv.URL, staticToken(""), logging.NewDiscardLogger())

	assert.False(t, g.Save(context.Background(), "u1", "d1", models.DomainPreferences, struct{}{}))
	assert.Nil(t, g.Get(context.Background(), "u1", "d1", models.DomainPreferences))
	assert.False(t, called)
}

func TestGateway_GetDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"devices": []map[string]any{
				{"deviceId": "d2", "data": map[string]any{"activeTab": "timezone"}, "lastUpdated": 200, "version": "2.0"},
			},
			"legacy": map[string]any{"activeTab": "old"},
		})
	}))
	defer srv.Close()

	g := New(srv.URL, staticToken("tok"), logging.NewDiscardLogger())

	env := g.Get(context.Background(), "u1", "d1", models.DomainPreferences)
	require.NotNil(t, env)
	require.Len(t, env.Devices, 1)
	assert.Equal(t, "d2", env.Devices[0].DeviceID)
	assert.Equal(t, int64(200), env.Devices[0].LastUpdated)
	assert.NotEmpty(t, env.Legacy)
}

func TestGateway_NonSuccessStatusDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := New(srv.URL, staticToken("tok"), logging.NewDiscardLogger())

	assert.False(t, g.Save(context.Background(), "u1", "d1", models.DomainMain, struct{}{}))
	assert.Nil(t, g.Get(context.Background(), "u1", "d1", models.DomainMain))
	assert.Nil(t, g.GetAll(context.Background(), "u1"))
	assert.False(t, g.DeleteAll(context.Background(), "u1"))
}

func TestGateway_GetAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sync/u1/bulk/all", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"preferences":    map[string]any{"devices": []map[string]any{{"deviceId": "d1", "data": map[string]any{}, "lastUpdated": 1}}},
				"main":           map[string]any{},
				"itinerary":      map[string]any{},
				"search":         map[string]any{},
				"timezone-cache": map[string]any{},
			},
		})
	}))
	defer srv.Close()

	g := New(srv.URL, staticToken("tok"), logging.NewDiscardLogger())

	all := g.GetAll(context.Background(), "u1")
	require.NotNil(t, all)
	require.Contains(t, all, models.DomainPreferences)
	assert.False(t, all[models.DomainPreferences].Empty())
	assert.True(t, all[models.DomainMain].Empty())
}

func TestGateway_IsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := New(srv.URL, staticToken(""), logging.NewDiscardLogger())
	assert.True(t, g.IsAvailable(context.Background()))

	srv.Close()
	assert.False(t, g.IsAvailable(context.Background()))
}
