package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_LoginStoresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		var in map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "alice@example.com", in["email"])
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "a1",
			"refresh_token": "r1",
			"user":          map[string]string{"id": "u1", "fullName": "Alice", "email": "alice@example.com", "role": "USER"},
		})
	}))
	defer srv.Close()

	session, err := NewSession(&MemoryStorage{})
	require.NoError(t, err)
	c := New(srv.URL+"/", session)

	u, err := c.Login(context.Background(), "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.True(t, session.IsAuthenticated())
	assert.Equal(t, "a1", session.AccessToken())
	assert.Equal(t, "r1", session.RefreshToken())
}

func TestClient_ValidationErrorDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Validation error",
			"errors": map[string]any{
				"formErrors":  []string{},
				"fieldErrors": map[string][]string{"email": {"Invalid email"}},
			},
		})
	}))
	defer srv.Close()

	session, err := NewSession(&MemoryStorage{})
	require.NoError(t, err)
	c := New(srv.URL, session)

	_, err = c.Register(context.Background(), "Al", "nope", "password123")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.NotNil(t, apiErr.Errors)
	assert.Equal(t, []string{"Invalid email"}, apiErr.Errors.FieldErrors["email"])
}

func TestClient_ListTasksQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "DONE", r.URL.Query().Get("status"))
		assert.Empty(t, r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer a1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []any{},
			"meta": map[string]any{"page": 2, "limit": 10, "total": 11, "totalPages": 2, "hasNextPage": false, "hasPrevPage": true},
		})
	}))
	defer srv.Close()

	session, err := NewSession(&MemoryStorage{})
	require.NoError(t, err)
	require.NoError(t, session.SetAuth(User{ID: "u1"}, "a1", "r1"))
	c := New(srv.URL, session)

	list, err := c.ListTasks(context.Background(), TaskQuery{Page: 2, Status: "DONE"})
	require.NoError(t, err)
	assert.Empty(t, list.Data)
	assert.True(t, list.Meta.HasPrevPage)
	assert.EqualValues(t, 11, list.Meta.Total)
}

func TestClient_LogoutClearsSessionEvenOnServerError(t *testing.T) {
	var sawRefresh string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawRefresh = r.Header.Get("Authorization")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Internal Server Error"})
	}))
	defer srv.Close()

	session, err := NewSession(&MemoryStorage{})
	require.NoError(t, err)
	require.NoError(t, session.SetAuth(User{ID: "u1"}, "a1", "r1"))
	c := New(srv.URL, session)

	err = c.Logout(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Bearer r1", sawRefresh)
	assert.False(t, session.IsAuthenticated())
}
