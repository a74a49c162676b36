package identityservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/identity", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Resolve(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"userId":"u-42","role":"attorney"}`)
	c := NewClient(srv.URL+"/", time.Second, nopLogger{})

	actor, err := c.Resolve(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{UserID: "u-42", Role: domain.RoleAttorney}, actor)
}

func TestClient_Resolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		token   string
		wantErr error
	}{
		{name: "bad token", status: http.StatusOK, token: "bad", wantErr: ErrUnauthorized},
		{name: "unsupported role", status: http.StatusOK, body: `{"userId":"u","role":"admin"}`, token: "good-token", wantErr: ErrUnauthorized},
		{name: "empty user", status: http.StatusOK, body: `{"role":"client"}`, token: "good-token", wantErr: ErrInvalidResponse},
		{name: "garbage", status: http.StatusOK, body: `not json`, token: "good-token", wantErr: ErrInvalidResponse},
		{name: "unavailable", status: http.StatusServiceUnavailable, token: "good-token", wantErr: ErrUnavailable},
		{name: "teapot", status: http.StatusTeapot, token: "good-token", wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.status, tt.body)
			c := NewClient(srv.URL, time.Second, nopLogger{})

			_, err := c.Resolve(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_Resolve_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, 200*time.Millisecond, nopLogger{}).Resolve(context.Background(), "good-token")
	assert.ErrorIs(t, err, ErrUnavailable)
}
