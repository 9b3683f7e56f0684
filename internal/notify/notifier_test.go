package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyapi/internal/model"
)

func TestHTTPNotifier_Send(t *testing.T) {
	var got model.PushMessage
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"status":"ok","id":"ticket-1"}}`))
	}))
	defer srv.Close()

	n := NewHTTPNotifier(srv.URL, "secret", time.Second)
	msg := model.PushMessage{Token: "ExponentPushToken[x]", Sender: "Alice", Body: "Bob created new story"}

	require.NoError(t, n.Send(context.Background(), msg))
	assert.Equal(t, msg, got)
	assert.Equal(t, "Bearer secret", auth)
}

func TestHTTPNotifier_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusBadGateway, "upstream down", "status 502: upstream down"},
		{"ticket error", http.StatusOK, `{"data":{"status":"error","message":"DeviceNotRegistered"}}`, "DeviceNotRegistered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewHTTPNotifier(srv.URL, "", time.Second).Send(context.Background(), model.PushMessage{Token: "t"})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestHTTPNotifier_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewHTTPNotifier(url, "", time.Second).Send(context.Background(), model.PushMessage{Token: "t"})
	assert.ErrorContains(t, err, "push gateway")
}

func TestLogNotifier_Send(t *testing.T) {
	assert.NoError(t, NewLogNotifier(nil).Send(context.Background(), model.PushMessage{Token: "t", Body: "hi"}))
}
