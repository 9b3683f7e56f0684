package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"storyapi/internal/logging"
	"storyapi/internal/model"
)

// HTTPNotifier posts push messages as JSON to a push gateway
// (Expo-compatible: {"to","title","body"}).
type HTTPNotifier struct {
	endpoint    string
	accessToken string
	client      *http.Client
}

// NewHTTPNotifier builds a notifier with a traced HTTP client.
func NewHTTPNotifier(endpoint, accessToken string, timeout time.Duration) *HTTPNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPNotifier{
		endpoint:    endpoint,
		accessToken: accessToken,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// gatewayResponse is the subset of the gateway reply we inspect. Expo answers
// 200 with a per-ticket status, so a 2xx is not enough to call it delivered.
type gatewayResponse struct {
	Data struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
}

func (n *HTTPNotifier) Send(ctx context.Context, msg model.PushMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode push message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if n.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+n.accessToken)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("push gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway: status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}
	var gr gatewayResponse
	if json.Unmarshal(raw, &gr) == nil && gr.Data.Status == "error" {
		return fmt.Errorf("push gateway rejected message: %s", gr.Data.Message)
	}
	return nil
}

// LogNotifier writes push messages to the log instead of delivering them.
// It is used when no push gateway is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(l *zap.Logger) *LogNotifier {
	return &LogNotifier{log: logging.OrNop(l).Named("push")}
}

func (n *LogNotifier) Send(_ context.Context, msg model.PushMessage) error {
	n.log.Info("push_message",
		zap.String("sender", msg.Sender),
		zap.String("body", msg.Body),
	)
	return nil
}
