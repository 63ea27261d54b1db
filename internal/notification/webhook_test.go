package notification

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cert-rotator/internal/config"
)

func TestNotifyRotationCompleted(t *testing.T) {
	var received EventData
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		gotHeader = r.Header.Get("X-Token")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(&config.WebhookConfig{
		Enabled: true,
		URL:     server.URL,
		Headers: map[string]string{"X-Token": "secret"},
		Retries: 1,
	})
	require.NotNil(t, notifier)

	err := notifier.NotifyRotationCompleted(context.Background(), "new-1", []string{"old-1"}, []string{"old-2"})
	require.NoError(t, err)

	assert.Equal(t, string(EventRotationCompleted), received.Event)
	assert.Equal(t, "new-1", received.NewCertID)
	assert.Equal(t, []interface{}{"old-1"}, received.Data["rotated_cert_ids"])
	assert.Equal(t, []interface{}{"old-2"}, received.Data["timed_out_cert_ids"])
	assert.Equal(t, "secret", gotHeader)
}

func TestNotifyBodyTemplate(t *testing.T) {
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(&config.WebhookConfig{
		Enabled:      true,
		URL:          server.URL,
		Retries:      1,
		BodyTemplate: `{"text": "{{.Event}}: {{.Message}}"}`,
	})

	err := notifier.Notify(context.Background(), EventRebindTimeout, "new-1", "切换超时", nil)
	require.NoError(t, err)
	assert.Contains(t, string(body), string(EventRebindTimeout))
}

func TestNotifyRetryBackoffHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(&config.WebhookConfig{
		Enabled: true,
		URL:     server.URL,
		Retries: 3,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 已取消的 context 下不等待退避间隔，立即返回
	start := time.Now()
	err := notifier.Notify(ctx, EventRotationFailed, "new-1", "轮换失败", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestShouldNotifyEventFilter(t *testing.T) {
	notifier := NewWebhookNotifier(&config.WebhookConfig{
		Enabled: true,
		URL:     "http://example.com",
		Events:  []string{string(EventRotationFailed)},
	})

	assert.True(t, notifier.ShouldNotify(EventRotationFailed))
	assert.False(t, notifier.ShouldNotify(EventRotationCompleted))
}

func TestNilNotifierIsNoop(t *testing.T) {
	notifier := NewWebhookNotifier(nil)
	require.Nil(t, notifier)

	// nil 接收者上的调用是安全的空操作
	assert.False(t, notifier.IsEnabled())
	assert.NoError(t, notifier.NotifyRotationCompleted(context.Background(), "new-1", nil, nil))
}

func TestDisabledConfigYieldsNil(t *testing.T) {
	notifier := NewWebhookNotifier(&config.WebhookConfig{Enabled: false, URL: "http://example.com"})
	assert.Nil(t, notifier)
}
