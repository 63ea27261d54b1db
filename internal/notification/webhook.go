package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"text/template"
	"time"

	"cert-rotator/internal/config"
)

// EventType 事件类型
type EventType string

const (
	EventRotationCompleted EventType = "rotation_completed" // 证书轮换完成
	EventRotationFailed    EventType = "rotation_failed"    // 证书轮换失败
	EventRebindTimeout     EventType = "rebind_timeout"     // 证书绑定切换超时
)

// EventData 事件数据
type EventData struct {
	Event     string                 `json:"event"`          // 事件类型
	NewCertID string                 `json:"new_cert_id"`    // 新证书ID
	Timestamp string                 `json:"timestamp"`      // 时间戳
	Message   string                 `json:"message"`        // 消息
	Data      map[string]interface{} `json:"data,omitempty"` // 额外数据
}

// WebhookNotifier Webhook 通知器
type WebhookNotifier struct {
	config *config.WebhookConfig
	client *http.Client
}

// NewWebhookNotifier 创建 Webhook 通知器
func NewWebhookNotifier(cfg *config.WebhookConfig) *WebhookNotifier {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	timeout := 30 * time.Second
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &WebhookNotifier{
		config: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ShouldNotify 检查是否应该发送该事件的通知
func (w *WebhookNotifier) ShouldNotify(eventType EventType) bool {
	if w == nil || w.config == nil || !w.config.Enabled {
		return false
	}

	// 未配置事件列表则发送所有事件
	if len(w.config.Events) == 0 {
		return true
	}

	eventStr := string(eventType)
	for _, e := range w.config.Events {
		if e == eventStr {
			return true
		}
	}

	return false
}

// Notify 发送通知
func (w *WebhookNotifier) Notify(ctx context.Context, eventType EventType, newCertID, message string, data map[string]interface{}) error {
	if !w.ShouldNotify(eventType) {
		return nil
	}

	eventData := EventData{
		Event:     string(eventType),
		NewCertID: newCertID,
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   message,
		Data:      data,
	}

	var body []byte
	var err error

	// 配置了自定义模板则用模板生成请求体，渲染失败回退默认JSON
	if w.config.BodyTemplate != "" {
		body, err = w.renderTemplate(w.config.BodyTemplate, eventData)
		if err != nil {
			log.Printf("渲染 Webhook 请求体模板失败: %v", err)
			body, err = json.Marshal(eventData)
			if err != nil {
				return fmt.Errorf("序列化事件数据失败: %w", err)
			}
		}
	} else {
		body, err = json.Marshal(eventData)
		if err != nil {
			return fmt.Errorf("序列化事件数据失败: %w", err)
		}
	}

	retries := w.config.Retries
	if retries <= 0 {
		retries = 3
	}

	var lastErr error
	for i := 0; i < retries; i++ {
		if i > 0 {
			// 指数退避：1s, 2s, 4s
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			log.Printf("Webhook 通知失败，%v 后重试 (第 %d/%d 次)...", backoff, i+1, retries)
			select {
			case <-ctx.Done():
				log.Printf("Webhook 通知已取消: %v", ctx.Err())
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", w.config.URL, bytes.NewBuffer(body))
		if err != nil {
			lastErr = fmt.Errorf("创建请求失败: %w", err)
			continue
		}

		req.Header.Set("Content-Type", "application/json")
		for key, value := range w.config.Headers {
			req.Header.Set(key, value)
		}

		resp, err := w.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("发送请求失败: %w", err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			log.Printf("Webhook 通知发送成功: %s (事件: %s)", w.config.URL, eventType)
			return nil
		}

		lastErr = fmt.Errorf("Webhook 返回错误状态码: %d", resp.StatusCode)
	}

	log.Printf("Webhook 通知发送失败 (已重试 %d 次): %v", retries, lastErr)
	return lastErr
}

// renderTemplate 渲染请求体模板
func (w *WebhookNotifier) renderTemplate(tmplStr string, data EventData) ([]byte, error) {
	tmplData := map[string]interface{}{
		"Event":     data.Event,
		"NewCertID": data.NewCertID,
		"Timestamp": data.Timestamp,
		"Message":   data.Message,
		"Data":      data.Data,
	}

	funcMap := template.FuncMap{
		"toJson": func(v interface{}) string {
			b, err := json.Marshal(v)
			if err != nil {
				return "null"
			}
			return string(b)
		},
	}

	tmpl, err := template.New("webhook").Funcs(funcMap).Parse(tmplStr)
	if err != nil {
		return nil, fmt.Errorf("解析模板失败: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, tmplData); err != nil {
		return nil, fmt.Errorf("渲染模板失败: %w", err)
	}

	return buf.Bytes(), nil
}

// NotifyRotationCompleted 通知证书轮换完成
func (w *WebhookNotifier) NotifyRotationCompleted(ctx context.Context, newCertID string, rotatedCertIDs, timedOutCertIDs []string) error {
	message := fmt.Sprintf("证书轮换完成，新证书: %s", newCertID)
	data := map[string]interface{}{
		"rotated_cert_ids": rotatedCertIDs,
	}
	if len(timedOutCertIDs) > 0 {
		data["timed_out_cert_ids"] = timedOutCertIDs
	}
	return w.Notify(ctx, EventRotationCompleted, newCertID, message, data)
}

// NotifyRotationFailed 通知证书轮换失败
func (w *WebhookNotifier) NotifyRotationFailed(ctx context.Context, newCertID, phase, reason string) error {
	message := fmt.Sprintf("证书轮换失败 (阶段: %s): %s", phase, reason)
	data := map[string]interface{}{
		"phase":  phase,
		"reason": reason,
	}
	return w.Notify(ctx, EventRotationFailed, newCertID, message, data)
}

// NotifyRebindTimeout 通知证书绑定切换超时
func (w *WebhookNotifier) NotifyRebindTimeout(ctx context.Context, oldCertID, newCertID string) error {
	message := fmt.Sprintf("证书绑定切换超时: %s -> %s", oldCertID, newCertID)
	data := map[string]interface{}{
		"old_cert_id": oldCertID,
	}
	return w.Notify(ctx, EventRebindTimeout, newCertID, message, data)
}

// IsEnabled 检查是否启用
func (w *WebhookNotifier) IsEnabled() bool {
	return w != nil && w.config != nil && w.config.Enabled
}
