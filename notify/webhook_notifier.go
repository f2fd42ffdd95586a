package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vipkeyserver/models"
)

// WebhookNotifier는 이벤트를 웹훅 URL로 POST합니다. 페이로드는
// Discord 웹훅이 받는 {"content": "..."} 형식입니다.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier는 웹훅 채널을 생성합니다.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type webhookPayload struct {
	Content string `json:"content"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, event models.Event) error {
	body, err := json.Marshal(webhookPayload{Content: formatEvent(event)})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// formatEvent는 이벤트를 알림 메시지 한 줄로 만듭니다.
func formatEvent(event models.Event) string {
	switch event.Type {
	case models.EventKeyIssued:
		return fmt.Sprintf("🔑 Key `%s` issued to user %s (%s)", event.Key, event.UserID, event.Detail)
	case models.EventKeyExtended:
		return fmt.Sprintf("⏳ Key `%s` extended %s", event.Key, event.Detail)
	case models.EventKeyRevoked:
		return fmt.Sprintf("⛔ Key `%s` revoked (user %s)", event.Key, event.UserID)
	case models.EventKeyDeleted:
		return fmt.Sprintf("🗑️ Key `%s` deleted (user %s)", event.Key, event.UserID)
	case models.EventKeyExpired:
		return fmt.Sprintf("⌛ Key `%s` expired (user %s)", event.Key, event.UserID)
	case models.EventDeviceRegistered:
		return fmt.Sprintf("📱 Device registered on key `%s` by user %s", event.Key, event.UserID)
	case models.EventRoleGrantRequested:
		return fmt.Sprintf("➕ VIP role grant requested for user %s (key `%s`)", event.UserID, event.Key)
	case models.EventRoleRevokeRequested:
		return fmt.Sprintf("➖ VIP role revoke requested for user %s (key `%s`)", event.UserID, event.Key)
	case models.EventUserBanned:
		return fmt.Sprintf("🚫 User %s banned (%s)", event.UserID, event.Detail)
	case models.EventUsageLogged:
		return fmt.Sprintf("📝 %s by user %s (key `%s`, ip %s)", event.Action, event.UserID, event.Key, event.SourceIP)
	case models.EventMaintenanceEnabled:
		return fmt.Sprintf("🔧 Maintenance mode enabled %s", event.Detail)
	case models.EventMaintenanceDisabled:
		return "✅ Maintenance mode disabled"
	case models.EventMaintenanceExtended:
		return fmt.Sprintf("🔧 Maintenance window extended %s", event.Detail)
	case models.EventMaintenanceEnded:
		return "✅ Maintenance window ended"
	default:
		return fmt.Sprintf("%s (key `%s`, user %s)", event.Type, event.Key, event.UserID)
	}
}
