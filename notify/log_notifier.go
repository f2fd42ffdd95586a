package notify

import (
	"context"

	"vipkeyserver/logger"
	"vipkeyserver/models"
)

// LogNotifier는 이벤트를 구조화 로그로 기록합니다. 웹훅이 설정되지
// 않은 배포에서도 항상 활성화되는 기본 채널입니다.
type LogNotifier struct{}

// NewLogNotifier는 로그 채널을 생성합니다.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(_ context.Context, event models.Event) error {
	fields := map[string]interface{}{
		"event_type": string(event.Type),
	}
	if event.Key != "" {
		fields["key"] = event.Key
	}
	if event.UserID != "" {
		fields["user_id"] = event.UserID
	}
	if event.Action != "" {
		fields["action"] = event.Action
	}
	if event.SourceIP != "" {
		fields["source_ip"] = event.SourceIP
	}
	if event.Detail != "" {
		fields["detail"] = event.Detail
	}
	logger.WithFields(fields).Info("Event")
	return nil
}
