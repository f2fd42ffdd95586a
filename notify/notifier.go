package notify

import (
	"context"

	"vipkeyserver/logger"
	"vipkeyserver/models"
)

// Notifier는 단일 이벤트 전달 채널입니다.
type Notifier interface {
	Notify(ctx context.Context, event models.Event) error
}

// Dispatcher는 서비스가 반환한 이벤트 목록을 등록된 채널들에
// 팬아웃합니다. 전달 실패는 기록만 하고 삼킵니다. 알림 실패가
// 키 발급이나 검증 결과를 되돌리는 일은 없습니다.
type Dispatcher struct {
	notifiers []Notifier
}

// NewDispatcher는 주어진 채널들로 디스패처를 생성합니다.
func NewDispatcher(notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers}
}

// Dispatch는 이벤트들을 모든 채널에 순서대로 전달합니다.
func (d *Dispatcher) Dispatch(ctx context.Context, events []models.Event) {
	for _, event := range events {
		for _, n := range d.notifiers {
			if err := n.Notify(ctx, event); err != nil {
				logger.WithFields(map[string]interface{}{
					"event_type": string(event.Type),
					"key":        event.Key,
					"error":      err.Error(),
				}).Warn("Event delivery failed")
			}
		}
	}
}
