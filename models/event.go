package models

// EventType 알림 이벤트 종류
type EventType string

const (
	EventKeyIssued           EventType = "key_issued"
	EventKeyExtended         EventType = "key_extended"
	EventKeyRevoked          EventType = "key_revoked"
	EventKeyDeleted          EventType = "key_deleted"
	EventKeyExpired          EventType = "key_expired"
	EventDeviceRegistered    EventType = "device_registered"
	EventRoleGrantRequested  EventType = "role_grant_requested"
	EventRoleRevokeRequested EventType = "role_revoke_requested"
	EventUserBanned          EventType = "user_banned"
	EventUsageLogged         EventType = "usage_logged"
	EventMaintenanceEnabled  EventType = "maintenance_enabled"
	EventMaintenanceDisabled EventType = "maintenance_disabled"
	EventMaintenanceExtended EventType = "maintenance_extended"
	EventMaintenanceEnded    EventType = "maintenance_ended"
)

// Event 스토어 커밋 후 디스패처로 전달되는 알림 이벤트.
// 전달 실패는 호출자에게 전파되지 않는다 (fire-and-forget).
type Event struct {
	Type       EventType `json:"type"`
	Key        string    `json:"key,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Action     string    `json:"action,omitempty"`
	SourceIP   string    `json:"source_ip,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt string    `json:"occurred_at"`
}
