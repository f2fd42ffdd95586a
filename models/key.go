package models

import "time"

// Key VIP 키 정보
type Key struct {
	Key              string `json:"key" db:"key"`
	UserID           string `json:"user_id" db:"user_id"`
	Expiration       string `json:"expiration" db:"expiration"`
	Status           string `json:"status" db:"status"` // active, inactive
	RegistrationDate string `json:"registration_date" db:"registration_date"`
	AndroidUID       string `json:"android_uid,omitempty" db:"android_uid"` // 빈 문자열 = 미등록
}

// KeyStatus 상태 상수
const (
	KeyStatusActive   = "active"
	KeyStatusInactive = "inactive"
)

// IssueKeyRequest 키 발급 요청
type IssueKeyRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	DurationDays int    `json:"duration_days" binding:"required,min=1"`
}

// ExtendKeyRequest 키 연장 요청
type ExtendKeyRequest struct {
	Days int `json:"days" binding:"required,min=1"`
}

// RegisterUIDRequest 디바이스 UID 등록 요청
type RegisterUIDRequest struct {
	Key        string `json:"key"`
	DiscordID  string `json:"discord_id"`
	AndroidUID string `json:"android_uid"`
}

// UsageRequest 사용 로그 요청
type UsageRequest struct {
	Key    string `json:"key"`
	Action string `json:"action"`
}

// BanRequest 유저 차단 요청
type BanRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// IsExpired 만료 여부 확인 (저장된 status와는 별개로 시간만 비교)
func (k *Key) IsExpired(now time.Time) bool {
	exp, err := time.Parse(time.RFC3339, k.Expiration)
	if err != nil {
		return false
	}
	return now.After(exp)
}

// IsBound 디바이스 등록 여부 확인
func (k *Key) IsBound() bool {
	return k.AndroidUID != ""
}
