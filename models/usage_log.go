package models

// UsageLog 클라이언트 사용 로그
type UsageLog struct {
	ID        int64  `json:"id" db:"id"`
	Key       string `json:"key" db:"key"`
	UserID    string `json:"user_id" db:"user_id"` // 키 미등록 시 "Unknown"
	Action    string `json:"action" db:"action"`
	SourceIP  string `json:"source_ip" db:"source_ip"`
	CreatedAt string `json:"created_at" db:"created_at"`
}

// 사용 로그 액션 상수
const (
	UsageActionScriptExecution = "script_execution"
	UsageActionRegisterUID     = "register_uid"
)
