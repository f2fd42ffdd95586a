package models

// Maintenance 점검 모드 상태 (id=1 단일 행)
type Maintenance struct {
	Active      bool   `json:"active" db:"active"`
	EndTime     string `json:"end_time,omitempty" db:"end_time"` // 비활성일 때 빈 문자열
	LastUpdated string `json:"last_updated" db:"last_updated"`
}

// MaintenanceAction 점검 모드 조작 상수
const (
	MaintenanceActionEnable  = "enable"
	MaintenanceActionDisable = "disable"
	MaintenanceActionAddTime = "add_time"
)

// SetMaintenanceRequest 점검 모드 변경 요청
type SetMaintenanceRequest struct {
	Action string `json:"action" binding:"required"`
	Hours  int    `json:"hours"` // enable/add_time일 때 필수
}
