package services

import "errors"

var (
	// ErrStoreUnavailable는 저장소 자체에 접근할 수 없을 때 반환됩니다.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrKeyNotFound는 키가 존재하지 않을 때 반환됩니다.
	ErrKeyNotFound = errors.New("key not found")
	// ErrUserBanned는 차단된 유저에 대한 작업을 거부할 때 반환됩니다.
	ErrUserBanned = errors.New("user is banned")
	// ErrMaintenanceActive는 점검 모드 중 검증 요청을 차단할 때 반환됩니다.
	ErrMaintenanceActive = errors.New("server under maintenance")
	// ErrMaintenanceNotActive는 비활성 상태에서 add_time을 시도할 때 반환됩니다.
	ErrMaintenanceNotActive = errors.New("maintenance mode is not active")
	// ErrMaintenanceExpired는 이미 종료된 점검 시간을 연장하려 할 때 반환됩니다.
	ErrMaintenanceExpired = errors.New("maintenance mode has already ended")
	// ErrInvalidMaintenanceAction은 지원하지 않는 점검 조작일 때 반환됩니다.
	ErrInvalidMaintenanceAction = errors.New("invalid maintenance action")
	// ErrDurationRequired는 enable/add_time에 시간이 누락됐을 때 반환됩니다.
	ErrDurationRequired = errors.New("duration is required")
)

// storeErr wraps driver-level failures as ErrStoreUnavailable.
// 저장소는 비즈니스 검증을 하지 않으므로 이것이 유일한 오류 종류다.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrStoreUnavailable, err)
}
