package services

import (
	"context"

	"vipkeyserver/logger"
	"vipkeyserver/models"
	"vipkeyserver/utils"
)

// BindingStatus 디바이스 등록 상태
type BindingStatus string

const (
	BindingUnbound  BindingStatus = "unbound"
	BindingMatches  BindingStatus = "bound_matches"
	BindingConflict BindingStatus = "bound_conflict"
)

// LicenseService는 클라이언트 검증/등록 경로의 비즈니스 로직을 정의합니다.
// 모든 작업은 점검 게이트를 먼저 통과해야 하며, 변경 작업은 스토어 커밋
// 이후 디스패치할 이벤트 목록을 반환합니다.
type LicenseService interface {
	// CheckMaintenance는 현재 점검 상태를 반환합니다. 만료된 점검은
	// 조회 시점에 해제되며(lazy expiry), 전이를 관측한 호출에만
	// maintenance_ended 이벤트가 실립니다.
	CheckMaintenance(ctx context.Context) (models.Maintenance, []models.Event, error)
	CheckKey(ctx context.Context, key string) (models.Key, []models.Event, error)
	CheckDeviceBinding(ctx context.Context, key, androidUID string) (BindingStatus, []models.Event, error)
	RegisterDevice(ctx context.Context, key, userID, androidUID, sourceIP string) ([]models.Event, error)
	// LogUsage는 최선 노력 감사 기록입니다. 저장 실패는 호출자에게
	// 전파하지 않습니다.
	LogUsage(ctx context.Context, key, action, sourceIP string) ([]models.Event, error)
}

type licenseService struct {
	store KeyStore
}

// NewLicenseService는 LicenseService 구현체를 생성합니다.
func NewLicenseService(store KeyStore) LicenseService {
	return &licenseService{store: store}
}

// refreshMaintenance는 만료된 점검 상태를 CAS로 해제한 뒤 현재 상태를
// 읽습니다. 전이를 관측한 호출에만 이벤트가 반환됩니다.
func (s *licenseService) refreshMaintenance(ctx context.Context) (models.Maintenance, []models.Event, error) {
	now := utils.NowUTC()

	cleared, err := s.store.ClearExpiredMaintenance(ctx, now)
	if err != nil {
		return models.Maintenance{}, nil, err
	}

	var events []models.Event
	if cleared {
		logger.Info("Maintenance window expired, cleared")
		events = append(events, models.Event{
			Type:       models.EventMaintenanceEnded,
			OccurredAt: utils.FormatDBTime(now),
		})
	}

	state, err := s.store.GetMaintenance(ctx)
	if err != nil {
		return models.Maintenance{}, events, err
	}
	return state, events, nil
}

// gate는 점검 모드가 활성일 때 ErrMaintenanceActive를 반환합니다.
func (s *licenseService) gate(ctx context.Context) ([]models.Event, error) {
	state, events, err := s.refreshMaintenance(ctx)
	if err != nil {
		return events, err
	}
	if state.Active {
		return events, ErrMaintenanceActive
	}
	return events, nil
}

func (s *licenseService) CheckMaintenance(ctx context.Context) (models.Maintenance, []models.Event, error) {
	return s.refreshMaintenance(ctx)
}

func (s *licenseService) CheckKey(ctx context.Context, key string) (models.Key, []models.Event, error) {
	events, err := s.gate(ctx)
	if err != nil {
		return models.Key{}, events, err
	}

	record, found, err := s.store.GetKey(ctx, key)
	if err != nil {
		return models.Key{}, events, err
	}
	if !found {
		return models.Key{}, events, ErrKeyNotFound
	}

	// 저장된 status를 그대로 보고한다. 만료 전이는 스윕의 몫이다.
	return record, events, nil
}

func (s *licenseService) CheckDeviceBinding(ctx context.Context, key, androidUID string) (BindingStatus, []models.Event, error) {
	events, err := s.gate(ctx)
	if err != nil {
		return "", events, err
	}

	record, found, err := s.store.GetKey(ctx, key)
	if err != nil {
		return "", events, err
	}
	if !found {
		return "", events, ErrKeyNotFound
	}

	switch {
	case !record.IsBound():
		return BindingUnbound, events, nil
	case record.AndroidUID == androidUID:
		return BindingMatches, events, nil
	default:
		// 한 키에 하나의 디바이스만 허용. 자동 재등록 경로는 없다.
		return BindingConflict, events, nil
	}
}

func (s *licenseService) RegisterDevice(ctx context.Context, key, userID, androidUID, sourceIP string) ([]models.Event, error) {
	events, err := s.gate(ctx)
	if err != nil {
		return events, err
	}

	banned, err := s.store.IsBanned(ctx, userID)
	if err != nil {
		return events, err
	}
	if banned {
		return events, ErrUserBanned
	}

	record, found, err := s.store.GetKey(ctx, key)
	if err != nil {
		return events, err
	}
	if !found {
		return events, ErrKeyNotFound
	}

	firstBinding := !record.IsBound()

	// 기존 등록 여부와 무관하게 덮어쓴다. CheckDeviceBinding의 충돌
	// 판정과 의도적으로 비대칭이다 (제품 결정 보류 상태).
	if err := s.store.UpdateBinding(ctx, key, userID, androidUID); err != nil {
		return events, err
	}

	now := utils.FormatDBTime(utils.NowUTC())
	events = append(events, models.Event{
		Type:       models.EventDeviceRegistered,
		Key:        key,
		UserID:     userID,
		SourceIP:   sourceIP,
		OccurredAt: now,
	})
	if firstBinding {
		events = append(events, models.Event{
			Type:       models.EventRoleGrantRequested,
			Key:        key,
			UserID:     userID,
			SourceIP:   sourceIP,
			OccurredAt: now,
		})
	}

	logger.WithFields(map[string]interface{}{
		"key":     key,
		"user_id": userID,
		"ip":      sourceIP,
	}).Info("Device UID registered")

	return events, nil
}

func (s *licenseService) LogUsage(ctx context.Context, key, action, sourceIP string) ([]models.Event, error) {
	events, err := s.gate(ctx)
	if err != nil {
		return events, err
	}

	userID := "Unknown"
	if record, found, err := s.store.GetKey(ctx, key); err == nil && found {
		userID = record.UserID
	}

	now := utils.FormatDBTime(utils.NowUTC())
	entry := models.UsageLog{
		Key:       key,
		UserID:    userID,
		Action:    action,
		SourceIP:  sourceIP,
		CreatedAt: now,
	}

	// 감사 기록은 최선 노력이다. 실패해도 호출자는 성공을 받는다.
	if err := s.store.AppendUsageLog(ctx, entry); err != nil {
		logger.Error("Failed to append usage log: %v", err)
	}

	events = append(events, models.Event{
		Type:       models.EventUsageLogged,
		Key:        key,
		UserID:     userID,
		Action:     action,
		SourceIP:   sourceIP,
		OccurredAt: now,
	})

	return events, nil
}
