package services

import (
	"context"
	"fmt"
	"time"

	"vipkeyserver/logger"
	"vipkeyserver/models"
	"vipkeyserver/utils"
)

// maxKeyGenAttempts 키 토큰 충돌 시 재생성 상한.
// 8자리 영숫자 공간에서 충돌은 사실상 없지만 계약상 처리해야 한다.
const maxKeyGenAttempts = 10

// LifecycleService는 관리자 수명주기 작업을 정의합니다.
// 호출자 권한 확인은 관리자 API 계층(JWT/역할 미들웨어)의 책임이며,
// 변경 작업은 스토어 커밋 이후 디스패치할 이벤트 목록을 반환합니다.
type LifecycleService interface {
	IssueKey(ctx context.Context, userID string, durationDays int) (models.Key, []models.Event, error)
	GetKey(ctx context.Context, key string) (models.Key, error)
	ListKeys(ctx context.Context, status string) ([]models.Key, error)
	ExtendKey(ctx context.Context, key string, extraDays int) (models.Key, []models.Event, error)
	RevokeKey(ctx context.Context, key string) ([]models.Event, error)
	DeleteKey(ctx context.Context, key string) ([]models.Event, error)
	BanUser(ctx context.Context, userID string) ([]models.Event, error)
	SetMaintenance(ctx context.Context, action string, hours int) (models.Maintenance, []models.Event, error)
	// SweepExpiredKeys는 만료된 active 키를 레코드 단위로 inactive로
	// 전이시키고 key_expired 이벤트를 반환합니다. 전이가 없으면 빈
	// 목록을 반환합니다.
	SweepExpiredKeys(ctx context.Context) ([]models.Event, error)
	ListUsageLogs(ctx context.Context, limit int) ([]models.UsageLog, error)
}

type lifecycleService struct {
	store KeyStore
}

// NewLifecycleService는 LifecycleService 구현체를 생성합니다.
func NewLifecycleService(store KeyStore) LifecycleService {
	return &lifecycleService{store: store}
}

func (s *lifecycleService) IssueKey(ctx context.Context, userID string, durationDays int) (models.Key, []models.Event, error) {
	banned, err := s.store.IsBanned(ctx, userID)
	if err != nil {
		return models.Key{}, nil, err
	}
	if banned {
		return models.Key{}, nil, ErrUserBanned
	}

	// 충돌이 없을 때까지 재생성
	var token string
	for attempt := 0; ; attempt++ {
		if attempt >= maxKeyGenAttempts {
			return models.Key{}, nil, fmt.Errorf("failed to generate a unique key after %d attempts", maxKeyGenAttempts)
		}
		candidate, err := utils.GenerateKey()
		if err != nil {
			return models.Key{}, nil, err
		}
		_, exists, err := s.store.GetKey(ctx, candidate)
		if err != nil {
			return models.Key{}, nil, err
		}
		if !exists {
			token = candidate
			break
		}
	}

	now := utils.NowUTC()
	record := models.Key{
		Key:              token,
		UserID:           userID,
		Expiration:       utils.FormatDBTime(now.Add(time.Duration(durationDays) * 24 * time.Hour)),
		Status:           models.KeyStatusActive,
		RegistrationDate: utils.FormatDBTime(now),
	}

	if err := s.store.UpsertKey(ctx, record); err != nil {
		return models.Key{}, nil, err
	}

	logger.WithFields(map[string]interface{}{
		"key":        record.Key,
		"user_id":    userID,
		"expiration": record.Expiration,
	}).Info("Key issued")

	events := []models.Event{{
		Type:       models.EventKeyIssued,
		Key:        record.Key,
		UserID:     userID,
		Detail:     "expires " + record.Expiration,
		OccurredAt: record.RegistrationDate,
	}}
	return record, events, nil
}

func (s *lifecycleService) GetKey(ctx context.Context, key string) (models.Key, error) {
	record, found, err := s.store.GetKey(ctx, key)
	if err != nil {
		return models.Key{}, err
	}
	if !found {
		return models.Key{}, ErrKeyNotFound
	}
	return record, nil
}

func (s *lifecycleService) ListKeys(ctx context.Context, status string) ([]models.Key, error) {
	return s.store.ListKeys(ctx, status)
}

func (s *lifecycleService) ExtendKey(ctx context.Context, key string, extraDays int) (models.Key, []models.Event, error) {
	record, found, err := s.store.GetKey(ctx, key)
	if err != nil {
		return models.Key{}, nil, err
	}
	if !found {
		return models.Key{}, nil, ErrKeyNotFound
	}

	current, err := utils.ParseDBTime(record.Expiration)
	if err != nil {
		return models.Key{}, nil, fmt.Errorf("corrupt expiration on key %s: %w", key, err)
	}

	// 현재 만료일 기준으로 더한다. 이미 만료된 키도 원래 만료일에서
	// 연장되며, now 기준이 아니다 (의도된 가산 의미론).
	record.Expiration = utils.FormatDBTime(current.Add(time.Duration(extraDays) * 24 * time.Hour))

	if err := s.store.UpsertKey(ctx, record); err != nil {
		return models.Key{}, nil, err
	}

	logger.WithFields(map[string]interface{}{
		"key":        key,
		"days":       extraDays,
		"expiration": record.Expiration,
	}).Info("Key extended")

	events := []models.Event{{
		Type:       models.EventKeyExtended,
		Key:        key,
		UserID:     record.UserID,
		Detail:     "until " + record.Expiration,
		OccurredAt: utils.FormatDBTime(utils.NowUTC()),
	}}
	return record, events, nil
}

func (s *lifecycleService) RevokeKey(ctx context.Context, key string) ([]models.Event, error) {
	record, found, err := s.store.GetKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrKeyNotFound
	}

	record.Status = models.KeyStatusInactive
	if err := s.store.UpsertKey(ctx, record); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{"key": key, "user_id": record.UserID}).Info("Key revoked")

	now := utils.FormatDBTime(utils.NowUTC())
	return []models.Event{
		{Type: models.EventKeyRevoked, Key: key, UserID: record.UserID, OccurredAt: now},
		{Type: models.EventRoleRevokeRequested, Key: key, UserID: record.UserID, OccurredAt: now},
	}, nil
}

func (s *lifecycleService) DeleteKey(ctx context.Context, key string) ([]models.Event, error) {
	record, found, err := s.store.GetKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrKeyNotFound
	}

	if _, err := s.store.DeleteKey(ctx, key); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{"key": key, "user_id": record.UserID}).Info("Key deleted")

	now := utils.FormatDBTime(utils.NowUTC())
	return []models.Event{
		{Type: models.EventKeyDeleted, Key: key, UserID: record.UserID, OccurredAt: now},
		{Type: models.EventRoleRevokeRequested, Key: key, UserID: record.UserID, OccurredAt: now},
	}, nil
}

func (s *lifecycleService) BanUser(ctx context.Context, userID string) ([]models.Event, error) {
	deleted, err := s.store.BanUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"user_id":      userID,
		"keys_deleted": len(deleted),
	}).Info("User banned")

	now := utils.FormatDBTime(utils.NowUTC())
	events := []models.Event{{
		Type:       models.EventUserBanned,
		UserID:     userID,
		Detail:     fmt.Sprintf("%d key(s) deleted", len(deleted)),
		OccurredAt: now,
	}}
	for _, record := range deleted {
		events = append(events, models.Event{
			Type:       models.EventRoleRevokeRequested,
			Key:        record.Key,
			UserID:     userID,
			OccurredAt: now,
		})
	}
	return events, nil
}

func (s *lifecycleService) SetMaintenance(ctx context.Context, action string, hours int) (models.Maintenance, []models.Event, error) {
	now := utils.NowUTC()
	nowStr := utils.FormatDBTime(now)

	switch action {
	case models.MaintenanceActionDisable:
		state := models.Maintenance{Active: false, EndTime: "", LastUpdated: nowStr}
		if err := s.store.SetMaintenance(ctx, state); err != nil {
			return models.Maintenance{}, nil, err
		}
		logger.Info("Maintenance mode disabled")
		return state, []models.Event{{Type: models.EventMaintenanceDisabled, OccurredAt: nowStr}}, nil

	case models.MaintenanceActionEnable:
		if hours <= 0 {
			return models.Maintenance{}, nil, ErrDurationRequired
		}
		state := models.Maintenance{
			Active:      true,
			EndTime:     utils.FormatDBTime(now.Add(time.Duration(hours) * time.Hour)),
			LastUpdated: nowStr,
		}
		if err := s.store.SetMaintenance(ctx, state); err != nil {
			return models.Maintenance{}, nil, err
		}
		logger.Info("Maintenance mode enabled until %s", state.EndTime)
		return state, []models.Event{{
			Type:       models.EventMaintenanceEnabled,
			Detail:     "until " + state.EndTime,
			OccurredAt: nowStr,
		}}, nil

	case models.MaintenanceActionAddTime:
		if hours <= 0 {
			return models.Maintenance{}, nil, ErrDurationRequired
		}
		current, err := s.store.GetMaintenance(ctx)
		if err != nil {
			return models.Maintenance{}, nil, err
		}
		if !current.Active {
			return models.Maintenance{}, nil, ErrMaintenanceNotActive
		}
		end, err := utils.ParseDBTime(current.EndTime)
		if err != nil || now.After(end) {
			return models.Maintenance{}, nil, ErrMaintenanceExpired
		}
		state := models.Maintenance{
			Active:      true,
			EndTime:     utils.FormatDBTime(end.Add(time.Duration(hours) * time.Hour)),
			LastUpdated: nowStr,
		}
		if err := s.store.SetMaintenance(ctx, state); err != nil {
			return models.Maintenance{}, nil, err
		}
		logger.Info("Maintenance window extended until %s", state.EndTime)
		return state, []models.Event{{
			Type:       models.EventMaintenanceExtended,
			Detail:     "until " + state.EndTime,
			OccurredAt: nowStr,
		}}, nil

	default:
		return models.Maintenance{}, nil, ErrInvalidMaintenanceAction
	}
}

func (s *lifecycleService) SweepExpiredKeys(ctx context.Context) ([]models.Event, error) {
	active, err := s.store.ListKeys(ctx, models.KeyStatusActive)
	if err != nil {
		return nil, err
	}

	now := utils.NowUTC()
	events := make([]models.Event, 0)
	for _, record := range active {
		if !record.IsExpired(now) {
			continue
		}

		// 레코드 단위 조건부 전이. 경쟁 상황에서도 키 하나당
		// 이벤트는 한 번만 발생한다.
		transitioned, err := s.store.MarkKeyInactive(ctx, record.Key)
		if err != nil {
			logger.Error("Failed to expire key %s: %v", record.Key, err)
			continue
		}
		if !transitioned {
			continue
		}

		logger.WithFields(map[string]interface{}{
			"key":        record.Key,
			"user_id":    record.UserID,
			"expiration": record.Expiration,
		}).Info("Key expired")

		nowStr := utils.FormatDBTime(now)
		events = append(events,
			models.Event{Type: models.EventKeyExpired, Key: record.Key, UserID: record.UserID, OccurredAt: nowStr},
			models.Event{Type: models.EventRoleRevokeRequested, Key: record.Key, UserID: record.UserID, OccurredAt: nowStr},
		)
	}

	return events, nil
}

func (s *lifecycleService) ListUsageLogs(ctx context.Context, limit int) ([]models.UsageLog, error) {
	return s.store.ListUsageLogs(ctx, limit)
}
