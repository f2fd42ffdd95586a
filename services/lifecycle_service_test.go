package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vipkeyserver/models"
	"vipkeyserver/utils"
)

func TestIssueKey(t *testing.T) {
	store := newTestStore(t)
	svc := NewLifecycleService(store)
	ctx := context.Background()

	record, events, err := svc.IssueKey(ctx, "42", 7)
	require.NoError(t, err)
	assert.Len(t, record.Key, 8)
	assert.Equal(t, "42", record.UserID)
	assert.Equal(t, models.KeyStatusActive, record.Status)

	issued, err := utils.ParseDBTime(record.RegistrationDate)
	require.NoError(t, err)
	expires, err := utils.ParseDBTime(record.Expiration)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(7*24*time.Hour), expires)

	require.Len(t, events, 1)
	assert.Equal(t, models.EventKeyIssued, events[0].Type)

	got, _, err := store.GetKey(ctx, record.Key)
	require.NoError(t, err)
	assert.Equal(t, models.KeyStatusActive, got.Status)
}

func TestIssueKeyBannedUser(t *testing.T) {
	store := newTestStore(t)
	svc := NewLifecycleService(store)
	ctx := context.Background()

	_, err := store.BanUser(ctx, "42")
	require.NoError(t, err)

	_, _, err = svc.IssueKey(ctx, "42", 7)
	assert.ErrorIs(t, err, ErrUserBanned)
}

func TestExtendKeyIsAdditive(t *testing.T) {
	store := newTestStore(t)
	svc := NewLifecycleService(store)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedKey(t, store, "ABCD1234", "42", base, models.KeyStatusActive)

	// 연장은 현재 시각이 아니라 저장된 만료일 기준이다
	record, events, err := svc.ExtendKey(ctx, "ABCD1234", 7)
	require.NoError(t, err)
	assert.Equal(t, utils.FormatDBTime(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)), record.Expiration)

	require.Len(t, events, 1)
	assert.Equal(t, models.EventKeyExtended, events[0].Type)
}

func TestExtendKeyUnknown(t *testing.T) {
	store := newTestStore(t)
	svc := NewLifecycleService(store)

	_, _, err := svc.ExtendKey(context.Background(), "NOPE0000", 7)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRevokeKey(t *testing.T) {
	store := newTestStore(t)
	svc := NewLifecycleService(store)
	ctx := context.Background()

	seedKey(t, store, "ABCD1234", "42", utils.NowUTC().Add(24*time.Hour), models.KeyStatusActive)

	events, err := svc.RevokeKey(ctx, "ABCD1234")
	require.NoError(t, err)

	types := eventTypes(events)
	assert.Contains(t, types, models.EventKeyRevoked)
	assert.Contains(t, types, models.EventRoleRevokeRequested)

	got, _, err := store.GetKey(ctx, "ABCD1234")
	require.NoError(t, err)
	assert.Equal(t, models.KeyStatusInactive, got.Status)

	_, err = svc.RevokeKey(ctx, "NOPE0000")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDeleteKeyTwice(t *testing.T) {
	store := newTestStore(t)
	svc := NewLifecycleService(store)
	ctx := context.Background()

	seedKey(t, store, "ABCD1234", "42", utils.NowUTC().Add(24*time.Hour), models.KeyStatusActive)

	events, err := svc.DeleteKey(ctx, "ABCD1234")
	require.NoError(t, err)
	assert.Contains(t, eventTypes(events), models.EventKeyDeleted)

	// 두 번째 삭제는 NotFound일 뿐 실패가 아니다
	_, err = svc.DeleteKey(ctx, "ABCD1234")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestBanUserCascade(t *testing.T) {
	store := newTestStore(t)
	svc := NewLifecycleService(store)
	ctx := context.Background()

	seedKey(t, store, "AAAA1111", "42", utils.NowUTC().Add(24*time.Hour), models.KeyStatusActive)
	seedKey(t, store, "BBBB2222", "42", utils.NowUTC().Add(24*time.Hour), models.KeyStatusActive)
	seedKey(t, store, "CCCC3333", "7", utils.NowUTC().Add(24*time.Hour), models.KeyStatusActive)

	events, err := svc.BanUser(ctx, "42")
	require.NoError(t, err)

	types := eventTypes(events)
	assert.Contains(t, types, models.EventUserBanned)

	revokes := 0
	for _, e := range events {
		if e.Type == models.EventRoleRevokeRequested {
			revokes++
		}
	}
	assert.Equal(t, 2, revokes)

	keys, err := svc.ListKeys(ctx, "")
	require.NoError(t, err)
	for _, k := range keys {
		assert.NotEqual(t, "42", k.UserID)
	}

	// 차단 후에는 발급이 거부된다
	_, _, err = svc.IssueKey(ctx, "42", 7)
	assert.ErrorIs(t, err, ErrUserBanned)
}

func TestSetMaintenanceEnableDisable(t *testing.T) {
	store := newTestStore(t)
	svc := NewLifecycleService(store)
	ctx := context.Background()

	state, events, err := svc.SetMaintenance(ctx, models.MaintenanceActionEnable, 2)
	require.NoError(t, err)
	assert.True(t, state.Active)
	assert.NotEmpty(t, state.EndTime)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventMaintenanceEnabled, events[0].Type)

	state, events, err = svc.SetMaintenance(ctx, models.MaintenanceActionDisable, 0)
	require.NoError(t, err)
	assert.False(t, state.Active)
	assert.Empty(t, state.EndTime)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventMaintenanceDisabled, events[0].Type)
}

func TestSetMaintenanceAddTime(t *testing.T) {
	store := newTestStore(t)
	svc := NewLifecycleService(store)
	ctx := context.Background()

	// 점검 중이 아니면 연장 불가
	_, _, err := svc.SetMaintenance(ctx, models.MaintenanceActionAddTime, 1)
	assert.ErrorIs(t, err, ErrMaintenanceNotActive)

	until := utils.NowUTC().Add(time.Hour)
	enableMaintenance(t, store, until)

	state, events, err := svc.SetMaintenance(ctx, models.MaintenanceActionAddTime, 2)
	require.NoError(t, err)
	assert.Equal(t, utils.FormatDBTime(until.Add(2*time.Hour)), state.EndTime)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventMaintenanceExtended, events[0].Type)

	// 이미 만료된 창은 연장할 수 없다
	enableMaintenance(t, store, utils.NowUTC().Add(-time.Second))
	_, _, err = svc.SetMaintenance(ctx, models.MaintenanceActionAddTime, 1)
	assert.ErrorIs(t, err, ErrMaintenanceExpired)
}

func TestSetMaintenanceValidation(t *testing.T) {
	store := newTestStore(t)
	svc := NewLifecycleService(store)
	ctx := context.Background()

	_, _, err := svc.SetMaintenance(ctx, "reboot", 1)
	assert.ErrorIs(t, err, ErrInvalidMaintenanceAction)

	_, _, err = svc.SetMaintenance(ctx, models.MaintenanceActionEnable, 0)
	assert.ErrorIs(t, err, ErrDurationRequired)
}

func TestSweepExpiredKeys(t *testing.T) {
	store := newTestStore(t)
	svc := NewLifecycleService(store)
	ctx := context.Background()

	seedKey(t, store, "AAAA1111", "1", utils.NowUTC().Add(-time.Hour), models.KeyStatusActive)
	seedKey(t, store, "BBBB2222", "2", utils.NowUTC().Add(-time.Minute), models.KeyStatusActive)
	seedKey(t, store, "CCCC3333", "3", utils.NowUTC().Add(24*time.Hour), models.KeyStatusActive)
	seedKey(t, store, "DDDD4444", "4", utils.NowUTC().Add(-time.Hour), models.KeyStatusInactive)

	events, err := svc.SweepExpiredKeys(ctx)
	require.NoError(t, err)

	expired := 0
	for _, e := range events {
		if e.Type == models.EventKeyExpired {
			expired++
			assert.Contains(t, []string{"AAAA1111", "BBBB2222"}, e.Key)
		}
	}
	assert.Equal(t, 2, expired)

	// 만료되지 않은 키는 그대로다
	got, _, err := store.GetKey(ctx, "CCCC3333")
	require.NoError(t, err)
	assert.Equal(t, models.KeyStatusActive, got.Status)

	// 새로 만료된 키가 없으면 두 번째 실행은 아무 일도 하지 않는다
	events, err = svc.SweepExpiredKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}
