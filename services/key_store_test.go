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

func TestKeyStoreUpsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seeded := seedKey(t, store, "ABCD1234", "42", utils.NowUTC().Add(7*24*time.Hour), models.KeyStatusActive)

	got, found, err := store.GetKey(ctx, "ABCD1234")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, seeded.Key, got.Key)
	assert.Equal(t, "42", got.UserID)
	assert.Equal(t, models.KeyStatusActive, got.Status)
	assert.Empty(t, got.AndroidUID)

	// 같은 키를 다시 저장하면 덮어쓴다
	seeded.Status = models.KeyStatusInactive
	require.NoError(t, store.UpsertKey(ctx, seeded))

	got, found, err = store.GetKey(ctx, "ABCD1234")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.KeyStatusInactive, got.Status)
}

func TestKeyStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, found, err := store.GetKey(context.Background(), "NOPE0000")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKeyStoreDeleteIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedKey(t, store, "ABCD1234", "42", utils.NowUTC().Add(24*time.Hour), models.KeyStatusActive)

	deleted, err := store.DeleteKey(ctx, "ABCD1234")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteKey(ctx, "ABCD1234")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestKeyStoreListKeysFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedKey(t, store, "AAAA1111", "1", utils.NowUTC().Add(24*time.Hour), models.KeyStatusActive)
	seedKey(t, store, "BBBB2222", "2", utils.NowUTC().Add(24*time.Hour), models.KeyStatusInactive)
	seedKey(t, store, "CCCC3333", "3", utils.NowUTC().Add(24*time.Hour), models.KeyStatusActive)

	all, err := store.ListKeys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := store.ListKeys(ctx, models.KeyStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 2)
	for _, k := range active {
		assert.Equal(t, models.KeyStatusActive, k.Status)
	}
}

func TestKeyStoreBanCascade(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedKey(t, store, "AAAA1111", "42", utils.NowUTC().Add(24*time.Hour), models.KeyStatusActive)
	seedKey(t, store, "BBBB2222", "42", utils.NowUTC().Add(24*time.Hour), models.KeyStatusInactive)
	seedKey(t, store, "CCCC3333", "7", utils.NowUTC().Add(24*time.Hour), models.KeyStatusActive)

	deleted, err := store.BanUser(ctx, "42")
	require.NoError(t, err)
	assert.Len(t, deleted, 2)

	banned, err := store.IsBanned(ctx, "42")
	require.NoError(t, err)
	assert.True(t, banned)

	remaining, err := store.ListKeys(ctx, "")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "7", remaining[0].UserID)

	// 중복 차단은 에러가 아니다
	deleted, err = store.BanUser(ctx, "42")
	require.NoError(t, err)
	assert.Empty(t, deleted)
}

func TestKeyStoreMaintenanceRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state, err := store.GetMaintenance(ctx)
	require.NoError(t, err)
	assert.False(t, state.Active)

	until := utils.NowUTC().Add(2 * time.Hour)
	enableMaintenance(t, store, until)

	state, err = store.GetMaintenance(ctx)
	require.NoError(t, err)
	assert.True(t, state.Active)
	assert.Equal(t, utils.FormatDBTime(until), state.EndTime)
}

func TestKeyStoreClearExpiredMaintenance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := utils.NowUTC()

	// 활성이지만 아직 만료되지 않음: 전이 없음
	enableMaintenance(t, store, now.Add(time.Hour))
	cleared, err := store.ClearExpiredMaintenance(ctx, now)
	require.NoError(t, err)
	assert.False(t, cleared)

	// 종료 시각이 지났으면 정확히 한 번만 전이된다
	enableMaintenance(t, store, now.Add(-time.Second))
	cleared, err = store.ClearExpiredMaintenance(ctx, now)
	require.NoError(t, err)
	assert.True(t, cleared)

	cleared, err = store.ClearExpiredMaintenance(ctx, now)
	require.NoError(t, err)
	assert.False(t, cleared)

	state, err := store.GetMaintenance(ctx)
	require.NoError(t, err)
	assert.False(t, state.Active)
	assert.Empty(t, state.EndTime)
}

func TestKeyStoreMarkKeyInactive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedKey(t, store, "ABCD1234", "42", utils.NowUTC().Add(-time.Hour), models.KeyStatusActive)

	transitioned, err := store.MarkKeyInactive(ctx, "ABCD1234")
	require.NoError(t, err)
	assert.True(t, transitioned)

	// 이미 inactive면 전이가 일어나지 않는다
	transitioned, err = store.MarkKeyInactive(ctx, "ABCD1234")
	require.NoError(t, err)
	assert.False(t, transitioned)

	transitioned, err = store.MarkKeyInactive(ctx, "NOPE0000")
	require.NoError(t, err)
	assert.False(t, transitioned)
}

func TestKeyStoreUpdateBinding(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedKey(t, store, "ABCD1234", "42", utils.NowUTC().Add(24*time.Hour), models.KeyStatusActive)

	require.NoError(t, store.UpdateBinding(ctx, "ABCD1234", "99", "device-a"))

	got, found, err := store.GetKey(ctx, "ABCD1234")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "99", got.UserID)
	assert.Equal(t, "device-a", got.AndroidUID)
}

func TestKeyStoreUsageLogs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendUsageLog(ctx, models.UsageLog{
			Key:       "ABCD1234",
			UserID:    "42",
			Action:    models.UsageActionScriptExecution,
			SourceIP:  "127.0.0.1",
			CreatedAt: utils.FormatDBTime(utils.NowUTC()),
		}))
	}

	logs, err := store.ListUsageLogs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	// 최신 항목이 먼저 온다
	assert.Greater(t, logs[0].ID, logs[1].ID)
}
