package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vipkeyserver/database"
	"vipkeyserver/models"
	"vipkeyserver/utils"
)

func newTestStore(t *testing.T) KeyStore {
	t.Helper()

	db, err := database.Initialize("sqlite", filepath.Join(t.TempDir(), "keys.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewKeyStore(NewSQLExecutor(db))
}

func seedKey(t *testing.T, store KeyStore, key, userID string, expiration time.Time, status string) models.Key {
	t.Helper()

	record := models.Key{
		Key:              key,
		UserID:           userID,
		Expiration:       utils.FormatDBTime(expiration),
		Status:           status,
		RegistrationDate: utils.FormatDBTime(utils.NowUTC()),
	}
	require.NoError(t, store.UpsertKey(context.Background(), record))
	return record
}

func enableMaintenance(t *testing.T, store KeyStore, until time.Time) {
	t.Helper()

	require.NoError(t, store.SetMaintenance(context.Background(), models.Maintenance{
		Active:      true,
		EndTime:     utils.FormatDBTime(until),
		LastUpdated: utils.FormatDBTime(utils.NowUTC()),
	}))
}
