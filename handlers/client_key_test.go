package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vipkeyserver/database"
	"vipkeyserver/models"
	"vipkeyserver/notify"
	"vipkeyserver/services"
	"vipkeyserver/utils"
)

type clientTestEnv struct {
	store   services.KeyStore
	handler *ClientKeyHandler
}

func newClientTestEnv(t *testing.T) *clientTestEnv {
	t.Helper()

	db, err := database.Initialize("sqlite", filepath.Join(t.TempDir(), "keys.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := services.NewKeyStore(services.NewSQLExecutor(db))
	licenses := services.NewLicenseService(store)
	return &clientTestEnv{
		store:   store,
		handler: NewClientKeyHandler(licenses, notify.NewDispatcher()),
	}
}

func (env *clientTestEnv) seedKey(t *testing.T, key, userID, androidUID string) {
	t.Helper()

	require.NoError(t, env.store.UpsertKey(context.Background(), models.Key{
		Key:              key,
		UserID:           userID,
		Expiration:       utils.FormatDBTime(utils.NowUTC().Add(7 * 24 * time.Hour)),
		Status:           models.KeyStatusActive,
		RegistrationDate: utils.FormatDBTime(utils.NowUTC()),
		AndroidUID:       androidUID,
	}))
}

func (env *clientTestEnv) enableMaintenance(t *testing.T, until time.Time) {
	t.Helper()

	require.NoError(t, env.store.SetMaintenance(context.Background(), models.Maintenance{
		Active:      true,
		EndTime:     utils.FormatDBTime(until),
		LastUpdated: utils.FormatDBTime(utils.NowUTC()),
	}))
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestCheckMaintenanceEndpoint(t *testing.T) {
	env := newClientTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.CheckMaintenance(rec, httptest.NewRequest(http.MethodGet, "/check_maintenance", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, false, body["active"])
	assert.Nil(t, body["end_time"])

	until := utils.NowUTC().Add(time.Hour)
	env.enableMaintenance(t, until)

	rec = httptest.NewRecorder()
	env.handler.CheckMaintenance(rec, httptest.NewRequest(http.MethodGet, "/check_maintenance", nil))

	body = decodeJSON(t, rec)
	assert.Equal(t, true, body["active"])
	assert.Equal(t, utils.FormatDBTime(until), body["end_time"])
}

func TestCheckMaintenanceEndpointLazyExpiry(t *testing.T) {
	env := newClientTestEnv(t)
	env.enableMaintenance(t, utils.NowUTC().Add(-time.Second))

	rec := httptest.NewRecorder()
	env.handler.CheckMaintenance(rec, httptest.NewRequest(http.MethodGet, "/check_maintenance", nil))

	body := decodeJSON(t, rec)
	assert.Equal(t, false, body["active"])
	assert.Nil(t, body["end_time"])
}

func TestCheckKeyEndpoint(t *testing.T) {
	env := newClientTestEnv(t)
	env.seedKey(t, "ABCD1234", "42", "")

	rec := httptest.NewRecorder()
	env.handler.CheckKey(rec, httptest.NewRequest(http.MethodGet, "/check_key?key=ABCD1234", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "ABCD1234", body["key"])
	assert.Equal(t, "42", body["user_id"])
	assert.Equal(t, "active", body["status"])
	assert.NotEmpty(t, body["expiration"])
	assert.NotEmpty(t, body["registration_date"])
}

func TestCheckKeyEndpointInvalidKey(t *testing.T) {
	env := newClientTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.CheckKey(rec, httptest.NewRequest(http.MethodGet, "/check_key?key=NOPE0000", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Invalid key", decodeJSON(t, rec)["error"])
}

func TestCheckKeyEndpointDuringMaintenance(t *testing.T) {
	env := newClientTestEnv(t)
	env.seedKey(t, "ABCD1234", "42", "")
	env.enableMaintenance(t, utils.NowUTC().Add(time.Hour))

	rec := httptest.NewRecorder()
	env.handler.CheckKey(rec, httptest.NewRequest(http.MethodGet, "/check_key?key=ABCD1234", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Server under maintenance", decodeJSON(t, rec)["error"])
}

func TestCheckUIDEndpoint(t *testing.T) {
	env := newClientTestEnv(t)
	env.seedKey(t, "ABCD1234", "42", "device-a")
	env.seedKey(t, "FREE5678", "7", "")

	// 일치
	rec := httptest.NewRecorder()
	env.handler.CheckUID(rec, httptest.NewRequest(http.MethodGet, "/check_uid?key=ABCD1234&android_uid=device-a", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeJSON(t, rec)["exists"])

	// 다른 기기
	rec = httptest.NewRecorder()
	env.handler.CheckUID(rec, httptest.NewRequest(http.MethodGet, "/check_uid?key=ABCD1234&android_uid=device-b", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Key already in use", decodeJSON(t, rec)["error"])

	// 미등록 키
	rec = httptest.NewRecorder()
	env.handler.CheckUID(rec, httptest.NewRequest(http.MethodGet, "/check_uid?key=FREE5678&android_uid=device-a", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeJSON(t, rec)["exists"])

	// 파라미터 누락
	rec = httptest.NewRecorder()
	env.handler.CheckUID(rec, httptest.NewRequest(http.MethodGet, "/check_uid?key=ABCD1234", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request", decodeJSON(t, rec)["error"])

	// 없는 키
	rec = httptest.NewRecorder()
	env.handler.CheckUID(rec, httptest.NewRequest(http.MethodGet, "/check_uid?key=NOPE0000&android_uid=device-a", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterUIDEndpointPost(t *testing.T) {
	env := newClientTestEnv(t)
	env.seedKey(t, "ABCD1234", "42", "")

	payload := `{"key":"ABCD1234","discord_id":"42","android_uid":"device-a"}`
	req := httptest.NewRequest(http.MethodPost, "/register_uid", strings.NewReader(payload))

	rec := httptest.NewRecorder()
	env.handler.RegisterUID(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "UID registered", decodeJSON(t, rec)["success"])

	got, _, err := env.store.GetKey(context.Background(), "ABCD1234")
	require.NoError(t, err)
	assert.Equal(t, "device-a", got.AndroidUID)
}

func TestRegisterUIDEndpointGet(t *testing.T) {
	env := newClientTestEnv(t)
	env.seedKey(t, "ABCD1234", "42", "")

	req := httptest.NewRequest(http.MethodGet, "/register_uid?key=ABCD1234&discord_id=42&android_uid=device-a", nil)

	rec := httptest.NewRecorder()
	env.handler.RegisterUID(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "UID registered", decodeJSON(t, rec)["success"])
}

func TestRegisterUIDEndpointOverwritesBinding(t *testing.T) {
	env := newClientTestEnv(t)
	env.seedKey(t, "ABCD1234", "42", "deviceA")

	// 이미 바인딩된 키를 다른 기기로 다시 등록하면 409가 아니라
	// 성공이며, 바인딩이 교체된다
	payload := `{"key":"ABCD1234","discord_id":"42","android_uid":"deviceB"}`
	rec := httptest.NewRecorder()
	env.handler.RegisterUID(rec, httptest.NewRequest(http.MethodPost, "/register_uid", strings.NewReader(payload)))

	assert.Equal(t, http.StatusOK, rec.Code)

	got, _, err := env.store.GetKey(context.Background(), "ABCD1234")
	require.NoError(t, err)
	assert.Equal(t, "deviceB", got.AndroidUID)
}

func TestRegisterUIDEndpointBannedUser(t *testing.T) {
	env := newClientTestEnv(t)
	env.seedKey(t, "ABCD1234", "42", "")
	_, err := env.store.BanUser(context.Background(), "99")
	require.NoError(t, err)

	payload := `{"key":"ABCD1234","discord_id":"99","android_uid":"device-a"}`
	rec := httptest.NewRecorder()
	env.handler.RegisterUID(rec, httptest.NewRequest(http.MethodPost, "/register_uid", strings.NewReader(payload)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied", decodeJSON(t, rec)["error"])
}

func TestRegisterUIDEndpointValidation(t *testing.T) {
	env := newClientTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.RegisterUID(rec, httptest.NewRequest(http.MethodPost, "/register_uid", strings.NewReader(`{"key":"ABCD1234"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	env.handler.RegisterUID(rec, httptest.NewRequest(http.MethodPost, "/register_uid", strings.NewReader("not-json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogUsageEndpoint(t *testing.T) {
	env := newClientTestEnv(t)
	env.seedKey(t, "ABCD1234", "42", "")

	payload := `{"key":"ABCD1234","action":"login"}`
	rec := httptest.NewRecorder()
	env.handler.LogUsage(rec, httptest.NewRequest(http.MethodPost, "/log_usage", strings.NewReader(payload)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged", decodeJSON(t, rec)["success"])

	logs, err := env.store.ListUsageLogs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "login", logs[0].Action)
}

func TestScriptExecutionEndpoint(t *testing.T) {
	env := newClientTestEnv(t)
	env.seedKey(t, "ABCD1234", "42", "")

	rec := httptest.NewRecorder()
	env.handler.ScriptExecution(rec, httptest.NewRequest(http.MethodGet, "/script_execution?key=ABCD1234", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Execution logged", decodeJSON(t, rec)["success"])

	logs, err := env.store.ListUsageLogs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.UsageActionScriptExecution, logs[0].Action)
}

func TestClientEndpointsDuringMaintenance(t *testing.T) {
	env := newClientTestEnv(t)
	env.seedKey(t, "ABCD1234", "42", "")
	env.enableMaintenance(t, utils.NowUTC().Add(time.Hour))

	cases := []struct {
		name    string
		request *http.Request
		handler http.HandlerFunc
	}{
		{"check_uid", httptest.NewRequest(http.MethodGet, "/check_uid?key=ABCD1234&android_uid=x", nil), env.handler.CheckUID},
		{"register_uid", httptest.NewRequest(http.MethodGet, "/register_uid?key=ABCD1234&discord_id=42&android_uid=x", nil), env.handler.RegisterUID},
		{"log_usage", httptest.NewRequest(http.MethodGet, "/log_usage?key=ABCD1234&action=login", nil), env.handler.LogUsage},
		{"script_execution", httptest.NewRequest(http.MethodGet, "/script_execution?key=ABCD1234", nil), env.handler.ScriptExecution},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.handler(rec, tc.request)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Equal(t, "Server under maintenance", decodeJSON(t, rec)["error"])
		})
	}
}
