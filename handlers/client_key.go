package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"vipkeyserver/logger"
	"vipkeyserver/middleware"
	"vipkeyserver/models"
	"vipkeyserver/notify"
	"vipkeyserver/services"
)

// ClientKeyHandler는 클라이언트(로더) 공개 엔드포인트를 처리한다.
// 응답은 관리자 API 봉투가 아니라 클라이언트가 기대하는 평탄한 JSON
// ({"error": ...} / {"success": ...})이다.
type ClientKeyHandler struct {
	licenses   services.LicenseService
	dispatcher *notify.Dispatcher
}

// NewClientKeyHandler는 클라이언트 핸들러를 생성한다.
func NewClientKeyHandler(licenses services.LicenseService, dispatcher *notify.Dispatcher) *ClientKeyHandler {
	return &ClientKeyHandler{licenses: licenses, dispatcher: dispatcher}
}

// clientParam은 GET 쿼리 파라미터와 POST JSON 바디 어느 쪽도 허용한다.
func clientParam(r *http.Request, body map[string]string, name string) string {
	if r.Method == http.MethodPost {
		return body[name]
	}
	return r.URL.Query().Get(name)
}

// decodeClientBody는 POST 요청의 JSON 바디를 읽는다. GET이면 nil을 반환한다.
func decodeClientBody(r *http.Request) (map[string]string, bool) {
	if r.Method != http.MethodPost {
		return nil, true
	}
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, false
	}
	return body, true
}

func clientError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func clientSuccess(w http.ResponseWriter, message string) {
	json.NewEncoder(w).Encode(map[string]string{"success": message})
}

// writeServiceError는 서비스 에러를 클라이언트 상태 코드로 변환한다.
func (h *ClientKeyHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrMaintenanceActive):
		clientError(w, http.StatusServiceUnavailable, "Server under maintenance")
	case errors.Is(err, services.ErrKeyNotFound):
		clientError(w, http.StatusNotFound, "Invalid key")
	case errors.Is(err, services.ErrUserBanned):
		clientError(w, http.StatusForbidden, "Access denied")
	default:
		logger.Error("Client request failed: %v", err)
		clientError(w, http.StatusInternalServerError, "Server error")
	}
}

// maintenanceGate는 점검 중이면 503을 쓰고 false를 반환한다. 점검
// 게이트가 파라미터 검증보다 먼저 평가된다.
func (h *ClientKeyHandler) maintenanceGate(w http.ResponseWriter, r *http.Request) bool {
	state, events, err := h.licenses.CheckMaintenance(r.Context())
	h.dispatcher.Dispatch(r.Context(), events)
	if err != nil {
		logger.Error("Failed to check maintenance state: %v", err)
		return true
	}
	if state.Active {
		clientError(w, http.StatusServiceUnavailable, "Server under maintenance")
		return false
	}
	return true
}

// CheckMaintenance 점검 상태 조회
// @Summary 점검 상태 조회
// @Description 서버 점검 여부와 종료 시각을 반환합니다
// @Tags 클라이언트
// @Produce json
// @Success 200 {object} map[string]interface{} "점검 상태"
// @Router /check_maintenance [get]
func (h *ClientKeyHandler) CheckMaintenance(w http.ResponseWriter, r *http.Request) {
	state, events, err := h.licenses.CheckMaintenance(r.Context())
	h.dispatcher.Dispatch(r.Context(), events)
	if err != nil {
		logger.Error("Failed to check maintenance state: %v", err)
		// 상태를 못 읽으면 클라이언트는 점검 아님으로 취급한다
		json.NewEncoder(w).Encode(map[string]interface{}{"active": false, "end_time": nil})
		return
	}

	if !state.Active || state.EndTime == "" {
		json.NewEncoder(w).Encode(map[string]interface{}{"active": false, "end_time": nil})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"active": true, "end_time": state.EndTime})
}

// CheckKey 키 조회
// @Summary 키 조회
// @Description 키 레코드를 반환합니다
// @Tags 클라이언트
// @Produce json
// @Param key query string true "키"
// @Success 200 {object} models.Key "키 정보"
// @Failure 404 {object} map[string]string "잘못된 키"
// @Failure 503 {object} map[string]string "서버 점검 중"
// @Router /check_key [get]
func (h *ClientKeyHandler) CheckKey(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")

	record, events, err := h.licenses.CheckKey(r.Context(), key)
	h.dispatcher.Dispatch(r.Context(), events)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"key":               record.Key,
		"user_id":           record.UserID,
		"expiration":        record.Expiration,
		"status":            record.Status,
		"registration_date": record.RegistrationDate,
	})
}

// CheckUID 기기 바인딩 조회
// @Summary 기기 바인딩 조회
// @Description 키에 등록된 기기 UID와 요청 UID를 비교합니다
// @Tags 클라이언트
// @Produce json
// @Param key query string true "키"
// @Param android_uid query string true "기기 UID"
// @Success 200 {object} map[string]bool "바인딩 여부"
// @Failure 400 {object} map[string]string "파라미터 누락"
// @Failure 403 {object} map[string]string "다른 기기에 바인딩됨"
// @Failure 404 {object} map[string]string "잘못된 키"
// @Failure 503 {object} map[string]string "서버 점검 중"
// @Router /check_uid [get]
func (h *ClientKeyHandler) CheckUID(w http.ResponseWriter, r *http.Request) {
	if !h.maintenanceGate(w, r) {
		return
	}

	key := r.URL.Query().Get("key")
	androidUID := r.URL.Query().Get("android_uid")
	if key == "" || androidUID == "" {
		clientError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	status, events, err := h.licenses.CheckDeviceBinding(r.Context(), key, androidUID)
	h.dispatcher.Dispatch(r.Context(), events)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	switch status {
	case services.BindingConflict:
		clientError(w, http.StatusForbidden, "Key already in use")
	case services.BindingMatches:
		json.NewEncoder(w).Encode(map[string]bool{"exists": true})
	default:
		json.NewEncoder(w).Encode(map[string]bool{"exists": false})
	}
}

// RegisterUID 기기 등록
// @Summary 기기 등록
// @Description 키에 기기 UID와 소유자를 등록합니다
// @Tags 클라이언트
// @Accept json
// @Produce json
// @Param key query string false "키"
// @Param discord_id query string false "사용자 ID"
// @Param android_uid query string false "기기 UID"
// @Success 200 {object} map[string]string "등록 성공"
// @Failure 400 {object} map[string]string "파라미터 누락"
// @Failure 403 {object} map[string]string "차단된 사용자"
// @Failure 404 {object} map[string]string "잘못된 키"
// @Failure 503 {object} map[string]string "서버 점검 중"
// @Router /register_uid [post]
func (h *ClientKeyHandler) RegisterUID(w http.ResponseWriter, r *http.Request) {
	if !h.maintenanceGate(w, r) {
		return
	}

	body, ok := decodeClientBody(r)
	if !ok {
		clientError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	key := clientParam(r, body, "key")
	discordID := clientParam(r, body, "discord_id")
	androidUID := clientParam(r, body, "android_uid")
	if key == "" || discordID == "" || androidUID == "" {
		clientError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	events, err := h.licenses.RegisterDevice(r.Context(), key, discordID, androidUID, middleware.GetClientIP(r))
	h.dispatcher.Dispatch(r.Context(), events)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	clientSuccess(w, "UID registered")
}

// LogUsage 사용 기록
// @Summary 사용 기록
// @Description 키 사용 행위를 기록합니다
// @Tags 클라이언트
// @Accept json
// @Produce json
// @Param key query string false "키"
// @Param action query string false "행위"
// @Success 200 {object} map[string]string "기록 성공"
// @Failure 400 {object} map[string]string "파라미터 누락"
// @Failure 503 {object} map[string]string "서버 점검 중"
// @Router /log_usage [post]
func (h *ClientKeyHandler) LogUsage(w http.ResponseWriter, r *http.Request) {
	if !h.maintenanceGate(w, r) {
		return
	}

	body, ok := decodeClientBody(r)
	if !ok {
		clientError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	key := clientParam(r, body, "key")
	action := clientParam(r, body, "action")
	if key == "" || action == "" {
		clientError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	events, err := h.licenses.LogUsage(r.Context(), key, action, middleware.GetClientIP(r))
	h.dispatcher.Dispatch(r.Context(), events)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	clientSuccess(w, "Logged")
}

// ScriptExecution 스크립트 실행 기록
// @Summary 스크립트 실행 기록
// @Description 스크립트 실행을 기록합니다
// @Tags 클라이언트
// @Accept json
// @Produce json
// @Param key query string false "키"
// @Success 200 {object} map[string]string "기록 성공"
// @Failure 400 {object} map[string]string "파라미터 누락"
// @Failure 503 {object} map[string]string "서버 점검 중"
// @Router /script_execution [post]
func (h *ClientKeyHandler) ScriptExecution(w http.ResponseWriter, r *http.Request) {
	if !h.maintenanceGate(w, r) {
		return
	}

	body, ok := decodeClientBody(r)
	if !ok {
		clientError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	key := clientParam(r, body, "key")
	if key == "" {
		clientError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	events, err := h.licenses.LogUsage(r.Context(), key, models.UsageActionScriptExecution, middleware.GetClientIP(r))
	h.dispatcher.Dispatch(r.Context(), events)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	clientSuccess(w, "Execution logged")
}
