package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"vipkeyserver/logger"
	"vipkeyserver/models"
	"vipkeyserver/notify"
	"vipkeyserver/services"
)

// AdminKeyHandler는 관리자 수명주기 엔드포인트를 처리한다.
type AdminKeyHandler struct {
	lifecycle  services.LifecycleService
	licenses   services.LicenseService
	dispatcher *notify.Dispatcher
}

// NewAdminKeyHandler는 관리자 키 핸들러를 생성한다.
func NewAdminKeyHandler(lifecycle services.LifecycleService, licenses services.LicenseService, dispatcher *notify.Dispatcher) *AdminKeyHandler {
	return &AdminKeyHandler{lifecycle: lifecycle, licenses: licenses, dispatcher: dispatcher}
}

// keyFromPath는 /api/admin/keys/{key}[/action] 경로에서 키를 추출한다.
func keyFromPath(path, prefix string) (key, action string) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	parts := strings.SplitN(rest, "/", 2)
	key = parts[0]
	if len(parts) == 2 {
		action = parts[1]
	}
	return key, action
}

// Issue 키 발급
// @Summary 키 발급
// @Description 사용자에게 새 VIP 키를 발급합니다
// @Tags 키 관리
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.IssueKeyRequest true "발급 정보"
// @Success 201 {object} models.APIResponse{data=models.Key} "발급 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Failure 403 {object} models.APIResponse "차단된 사용자"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/keys [post]
func (h *AdminKeyHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req models.IssueKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse("Invalid request body", err))
		return
	}

	if strings.TrimSpace(req.UserID) == "" || req.DurationDays <= 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse("user_id and positive duration_days are required", nil))
		return
	}

	record, events, err := h.lifecycle.IssueKey(r.Context(), req.UserID, req.DurationDays)
	if err != nil {
		if errors.Is(err, services.ErrUserBanned) {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(models.ErrorResponse("User is banned", nil))
			return
		}
		logger.WithFields(map[string]interface{}{"error": err.Error(), "user_id": req.UserID}).Error("Failed to issue key")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse("Failed to issue key", err))
		return
	}
	h.dispatcher.Dispatch(r.Context(), events)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(models.SuccessResponse("Key issued successfully", record))
}

// List 키 목록 조회
// @Summary 키 목록 조회
// @Description 키 목록을 조회합니다. status 파라미터로 필터링할 수 있습니다
// @Tags 키 관리
// @Produce json
// @Security BearerAuth
// @Param status query string false "상태 필터 (active/inactive)"
// @Success 200 {object} models.APIResponse{data=[]models.Key} "조회 성공"
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/keys [get]
func (h *AdminKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	keys, err := h.lifecycle.ListKeys(r.Context(), status)
	if err != nil {
		logger.WithFields(map[string]interface{}{"error": err.Error()}).Error("Failed to list keys")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse("Failed to list keys", err))
		return
	}

	json.NewEncoder(w).Encode(models.SuccessResponse("Keys retrieved", keys))
}

// Get 키 상세 조회
// @Summary 키 상세 조회
// @Description 단일 키 레코드를 조회합니다
// @Tags 키 관리
// @Produce json
// @Security BearerAuth
// @Param key path string true "키"
// @Success 200 {object} models.APIResponse{data=models.Key} "조회 성공"
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Failure 404 {object} models.APIResponse "키 없음"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/keys/{key} [get]
func (h *AdminKeyHandler) Get(w http.ResponseWriter, r *http.Request, key string) {
	record, err := h.lifecycle.GetKey(r.Context(), key)
	if err != nil {
		if errors.Is(err, services.ErrKeyNotFound) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(models.ErrorResponse("Key not found", nil))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse("Failed to get key", err))
		return
	}

	json.NewEncoder(w).Encode(models.SuccessResponse("Key retrieved", record))
}

// Extend 키 연장
// @Summary 키 연장
// @Description 현재 만료일 기준으로 키를 연장합니다
// @Tags 키 관리
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "키"
// @Param request body models.ExtendKeyRequest true "연장 일수"
// @Success 200 {object} models.APIResponse{data=models.Key} "연장 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Failure 404 {object} models.APIResponse "키 없음"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/keys/{key}/extend [post]
func (h *AdminKeyHandler) Extend(w http.ResponseWriter, r *http.Request, key string) {
	var req models.ExtendKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse("Invalid request body", err))
		return
	}
	if req.Days <= 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse("days must be positive", nil))
		return
	}

	record, events, err := h.lifecycle.ExtendKey(r.Context(), key, req.Days)
	if err != nil {
		if errors.Is(err, services.ErrKeyNotFound) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(models.ErrorResponse("Key not found", nil))
			return
		}
		logger.WithFields(map[string]interface{}{"error": err.Error(), "key": key}).Error("Failed to extend key")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse("Failed to extend key", err))
		return
	}
	h.dispatcher.Dispatch(r.Context(), events)

	json.NewEncoder(w).Encode(models.SuccessResponse("Key extended successfully", record))
}

// Revoke 키 비활성화
// @Summary 키 비활성화
// @Description 키를 inactive 상태로 전환합니다. 레코드는 유지됩니다
// @Tags 키 관리
// @Produce json
// @Security BearerAuth
// @Param key path string true "키"
// @Success 200 {object} models.APIResponse "비활성화 성공"
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Failure 404 {object} models.APIResponse "키 없음"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/keys/{key}/revoke [post]
func (h *AdminKeyHandler) Revoke(w http.ResponseWriter, r *http.Request, key string) {
	events, err := h.lifecycle.RevokeKey(r.Context(), key)
	if err != nil {
		if errors.Is(err, services.ErrKeyNotFound) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(models.ErrorResponse("Key not found", nil))
			return
		}
		logger.WithFields(map[string]interface{}{"error": err.Error(), "key": key}).Error("Failed to revoke key")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse("Failed to revoke key", err))
		return
	}
	h.dispatcher.Dispatch(r.Context(), events)

	json.NewEncoder(w).Encode(models.SuccessResponse("Key revoked successfully", nil))
}

// Delete 키 삭제
// @Summary 키 삭제
// @Description 키 레코드를 삭제합니다
// @Tags 키 관리
// @Produce json
// @Security BearerAuth
// @Param key path string true "키"
// @Success 200 {object} models.APIResponse "삭제 성공"
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Failure 404 {object} models.APIResponse "키 없음"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/keys/{key} [delete]
func (h *AdminKeyHandler) Delete(w http.ResponseWriter, r *http.Request, key string) {
	events, err := h.lifecycle.DeleteKey(r.Context(), key)
	if err != nil {
		if errors.Is(err, services.ErrKeyNotFound) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(models.ErrorResponse("Key not found", nil))
			return
		}
		logger.WithFields(map[string]interface{}{"error": err.Error(), "key": key}).Error("Failed to delete key")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse("Failed to delete key", err))
		return
	}
	h.dispatcher.Dispatch(r.Context(), events)

	json.NewEncoder(w).Encode(models.SuccessResponse("Key deleted successfully", nil))
}

// Keys는 /api/admin/keys와 하위 경로를 메서드와 경로에 따라 분기한다.
func (h *AdminKeyHandler) Keys(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/admin/keys"

	key, action := keyFromPath(r.URL.Path, prefix)
	if key == "" {
		switch r.Method {
		case http.MethodPost:
			h.Issue(w, r)
		case http.MethodGet:
			h.List(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			json.NewEncoder(w).Encode(models.ErrorResponse("Method not allowed", nil))
		}
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.Get(w, r, key)
	case action == "" && r.Method == http.MethodDelete:
		h.Delete(w, r, key)
	case action == "extend" && r.Method == http.MethodPost:
		h.Extend(w, r, key)
	case action == "revoke" && r.Method == http.MethodPost:
		h.Revoke(w, r, key)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(models.ErrorResponse("Method not allowed", nil))
	}
}

// Ban 사용자 차단
// @Summary 사용자 차단
// @Description 사용자를 차단하고 보유한 모든 키를 삭제합니다
// @Tags 키 관리
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.BanRequest true "차단 대상"
// @Success 200 {object} models.APIResponse "차단 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/bans [post]
func (h *AdminKeyHandler) Ban(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(models.ErrorResponse("Method not allowed", nil))
		return
	}

	var req models.BanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse("Invalid request body", err))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse("user_id is required", nil))
		return
	}

	events, err := h.lifecycle.BanUser(r.Context(), req.UserID)
	if err != nil {
		logger.WithFields(map[string]interface{}{"error": err.Error(), "user_id": req.UserID}).Error("Failed to ban user")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse("Failed to ban user", err))
		return
	}
	h.dispatcher.Dispatch(r.Context(), events)

	json.NewEncoder(w).Encode(models.SuccessResponse("User banned successfully", nil))
}

// Maintenance 점검 상태 조회/변경
// @Summary 점검 모드 관리
// @Description GET은 현재 점검 상태를, POST는 enable/disable/add_time 동작을 수행합니다
// @Tags 점검
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SetMaintenanceRequest false "점검 동작"
// @Success 200 {object} models.APIResponse{data=models.Maintenance} "성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Failure 409 {object} models.APIResponse "점검 중이 아니거나 이미 만료됨"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/maintenance [post]
func (h *AdminKeyHandler) Maintenance(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		state, events, err := h.licenses.CheckMaintenance(r.Context())
		h.dispatcher.Dispatch(r.Context(), events)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(models.ErrorResponse("Failed to get maintenance state", err))
			return
		}
		json.NewEncoder(w).Encode(models.SuccessResponse("Maintenance state retrieved", state))

	case http.MethodPost:
		var req models.SetMaintenanceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(models.ErrorResponse("Invalid request body", err))
			return
		}

		state, events, err := h.lifecycle.SetMaintenance(r.Context(), req.Action, req.Hours)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidMaintenanceAction):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(models.ErrorResponse("Unknown maintenance action", nil))
			case errors.Is(err, services.ErrDurationRequired):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(models.ErrorResponse("hours must be positive", nil))
			case errors.Is(err, services.ErrMaintenanceNotActive):
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(models.ErrorResponse("Maintenance mode is not active", nil))
			case errors.Is(err, services.ErrMaintenanceExpired):
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(models.ErrorResponse("Maintenance window already expired", nil))
			default:
				logger.WithFields(map[string]interface{}{"error": err.Error(), "action": req.Action}).Error("Failed to set maintenance state")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(models.ErrorResponse("Failed to set maintenance state", err))
			}
			return
		}
		h.dispatcher.Dispatch(r.Context(), events)

		json.NewEncoder(w).Encode(models.SuccessResponse("Maintenance state updated", state))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(models.ErrorResponse("Method not allowed", nil))
	}
}

// UsageLogs 사용 로그 조회
// @Summary 사용 로그 조회
// @Description 최근 사용 로그를 조회합니다
// @Tags 키 관리
// @Produce json
// @Security BearerAuth
// @Param limit query int false "최대 건수 (기본 100, 최대 1000)"
// @Success 200 {object} models.APIResponse{data=[]models.UsageLog} "조회 성공"
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/usage-logs [get]
func (h *AdminKeyHandler) UsageLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(models.ErrorResponse("Invalid limit", nil))
			return
		}
		limit = parsed
	}

	logs, err := h.lifecycle.ListUsageLogs(r.Context(), limit)
	if err != nil {
		logger.WithFields(map[string]interface{}{"error": err.Error()}).Error("Failed to list usage logs")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse("Failed to list usage logs", err))
		return
	}

	json.NewEncoder(w).Encode(models.SuccessResponse("Usage logs retrieved", logs))
}
