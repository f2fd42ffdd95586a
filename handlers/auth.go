package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"vipkeyserver/logger"
	"vipkeyserver/models"
	"vipkeyserver/services"
	"vipkeyserver/utils"
)

// AuthHandler는 관리자 인증 요청을 처리한다.
type AuthHandler struct {
	admins services.AdminService
}

// NewAuthHandler는 인증 핸들러를 생성한다.
func NewAuthHandler(admins services.AdminService) *AuthHandler {
	return &AuthHandler{admins: admins}
}

// Login 관리자 로그인
// @Summary 관리자 로그인
// @Description 관리자 계정으로 로그인하여 JWT 토큰을 발급받습니다
// @Tags 인증
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "로그인 정보"
// @Success 200 {object} models.APIResponse{data=models.LoginResponse} "로그인 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 401 {object} models.APIResponse "인증 실패"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := r.Context().Value("request_id")

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Invalid login request body")

		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse("Invalid request body", err))
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"username":   req.Username,
	}).Info("Login attempt")

	admin, err := h.admins.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			logger.WithFields(map[string]interface{}{
				"request_id": requestID,
				"username":   req.Username,
			}).Warn("Login failed")

			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.ErrorResponse("Invalid credentials", nil))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse("Failed to authenticate", err))
		return
	}

	token, expiresAt, err := utils.GenerateToken(admin.ID, admin.Username, admin.Role)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"admin_id":   admin.ID,
			"error":      err.Error(),
		}).Error("Failed to generate JWT token")

		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse("Failed to generate token", err))
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"admin_id":   admin.ID,
		"username":   admin.Username,
	}).Info("Login successful")

	response := models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Admin:     &admin,
	}
	json.NewEncoder(w).Encode(models.SuccessResponse("Login successful", response))
}

// GetMe 현재 로그인된 관리자 정보
// @Summary 현재 사용자 정보 조회
// @Description 로그인된 관리자의 정보를 조회합니다
// @Tags 인증
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.Admin} "조회 성공"
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Failure 404 {object} models.APIResponse "사용자 없음"
// @Router /api/admin/me [get]
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	adminID, _ := r.Context().Value("admin_id").(string)

	admin, err := h.admins.GetByID(r.Context(), adminID)
	if err != nil {
		if errors.Is(err, services.ErrAdminNotFound) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(models.ErrorResponse("Admin not found", nil))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse("Failed to load admin", err))
		return
	}

	json.NewEncoder(w).Encode(models.SuccessResponse("Admin retrieved", admin))
}

// ChangePassword 관리자 비밀번호 변경
// @Summary 비밀번호 변경
// @Description 현재 비밀번호를 확인하고 새로운 비밀번호로 변경합니다
// @Tags 인증
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ChangePasswordRequest true "비밀번호 변경 요청"
// @Success 200 {object} models.APIResponse "변경 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 401 {object} models.APIResponse "인증 필요/현재 비밀번호 불일치"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/admin/change-password [post]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	requestID := r.Context().Value("request_id")
	adminID, _ := r.Context().Value("admin_id").(string)

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse("Invalid request body", err))
		return
	}

	if len(req.NewPassword) < 8 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse("New password must be at least 8 characters", nil))
		return
	}

	err := h.admins.ChangePassword(r.Context(), adminID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			logger.WithFields(map[string]interface{}{
				"request_id": requestID,
				"admin_id":   adminID,
			}).Warn("Password change failed - wrong current password")

			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.ErrorResponse("Current password is incorrect", nil))
		case errors.Is(err, services.ErrAdminNotFound):
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.ErrorResponse("Admin not found", nil))
		default:
			logger.WithFields(map[string]interface{}{
				"request_id": requestID,
				"admin_id":   adminID,
				"error":      err.Error(),
			}).Error("Failed to change password")

			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(models.ErrorResponse("Failed to update password", err))
		}
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"admin_id":   adminID,
	}).Info("Admin password changed successfully")

	json.NewEncoder(w).Encode(models.SuccessResponse("Password changed successfully", nil))
}
