package services

import (
	"context"
	"database/sql"
	"errors"

	"vipkeyserver/models"
	"vipkeyserver/utils"
)

var (
	// ErrInvalidCredentials 사용자명 또는 비밀번호 불일치
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAdminNotFound 관리자 계정 없음
	ErrAdminNotFound = errors.New("admin not found")
)

// AdminService는 관리자 계정 인증과 비밀번호 변경을 정의합니다.
type AdminService interface {
	Authenticate(ctx context.Context, username, password string) (models.Admin, error)
	GetByID(ctx context.Context, adminID string) (models.Admin, error)
	ChangePassword(ctx context.Context, adminID, oldPassword, newPassword string) error
}

type adminService struct {
	db SQLExecutor
}

// NewAdminService는 AdminService 구현체를 생성합니다.
func NewAdminService(db SQLExecutor) AdminService {
	return &adminService{db: db}
}

func (s *adminService) Authenticate(ctx context.Context, username, password string) (models.Admin, error) {
	var admin models.Admin
	query := "SELECT id, username, password, role, created_at, updated_at FROM admins WHERE username = ?"
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&admin.ID, &admin.Username, &admin.Password,
		&admin.Role, &admin.CreatedAt, &admin.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Admin{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Admin{}, storeErr(err)
	}

	if !utils.CheckPassword(admin.Password, password) {
		return models.Admin{}, ErrInvalidCredentials
	}
	return admin, nil
}

func (s *adminService) GetByID(ctx context.Context, adminID string) (models.Admin, error) {
	var admin models.Admin
	query := "SELECT id, username, role, created_at, updated_at FROM admins WHERE id = ?"
	err := s.db.QueryRowContext(ctx, query, adminID).Scan(
		&admin.ID, &admin.Username, &admin.Role, &admin.CreatedAt, &admin.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Admin{}, ErrAdminNotFound
	}
	if err != nil {
		return models.Admin{}, storeErr(err)
	}
	return admin, nil
}

func (s *adminService) ChangePassword(ctx context.Context, adminID, oldPassword, newPassword string) error {
	var hashed string
	err := s.db.QueryRowContext(ctx, "SELECT password FROM admins WHERE id = ?", adminID).Scan(&hashed)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAdminNotFound
	}
	if err != nil {
		return storeErr(err)
	}

	if !utils.CheckPassword(hashed, oldPassword) {
		return ErrInvalidCredentials
	}

	newHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE admins SET password = ?, updated_at = ? WHERE id = ?",
		newHash, utils.FormatDBTime(utils.NowUTC()), adminID,
	)
	if err != nil {
		return storeErr(err)
	}
	return nil
}
