package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"vipkeyserver/models"
	"vipkeyserver/utils"
)

// KeyStore는 키/차단/점검 레코드에 대한 저장소 계약을 정의합니다.
// 모든 작업은 레코드 단위로 원자적이며, 비즈니스 검증은 하지 않습니다.
type KeyStore interface {
	GetKey(ctx context.Context, key string) (models.Key, bool, error)
	UpsertKey(ctx context.Context, record models.Key) error
	// DeleteKey는 멱등합니다. 삭제된 행이 있었는지 여부를 반환합니다.
	DeleteKey(ctx context.Context, key string) (bool, error)
	ListKeys(ctx context.Context, status string) ([]models.Key, error)

	IsBanned(ctx context.Context, userID string) (bool, error)
	// BanUser는 차단 등록과 해당 유저의 모든 키 삭제를 하나의
	// 트랜잭션으로 수행하고, 삭제된 키 목록을 반환합니다.
	BanUser(ctx context.Context, userID string) ([]models.Key, error)

	GetMaintenance(ctx context.Context) (models.Maintenance, error)
	SetMaintenance(ctx context.Context, state models.Maintenance) error
	// ClearExpiredMaintenance는 종료 시각이 지난 점검 상태를 조건부
	// UPDATE로 해제합니다. true를 반환한 호출자만 전이를 관측한 것입니다.
	ClearExpiredMaintenance(ctx context.Context, now time.Time) (bool, error)

	// MarkKeyInactive는 status='active'인 경우에만 비활성으로 전이합니다.
	// 스윕이 레코드 단위로 사용하며, 전이가 일어났는지 여부를 반환합니다.
	MarkKeyInactive(ctx context.Context, key string) (bool, error)

	// UpdateBinding은 디바이스 UID와 소유자를 한 문장으로 덮어씁니다.
	// 키 존재 여부 판단은 호출자의 몫입니다.
	UpdateBinding(ctx context.Context, key, userID, androidUID string) error

	AppendUsageLog(ctx context.Context, entry models.UsageLog) error
	ListUsageLogs(ctx context.Context, limit int) ([]models.UsageLog, error)
}

type sqlKeyStore struct {
	db SQLExecutor
}

// NewKeyStore는 SQLExecutor 위에서 동작하는 KeyStore 구현체를 생성합니다.
func NewKeyStore(db SQLExecutor) KeyStore {
	return &sqlKeyStore{db: db}
}

func (s *sqlKeyStore) GetKey(ctx context.Context, key string) (models.Key, bool, error) {
	var record models.Key
	err := s.db.QueryRowContext(ctx, "SELECT `key`, user_id, expiration, status, registration_date, android_uid FROM keys WHERE `key` = ?", key).Scan(
		&record.Key,
		&record.UserID,
		&record.Expiration,
		&record.Status,
		&record.RegistrationDate,
		&record.AndroidUID,
	)
	if err == sql.ErrNoRows {
		return models.Key{}, false, nil
	}
	if err != nil {
		return models.Key{}, false, storeErr(err)
	}
	return record, true, nil
}

func (s *sqlKeyStore) UpsertKey(ctx context.Context, record models.Key) error {
	// SQLite/MySQL 공통으로 동작하도록 DELETE 후 INSERT를 한 트랜잭션으로 처리
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM keys WHERE `key` = ?", record.Key); err != nil {
		return storeErr(err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO keys (`key`, user_id, expiration, status, registration_date, android_uid) VALUES (?, ?, ?, ?, ?, ?)",
		record.Key, record.UserID, record.Expiration, record.Status, record.RegistrationDate, record.AndroidUID,
	)
	if err != nil {
		return storeErr(err)
	}

	return storeErr(tx.Commit())
}

func (s *sqlKeyStore) DeleteKey(ctx context.Context, key string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM keys WHERE `key` = ?", key)
	if err != nil {
		return false, storeErr(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, storeErr(err)
	}
	return rows > 0, nil
}

func (s *sqlKeyStore) ListKeys(ctx context.Context, status string) ([]models.Key, error) {
	query := "SELECT `key`, user_id, expiration, status, registration_date, android_uid FROM keys"
	args := make([]any, 0, 1)
	if strings.TrimSpace(status) != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY registration_date ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	keys := make([]models.Key, 0)
	for rows.Next() {
		var record models.Key
		if err := rows.Scan(&record.Key, &record.UserID, &record.Expiration, &record.Status, &record.RegistrationDate, &record.AndroidUID); err != nil {
			return nil, storeErr(err)
		}
		keys = append(keys, record)
	}

	return keys, storeErr(rows.Err())
}

func (s *sqlKeyStore) IsBanned(ctx context.Context, userID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM banned_users WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return false, storeErr(err)
	}
	return count > 0, nil
}

func (s *sqlKeyStore) BanUser(ctx context.Context, userID string) ([]models.Key, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr(err)
	}
	defer tx.Rollback()

	// 삭제될 키를 먼저 수집해 엔타이틀먼트 회수 이벤트 근거로 반환
	rows, err := tx.QueryContext(ctx, "SELECT `key`, user_id, expiration, status, registration_date, android_uid FROM keys WHERE user_id = ?", userID)
	if err != nil {
		return nil, storeErr(err)
	}

	deleted := make([]models.Key, 0)
	for rows.Next() {
		var record models.Key
		if err := rows.Scan(&record.Key, &record.UserID, &record.Expiration, &record.Status, &record.RegistrationDate, &record.AndroidUID); err != nil {
			rows.Close()
			return nil, storeErr(err)
		}
		deleted = append(deleted, record)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, storeErr(err)
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, "DELETE FROM keys WHERE user_id = ?", userID); err != nil {
		return nil, storeErr(err)
	}

	// 멱등 삽입 (이미 차단된 유저면 그대로 둔다)
	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM banned_users WHERE user_id = ?", userID).Scan(&count); err != nil {
		return nil, storeErr(err)
	}
	if count == 0 {
		if _, err := tx.ExecContext(ctx, "INSERT INTO banned_users (user_id) VALUES (?)", userID); err != nil {
			return nil, storeErr(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr(err)
	}
	return deleted, nil
}

func (s *sqlKeyStore) GetMaintenance(ctx context.Context) (models.Maintenance, error) {
	var (
		state  models.Maintenance
		active int
	)
	err := s.db.QueryRowContext(ctx, "SELECT active, end_time, last_updated FROM maintenance WHERE id = 1").Scan(
		&active, &state.EndTime, &state.LastUpdated,
	)
	if err != nil {
		return models.Maintenance{}, storeErr(err)
	}
	state.Active = active != 0
	return state, nil
}

func (s *sqlKeyStore) SetMaintenance(ctx context.Context, state models.Maintenance) error {
	active := 0
	if state.Active {
		active = 1
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE maintenance SET active = ?, end_time = ?, last_updated = ? WHERE id = 1",
		active, state.EndTime, state.LastUpdated,
	)
	return storeErr(err)
}

func (s *sqlKeyStore) ClearExpiredMaintenance(ctx context.Context, now time.Time) (bool, error) {
	// RFC3339 UTC 문자열은 사전순 비교가 시간순 비교와 일치한다.
	result, err := s.db.ExecContext(ctx,
		"UPDATE maintenance SET active = 0, end_time = '', last_updated = ? WHERE id = 1 AND active = 1 AND end_time <> '' AND end_time <= ?",
		utils.FormatDBTime(now), utils.FormatDBTime(now),
	)
	if err != nil {
		return false, storeErr(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, storeErr(err)
	}
	return rows > 0, nil
}

func (s *sqlKeyStore) MarkKeyInactive(ctx context.Context, key string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE keys SET status = ? WHERE `key` = ? AND status = ?",
		models.KeyStatusInactive, key, models.KeyStatusActive,
	)
	if err != nil {
		return false, storeErr(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, storeErr(err)
	}
	return rows > 0, nil
}

func (s *sqlKeyStore) UpdateBinding(ctx context.Context, key, userID, androidUID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE keys SET android_uid = ?, user_id = ? WHERE `key` = ?",
		androidUID, userID, key,
	)
	return storeErr(err)
}

func (s *sqlKeyStore) AppendUsageLog(ctx context.Context, entry models.UsageLog) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO usage_logs (`key`, user_id, action, source_ip, created_at) VALUES (?, ?, ?, ?, ?)",
		entry.Key, entry.UserID, entry.Action, entry.SourceIP, entry.CreatedAt,
	)
	return storeErr(err)
}

func (s *sqlKeyStore) ListUsageLogs(ctx context.Context, limit int) ([]models.UsageLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, `key`, user_id, action, source_ip, created_at FROM usage_logs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	logs := make([]models.UsageLog, 0)
	for rows.Next() {
		var entry models.UsageLog
		if err := rows.Scan(&entry.ID, &entry.Key, &entry.UserID, &entry.Action, &entry.SourceIP, &entry.CreatedAt); err != nil {
			return nil, storeErr(err)
		}
		logs = append(logs, entry)
	}

	return logs, storeErr(rows.Err())
}
