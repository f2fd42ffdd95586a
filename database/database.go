package database

import (
	"database/sql"
	"fmt"
	"strings"

	"vipkeyserver/logger"
	"vipkeyserver/utils"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Initialize 데이터베이스 연결 및 스키마 초기화
// driver: "sqlite" 또는 "mysql"
// dsn: SQLite 파일 경로 또는 MySQL DSN
// 전역 핸들 대신 *sql.DB를 반환하며, 호출자가 서비스 계층에 주입한다.
func Initialize(driver, dsn string) (*sql.DB, error) {
	if driver == "" {
		driver = "sqlite"
	}
	if dsn == "" {
		if driver == "sqlite" {
			dsn = "./keys.db"
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driver == "sqlite" {
		// SQLite는 단일 쓰기 모델이므로 커넥션을 하나로 제한해
		// 레코드 단위 트랜잭션이 직렬화되도록 한다.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := createTables(db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err := seedMaintenanceState(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed maintenance state: %w", err)
	}

	if err := createDefaultAdmin(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create default admin: %w", err)
	}

	logger.Info("Database initialized successfully (driver: %s)", driver)
	return db, nil
}

// createTables 테이블 생성
func createTables(db *sql.DB, driver string) error {
	// SQLite와 MySQL 모두 지원하는 스키마
	tables := []string{
		// VIP 키 테이블
		`CREATE TABLE IF NOT EXISTS keys (
			` + "`key`" + ` VARCHAR(32) PRIMARY KEY,
			user_id VARCHAR(50) NOT NULL,
			expiration VARCHAR(50) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			registration_date VARCHAR(50) NOT NULL,
			android_uid VARCHAR(255) NOT NULL DEFAULT ''
		)`,

		// 차단 유저 테이블
		`CREATE TABLE IF NOT EXISTS banned_users (
			user_id VARCHAR(50) PRIMARY KEY
		)`,

		// 점검 모드 테이블 (id=1 단일 행)
		`CREATE TABLE IF NOT EXISTS maintenance (
			id INTEGER PRIMARY KEY,
			active INTEGER NOT NULL DEFAULT 0,
			end_time VARCHAR(50) NOT NULL DEFAULT '',
			last_updated VARCHAR(50) NOT NULL DEFAULT ''
		)`,

		// 사용 로그 테이블
		`CREATE TABLE IF NOT EXISTS usage_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			` + "`key`" + ` VARCHAR(32) NOT NULL,
			user_id VARCHAR(50) NOT NULL,
			action VARCHAR(100) NOT NULL,
			source_ip VARCHAR(64) NOT NULL DEFAULT '',
			created_at VARCHAR(50) NOT NULL
		)`,

		// 관리자 테이블
		`CREATE TABLE IF NOT EXISTS admins (
			id VARCHAR(50) PRIMARY KEY,
			username VARCHAR(100) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'admin',
			created_at VARCHAR(50) NOT NULL DEFAULT '',
			updated_at VARCHAR(50) NOT NULL DEFAULT ''
		)`,

		// 인덱스 생성
		`CREATE INDEX IF NOT EXISTS idx_keys_user ON keys(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_keys_status ON keys(status)`,
		`CREATE INDEX IF NOT EXISTS idx_keys_expiration ON keys(expiration)`,
		`CREATE INDEX IF NOT EXISTS idx_usage_key ON usage_logs(` + "`key`" + `)`,
		`CREATE INDEX IF NOT EXISTS idx_usage_created ON usage_logs(created_at)`,
	}

	for _, stmt := range tables {
		if driver == "mysql" {
			stmt = strings.Replace(stmt, "INTEGER PRIMARY KEY AUTOINCREMENT", "BIGINT AUTO_INCREMENT PRIMARY KEY", 1)
		}
		if _, err := db.Exec(stmt); err != nil {
			// MySQL은 CREATE INDEX IF NOT EXISTS를 지원하지 않는 버전이 있어 중복 오류는 무시
			if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "Duplicate key name") {
				continue
			}
			return fmt.Errorf("failed to execute SQL: %w", err)
		}
	}

	return nil
}

// seedMaintenanceState 점검 모드 단일 행(id=1)을 비활성 상태로 초기화
func seedMaintenanceState(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM maintenance WHERE id = 1").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err := db.Exec(
		"INSERT INTO maintenance (id, active, end_time, last_updated) VALUES (1, 0, '', ?)",
		utils.FormatDBTime(utils.NowUTC()),
	)
	return err
}

// createDefaultAdmin 기본 관리자 계정 생성
func createDefaultAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM admins").Scan(&count); err != nil {
		return err
	}

	// 이미 관리자가 있으면 스킵
	if count > 0 {
		return nil
	}

	hashedPassword, err := utils.HashPassword("admin123")
	if err != nil {
		return err
	}

	now := utils.FormatDBTime(utils.NowUTC())
	_, err = db.Exec(
		"INSERT INTO admins (id, username, password, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		"admin-001", "admin", hashedPassword, "super_admin", now, now,
	)
	if err != nil {
		return err
	}

	logger.Info("Default admin created (username: admin, password: admin123)")
	return nil
}
