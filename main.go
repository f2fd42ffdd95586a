package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vipkeyserver/config"
	"vipkeyserver/database"
	_ "vipkeyserver/docs" // Swagger 문서
	"vipkeyserver/handlers"
	"vipkeyserver/logger"
	"vipkeyserver/middleware"
	"vipkeyserver/notify"
	"vipkeyserver/scheduler"
	"vipkeyserver/services"
	"vipkeyserver/utils"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title VIP Key Server API
// @version 1.0
// @description VIP 키 발급, 기기 바인딩, 점검 모드를 제공하는 라이선스 서버

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT 토큰을 입력하세요. 형식: Bearer {token}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	// 로거 초기화
	logConfig := logger.Config{
		Level:    logger.ParseLevel(cfg.LogLevel),
		LogDir:   cfg.LogDir,
		MaxAge:   7,
		UseColor: true,
		Prefix:   "",
	}
	if err := logger.Initialize(logConfig); err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}

	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Info("🔑 VIP Key Server Starting")
	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	utils.SetJWTSecret(cfg.JWTSecret)

	// 데이터베이스 초기화
	db, err := database.Initialize(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// 서비스 계층 초기화
	sqlExecutor := services.NewSQLExecutor(db)
	keyStore := services.NewKeyStore(sqlExecutor)
	licenseService := services.NewLicenseService(keyStore)
	lifecycleService := services.NewLifecycleService(keyStore)
	adminService := services.NewAdminService(sqlExecutor)

	// 이벤트 디스패처 (로그 채널 + 선택적 웹훅)
	notifiers := []notify.Notifier{notify.NewLogNotifier()}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.WebhookURL))
		logger.Info("Webhook notifications enabled")
	}
	dispatcher := notify.NewDispatcher(notifiers...)

	// 핸들러 초기화
	clientHandler := handlers.NewClientKeyHandler(licenseService, dispatcher)
	adminKeyHandler := handlers.NewAdminKeyHandler(lifecycleService, licenseService, dispatcher)
	authHandler := handlers.NewAuthHandler(adminService)

	// 스케줄러 시작 (만료 키 자동 정리)
	sweeper := scheduler.NewScheduler(lifecycleService, dispatcher, cfg.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	// 라우터 설정
	mux := http.NewServeMux()

	// Swagger 문서
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Public 엔드포인트
	mux.HandleFunc("/health", healthHandler)

	// 클라이언트 API (인증 불필요)
	mux.HandleFunc("/check_maintenance",
		middleware.ChainMiddleware(
			clientHandler.CheckMaintenance,
			middleware.LoggingMiddleware,
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		))

	mux.HandleFunc("/check_key",
		middleware.ChainMiddleware(
			clientHandler.CheckKey,
			middleware.LoggingMiddleware,
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		))

	mux.HandleFunc("/check_uid",
		middleware.ChainMiddleware(
			clientHandler.CheckUID,
			middleware.LoggingMiddleware,
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		))

	mux.HandleFunc("/register_uid",
		middleware.ChainMiddleware(
			clientHandler.RegisterUID,
			middleware.LoggingMiddleware,
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		))

	mux.HandleFunc("/log_usage",
		middleware.ChainMiddleware(
			clientHandler.LogUsage,
			middleware.LoggingMiddleware,
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		))

	mux.HandleFunc("/script_execution",
		middleware.ChainMiddleware(
			clientHandler.ScriptExecution,
			middleware.LoggingMiddleware,
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		))

	// 인증 API (관리자)
	mux.HandleFunc("/api/admin/login",
		middleware.ChainMiddleware(
			authHandler.Login,
			middleware.LoggingMiddleware,
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		))

	mux.HandleFunc("/api/admin/me",
		middleware.ChainMiddleware(
			authHandler.GetMe,
			middleware.LoggingMiddleware,
			middleware.AuthMiddleware,
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		))

	mux.HandleFunc("/api/admin/change-password",
		middleware.ChainMiddleware(
			authHandler.ChangePassword,
			middleware.LoggingMiddleware,
			middleware.AuthMiddleware,
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		))

	// 키 관리 API (인증 필요)
	mux.HandleFunc("/api/admin/keys",
		middleware.ChainMiddleware(
			adminKeyHandler.Keys,
			middleware.LoggingMiddleware,
			middleware.AuthMiddleware,
			middleware.RequireRoles("super_admin", "admin"),
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		))

	mux.HandleFunc("/api/admin/keys/",
		middleware.ChainMiddleware(
			adminKeyHandler.Keys,
			middleware.LoggingMiddleware,
			middleware.AuthMiddleware,
			middleware.RequireRoles("super_admin", "admin"),
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		))

	// 사용자 차단 API (인증 필요)
	mux.HandleFunc("/api/admin/bans",
		middleware.ChainMiddleware(
			adminKeyHandler.Ban,
			middleware.LoggingMiddleware,
			middleware.AuthMiddleware,
			middleware.RequireRoles("super_admin", "admin"),
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		))

	// 점검 모드 API (인증 필요)
	mux.HandleFunc("/api/admin/maintenance",
		middleware.ChainMiddleware(
			adminKeyHandler.Maintenance,
			middleware.LoggingMiddleware,
			middleware.AuthMiddleware,
			middleware.RequireRoles("super_admin", "admin"),
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		))

	// 사용 로그 조회 API (인증 필요)
	mux.HandleFunc("/api/admin/usage-logs",
		middleware.ChainMiddleware(
			adminKeyHandler.UsageLogs,
			middleware.LoggingMiddleware,
			middleware.AuthMiddleware,
			middleware.RequireRoles("super_admin", "admin"),
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		))

	// 서버 설정
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown 설정
	shutdownDone := make(chan struct{})
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Warn("Received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error: %v", err)
		}
		close(shutdownDone)
	}()

	logger.Info("Server listening on http://localhost:%s", cfg.Port)
	logger.Info("Swagger UI: http://localhost:%s/swagger/index.html", cfg.Port)
	logger.Info("Database: %s - %s", cfg.DBDriver, cfg.DBDSN)
	logger.Info("Sweep interval: %s", cfg.SweepInterval)
	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Server failed to start: %v", err)
	}
	<-shutdownDone
}

// healthHandler 헬스체크 핸들러
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"success","message":"Server is healthy"}`))
}
