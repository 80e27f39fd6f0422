// cmd/server/main.go

// 本服務提供逐行文字協定的銀行伺服器：註冊、登入、開戶、存款與查詢帳戶餘額。
// 此檔案負責載入設定、初始化模組（config, storage, bank, server），
// 啟動文字協定監聽與管理介面 (/health, /metrics)，並於收到 SIGINT/SIGTERM 時優雅結束。
// 資料僅存在於行程記憶體中，重啟後回到種子資料。

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newbank/internal/bank"
	"newbank/internal/config"
	"newbank/internal/server"
	"newbank/internal/storage"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	port := flag.Int("port", 0, fmt.Sprintf("listening port (default %d)", config.DefaultPort))
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	os.Exit(exitCode(logger, run(cfg, logger)))
}

// exitCode 記錄結束原因並在結束行程前清空 logger 緩衝。
func exitCode(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

func run(cfg config.Config, logger *zap.Logger) error {
	// 初始化銀行核心模組並載入種子客戶
	b := bank.NewBank()
	seed, err := storage.LoadSeed(cfg.Seed.File)
	if err != nil {
		return err
	}
	if err := b.Seed(seed); err != nil {
		return err
	}
	logger.Info("customers seeded", zap.Int("customers", b.Customers()), zap.String("seed_file", cfg.Seed.File))

	s := server.NewServer(b,
		server.WithLogger(logger.Named("server")),
		server.WithMaxLineBytes(cfg.Server.MaxLineBytes),
		server.WithEcho(cfg.Server.EchoRequests))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddr(), err)
	}

	var admin *http.Server
	if cfg.Admin.Addr != "" {
		admin = &http.Server{
			Addr:              cfg.Admin.Addr,
			Handler:           s.AdminRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("admin listening", zap.String("addr", cfg.Admin.Addr))
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("admin server failed", zap.Error(err))
			}
		}()
	}

	serveErr := s.Serve(ctx, ln)

	// 收到結束訊號後，關閉所有連線並等待處理中的請求完成
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if admin != nil {
		_ = admin.Shutdown(shutdownCtx)
	}
	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}

	if errors.Is(serveErr, context.Canceled) || errors.Is(serveErr, server.ErrServerClosed) {
		logger.Info("server stopped")
		return nil
	}
	return serveErr
}

// newLogger 依設定建立 zap logger：預設為 production JSON，development 時為彩色主控台輸出。
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
