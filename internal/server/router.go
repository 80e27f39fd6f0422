// internal/server/router.go
//
// 本檔負責管理介面 (admin HTTP) 的路由註冊，與文字協定的監聽分開：
//   - GET /health   → 存活檢查，可供監控或 Docker liveness probe 使用
//   - GET /metrics  → Prometheus 指標
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AdminRouter 建立並回傳管理介面的 HTTP 處理鏈。
func (s *Server) AdminRouter() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return mux
}

// health 回傳服務狀態與目前的客戶數、連線數。
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"customers":   s.bank.Customers(),
		"connections": s.ActiveConnections(),
	})
}
