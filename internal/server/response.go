// internal/server/response.go
//
// 管理介面 (admin HTTP) 的統一回應格式。
package server

import (
	"encoding/json"
	"net/http"
)

// writeJSON 統一輸出成功回應。
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
