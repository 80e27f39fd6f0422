// internal/server/server.go
//
// Package server
// ─────────────────────────────────────────────
// 提供文字協定的傳輸層，作為 command 模組的外殼。
// 每條連線由獨立的 goroutine 處理：
//  1. 逐行讀取請求（以換行分隔，去除結尾 \r）
//  2. 交給 command.Dispatcher 執行，取得唯一一個回應
//  3. 寫回回應並補上換行
//  4. QUIT 或讀到 EOF 時結束該連線
//
// Session 屬於連線本身，不跨連線共用；所有連線共用同一個 bank.Bank。
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"newbank/internal/bank"
	"newbank/internal/command"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrServerClosed 由 Serve 在 Shutdown 之後回傳。
var ErrServerClosed = errors.New("server: closed")

// msgRequestTooLong 為超過單行上限時、關閉連線前的最後一個回應。
const msgRequestTooLong = "FAIL: Request too long."

// Server 為文字協定伺服器。
type Server struct {
	bank       *bank.Bank
	dispatcher *command.Dispatcher
	log        *zap.Logger
	metrics    *Metrics

	maxLineBytes int
	echo         bool

	mu        sync.Mutex
	closed    bool
	listeners map[net.Listener]struct{}
	conns     map[net.Conn]struct{}
	wg        sync.WaitGroup
}

// Option 調整 Server 的選用設定。
type Option func(*Server)

// WithLogger 設定 logger；預設為 zap.NewNop()。
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMaxLineBytes 設定單行請求的最大位元組數，超過時回應失敗並關閉該連線。
func WithMaxLineBytes(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLineBytes = n
		}
	}
}

// WithEcho 開啟後，每個請求先回寫一行 "Received request [<line>]"。
func WithEcho(on bool) Option {
	return func(s *Server) { s.echo = on }
}

// NewServer 建立伺服器並注入共用的 Bank。
func NewServer(b *bank.Bank, opts ...Option) *Server {
	s := &Server{
		bank:         b,
		log:          zap.NewNop(),
		maxLineBytes: 4096,
		listeners:    make(map[net.Listener]struct{}),
		conns:        make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = newMetrics(b)
	s.dispatcher = command.NewDispatcher(b,
		command.WithLogger(s.log.Named("command")),
		command.WithObserver(s.metrics.observe))
	return s
}

// Metrics 回傳伺服器的指標集合。
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ActiveConnections 回傳目前開啟中的連線數。
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Serve 持續接受連線直到 ctx 取消、listener 關閉或 Shutdown 被呼叫。
// 每條連線在獨立 goroutine 中處理。Serve 結束時 listener 已關閉。
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !s.trackListener(ln, true) {
		return ErrServerClosed
	}
	defer s.trackListener(ln, false)

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	s.log.Info("listening", zap.String("addr", ln.Addr().String()))
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("accept: %w", err)
		}
		if !s.trackConn(conn, true) {
			_ = conn.Close()
			return ErrServerClosed
		}
		go func() {
			defer s.trackConn(conn, false)
			s.handle(conn)
		}()
	}
}

// ServeConn 在呼叫端的 goroutine 處理單一連線，直到 QUIT、EOF 或 I/O 錯誤。
func (s *Server) ServeConn(conn net.Conn) {
	if !s.trackConn(conn, true) {
		_ = conn.Close()
		return
	}
	defer s.trackConn(conn, false)
	s.handle(conn)
}

// handle 為單一連線的請求迴圈。連線內請求依到達順序逐一處理。
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	log := s.log.With(
		zap.String("conn_id", uuid.NewString()),
		zap.String("remote", remoteAddr(conn)))
	log.Info("connection opened")

	s.metrics.accepted.Inc()
	s.metrics.connections.Inc()
	defer s.metrics.connections.Dec()

	sess := bank.NewSession()
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, min(1024, s.maxLineBytes)), s.maxLineBytes)
	w := bufio.NewWriter(conn)

	for sc.Scan() {
		line := sc.Text()
		if s.echo {
			if _, err := fmt.Fprintf(w, "Received request [%s]\n", line); err != nil {
				log.Warn("write failed", zap.Error(err))
				return
			}
		}

		resp := s.dispatcher.Dispatch(sess, line)
		if _, err := w.WriteString(resp.Text + "\n"); err != nil {
			log.Warn("write failed", zap.Error(err))
			return
		}
		if err := w.Flush(); err != nil {
			log.Warn("write failed", zap.Error(err))
			return
		}
		if resp.Close {
			log.Info("connection closed by client", zap.String("user", sess.Key()))
			return
		}
	}
	if err := sc.Err(); err != nil && !s.isClosed() {
		if errors.Is(err, bufio.ErrTooLong) {
			log.Warn("request too long", zap.Int("max_line_bytes", s.maxLineBytes))
			_, _ = w.WriteString(msgRequestTooLong + "\n")
			_ = w.Flush()
			return
		}
		log.Warn("read failed", zap.Error(err))
		return
	}
	log.Info("connection ended", zap.String("user", sess.Key()))
}

// Shutdown 關閉所有 listener 與連線，並等待連線 goroutine 結束或 ctx 到期。
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for ln := range s.listeners {
		_ = ln.Close()
	}
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) trackListener(ln net.Listener, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		if s.closed {
			return false
		}
		s.listeners[ln] = struct{}{}
		return true
	}
	delete(s.listeners, ln)
	return true
}

// trackConn 登記或移除連線；登記成功的連線計入 wg，Shutdown 會等待其結束。
func (s *Server) trackConn(c net.Conn, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		if s.closed {
			return false
		}
		s.conns[c] = struct{}{}
		s.wg.Add(1)
		return true
	}
	delete(s.conns, c)
	s.wg.Done()
	return true
}

func remoteAddr(c net.Conn) string {
	if a := c.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}
