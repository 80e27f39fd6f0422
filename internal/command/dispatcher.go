package command

import (
	"strings"

	"newbank/internal/bank"

	"go.uber.org/zap"
)

// Observer 於每次指令執行後被呼叫，供連線層記錄 metrics。
type Observer func(v Verb, ok bool)

// Dispatcher 將一行請求轉為指令並執行。本身無狀態，可由所有連線共用。
type Dispatcher struct {
	bank     *bank.Bank
	log      *zap.Logger
	observer Observer
}

// Option 調整 Dispatcher 的選用設定。
type Option func(*Dispatcher)

// WithLogger 設定指令層使用的 logger；預設為 zap.NewNop()。
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithObserver 設定每次執行後的回呼。
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// NewDispatcher 以注入的 Bank 建立 Dispatcher。
func NewDispatcher(b *bank.Bank, opts ...Option) *Dispatcher {
	d := &Dispatcher{bank: b, log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch 切分請求行、解析 verb、執行對應指令並回傳唯一的回應。
// 無法辨識的 verb 以 UNKNOWN 指令處理，不回傳錯誤。
func (d *Dispatcher) Dispatch(sess *bank.Session, line string) Response {
	tokens := strings.Fields(line)
	verb := VerbDefault
	if len(tokens) > 0 {
		verb = ParseVerb(tokens[0])
	}

	resp := New(verb, d.bank, tokens, sess).Execute()
	resp.Verb = verb

	d.log.Debug("command executed",
		zap.Stringer("verb", verb),
		zap.Bool("ok", resp.OK),
		zap.Bool("logged_in", sess.LoggedIn()))
	if d.observer != nil {
		d.observer(verb, resp.OK)
	}
	return resp
}
