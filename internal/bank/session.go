package bank

// Session 為單一連線的認證狀態；Key 為空字串代表尚未登入。
// 由連線處理器獨占，不跨連線共用，因此不需要鎖。
type Session struct {
	key string
}

// NewSession 建立尚未登入的 session。
func NewSession() *Session {
	return &Session{}
}

// Key 回傳已登入的使用者名稱，未登入時為空字串。
func (s *Session) Key() string {
	if s == nil {
		return ""
	}
	return s.key
}

// LoggedIn 回報 session 是否已通過 LOGIN。
func (s *Session) LoggedIn() bool {
	return s.Key() != ""
}

// Login 記錄成功登入的使用者。僅應在 Bank.Authenticate 成功後呼叫。
func (s *Session) Login(username string) {
	s.key = username
}
