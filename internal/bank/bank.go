// internal/bank/bank.go

// Package bank 定義核心商業邏輯：客戶註冊、登入驗證、開戶、存款與帳戶查詢。
// 鎖的粒度分兩層：
//   - Bank.mu 只保護「使用者名稱 → 客戶」索引表，註冊時以寫鎖完成「檢查存在→插入」。
//   - Customer.mu 保護單一客戶的帳戶清單，開戶與存款於同一臨界區內完成「讀取→檢查→寫入」。
//
// 因此不同客戶的操作彼此獨立，不會互相阻塞。
// 金額以 decimal.Decimal 保存並四捨五入至兩位小數，避免浮點誤差。
package bank

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Bank 為聚合根 (Aggregate Root)：整個行程唯一的客戶登錄表。
// 以建構子注入到 command 層，而非全域單例，測試可各自建立獨立實例。
type Bank struct {
	mu        sync.RWMutex
	customers map[string]*Customer
}

// NewBank 建立空白銀行實例（僅就緒的 in-memory 狀態，無外部依賴）。
func NewBank() *Bank {
	return &Bank{customers: make(map[string]*Customer)}
}

// customer 依使用者名稱取得客戶指標；名稱比對區分大小寫。
func (b *Bank) customer(username string) (*Customer, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.customers[username]
	return c, ok
}

// lookup 將 session 轉為客戶；未登入或客戶不存在皆回傳 ErrNotLoggedIn。
func (b *Bank) lookup(sess *Session) (*Customer, error) {
	if !sess.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	c, ok := b.customer(sess.Key())
	if !ok {
		return nil, ErrNotLoggedIn
	}
	return c, nil
}

// Register 建立沒有任何帳戶的新客戶。
// 「檢查存在→插入」於同一把寫鎖內完成，兩個同名的並發註冊只會有一個成功。
func (b *Bank) Register(username, password string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.customers[username]; exists {
		return ErrAlreadyExists
	}
	b.customers[username] = newCustomer(username, password)
	return nil
}

// Authenticate 比對帳號密碼，成功時回傳使用者名稱。
// 本函式不修改 session；由呼叫端（LOGIN 指令）記錄登入結果。
func (b *Bank) Authenticate(username, password string) (string, error) {
	c, ok := b.customer(username)
	if !ok || c.password != password {
		return "", ErrInvalidCredentials
	}
	return c.Username, nil
}

// NewAccount 為已登入客戶開立帳戶。檢查順序：
//  1. session 必須已登入。
//  2. 帳戶數已達 MaxAccounts 時一律拒絕，不論名稱是否合法。
//  3. 名稱長度與字元檢查。
//  4. 未指定 DEFAULT 且這是第一個非儲蓄帳戶時，自動設為預設帳戶。
//  5. 明確指定 DEFAULT 時，原預設帳戶被降級，維持「至多一個預設帳戶」。
//
// 全程持有客戶鎖，任何一個失敗路徑都會由 defer 釋放。
func (b *Bank) NewAccount(sess *Session, name string, isDefault bool) error {
	c, err := b.lookup(sess)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.accounts) >= MaxAccounts {
		return ErrTooManyAccounts
	}
	if err := ValidateAccountName(name); err != nil {
		return err
	}

	savings := IsSavingsName(name)
	prev := c.defaultAccount()
	if !isDefault && !savings && prev == nil {
		isDefault = true
	}
	if isDefault && prev != nil {
		prev.IsDefault = false
	}

	c.accounts = append(c.accounts, &Account{
		Name:      name,
		Balance:   decimal.Zero,
		Currency:  Currency,
		IsDefault: isDefault,
		IsSavings: savings,
	})
	return nil
}

// 金額上限：整數部分最多 15 位、小數部分最多 64 位。
// 指數表示法（如 1e999999999）在 Round 時會展開成巨大整數，必須在此之前擋下。
const (
	maxAmountIntDigits = 15
	maxAmountScale     = 64
)

// ParseAmount 將文字金額解析為非負、兩位小數的 decimal。
// 無法解析、為負數或超出位數上限時回傳 ErrInvalidAmount。
func ParseAmount(text string) (decimal.Decimal, error) {
	amt, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil || amt.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	exp := int64(amt.Exponent())
	if exp < -maxAmountScale {
		return decimal.Zero, ErrInvalidAmount
	}
	if int64(amt.NumDigits())+exp > maxAmountIntDigits {
		return decimal.Zero, ErrInvalidAmount
	}
	return amt.Round(2), nil
}

// Deposit 存款至指定帳戶，回傳存款後的帳戶快照與實際入帳金額。
// 金額先於取鎖前驗證；帳戶查找與加總在客戶鎖內完成。
func (b *Bank) Deposit(sess *Session, accountName, amountText string) (Account, decimal.Decimal, error) {
	c, err := b.lookup(sess)
	if err != nil {
		return Account{}, decimal.Zero, err
	}
	amt, err := ParseAmount(amountText)
	if err != nil {
		return Account{}, decimal.Zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	a := c.findAccount(accountName)
	if a == nil {
		return Account{}, decimal.Zero, ErrAccountNotFound
	}
	a.Balance = a.Balance.Add(amt).Round(2)
	return *a, amt, nil
}

// Accounts 依建立順序回傳客戶帳戶的值拷貝。
func (b *Bank) Accounts(sess *Session) ([]Account, error) {
	c, err := b.lookup(sess)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot(), nil
}

// HasDefaultAccount 回報客戶是否已有預設帳戶；未登入時為 false。
func (b *Bank) HasDefaultAccount(sess *Session) bool {
	c, err := b.lookup(sess)
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.defaultAccount() != nil
}

// Customers 回傳目前登錄的客戶數。
func (b *Bank) Customers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.customers)
}
