// internal/bank/account.go

// Package bank 定義核心領域模型與業務規則。
// 本檔定義 Account 與 Customer 結構，不含任何連線或儲存細節。
package bank

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

const (
	// Currency 為系統唯一支援的幣別，不做匯率換算。
	Currency = "GBP"

	// MaxAccounts 為每位客戶可持有的帳戶上限。
	MaxAccounts = 5
)

// Account represents a named balance held by one customer.
type Account struct {
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	IsDefault bool            `json:"is_default"`
	IsSavings bool            `json:"is_savings"`
}

// FormattedBalance 回傳兩位小數的餘額字串，例如 "1000.00"。
func (a Account) FormattedBalance() string {
	return a.Balance.StringFixed(2)
}

// IsSavingsName 判斷帳戶名稱是否屬於儲蓄帳戶（名稱含 savings，不分大小寫）。
func IsSavingsName(name string) bool {
	return strings.Contains(strings.ToLower(name), "savings")
}

// Customer 為帳戶擁有者。
// - mu：序列化同一客戶的「讀取→檢查→寫入」流程；不同客戶之間互不阻塞。
// - accounts：依建立順序排列，即為顯示順序。
type Customer struct {
	Username string
	password string

	mu       sync.Mutex
	accounts []*Account
}

func newCustomer(username, password string) *Customer {
	return &Customer{Username: username, password: password}
}

// findAccount 以不分大小寫方式尋找帳戶；同名時回傳最早建立者。
// 呼叫端必須持有 c.mu。
func (c *Customer) findAccount(name string) *Account {
	for _, a := range c.accounts {
		if strings.EqualFold(a.Name, name) {
			return a
		}
	}
	return nil
}

// defaultAccount 回傳目前的預設帳戶，無則為 nil。呼叫端必須持有 c.mu。
func (c *Customer) defaultAccount() *Account {
	for _, a := range c.accounts {
		if a.IsDefault {
			return a
		}
	}
	return nil
}

// snapshot 回傳帳戶值拷貝，避免呼叫端越權修改內部狀態。呼叫端必須持有 c.mu。
func (c *Customer) snapshot() []Account {
	out := make([]Account, len(c.accounts))
	for i, a := range c.accounts {
		out[i] = *a
	}
	return out
}
