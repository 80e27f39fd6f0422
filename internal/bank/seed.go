package bank

import (
	"fmt"

	"newbank/internal/storage"

	"github.com/shopspring/decimal"
)

// Seed 由 storage.Seed 載入預設客戶與帳戶，通常於啟動時、接受連線前呼叫。
// 已存在的使用者名稱回傳 ErrAlreadyExists；帳戶名稱、數量與金額套用與線上指令相同的規則。
// 任一筆失敗時，先前已載入的客戶保留不回滾。
func (b *Bank) Seed(s storage.Seed) error {
	for _, sc := range s.Customers {
		c, err := seedCustomer(sc)
		if err != nil {
			return fmt.Errorf("seed customer %q: %w", sc.Username, err)
		}

		b.mu.Lock()
		if _, exists := b.customers[c.Username]; exists {
			b.mu.Unlock()
			return fmt.Errorf("seed customer %q: %w", sc.Username, ErrAlreadyExists)
		}
		b.customers[c.Username] = c
		b.mu.Unlock()
	}
	return nil
}

func seedCustomer(sc storage.SeedCustomer) (*Customer, error) {
	if sc.Username == "" {
		return nil, fmt.Errorf("empty username")
	}
	if len(sc.Accounts) > MaxAccounts {
		return nil, ErrTooManyAccounts
	}

	c := newCustomer(sc.Username, sc.Password)
	hasDefault := false
	for _, sa := range sc.Accounts {
		if err := ValidateAccountName(sa.Name); err != nil {
			return nil, fmt.Errorf("account %q: %w", sa.Name, err)
		}
		bal := decimal.Zero
		if sa.Balance != "" {
			var err error
			if bal, err = ParseAmount(sa.Balance); err != nil {
				return nil, fmt.Errorf("account %q balance %q: %w", sa.Name, sa.Balance, err)
			}
		}
		savings := IsSavingsName(sa.Name)
		if sa.Savings != nil {
			savings = *sa.Savings
		}
		isDefault := sa.Default && !hasDefault
		hasDefault = hasDefault || isDefault
		c.accounts = append(c.accounts, &Account{
			Name:      sa.Name,
			Balance:   bal,
			Currency:  Currency,
			IsDefault: isDefault,
			IsSavings: savings,
		})
	}
	return c, nil
}
