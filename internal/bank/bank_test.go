// internal/bank/bank_test.go
//
// 本檔為 Bank 模組的單元測試。
// 覆蓋註冊、登入、開戶規則（名稱、上限、預設帳戶）、存款與並發安全。
// 所有測試皆為 in-memory 執行，每個測試各自建立 Bank，不共用行程狀態。

package bank

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"newbank/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loggedIn 註冊並登入一位客戶，回傳其 session。
func loggedIn(t *testing.T, b *Bank, user string) *Session {
	t.Helper()
	require.NoError(t, b.Register(user, "pw-"+user))
	name, err := b.Authenticate(user, "pw-"+user)
	require.NoError(t, err)
	s := NewSession()
	s.Login(name)
	return s
}

func accounts(t *testing.T, b *Bank, s *Session) []Account {
	t.Helper()
	out, err := b.Accounts(s)
	require.NoError(t, err)
	return out
}

func TestRegisterAndAuthenticate(t *testing.T) {
	b := NewBank()
	require.NoError(t, b.Register("John", "john"))
	assert.ErrorIs(t, b.Register("John", "other"), ErrAlreadyExists)

	name, err := b.Authenticate("John", "john")
	require.NoError(t, err)
	assert.Equal(t, "John", name)

	_, err = b.Authenticate("John", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = b.Authenticate("Nobody", "john")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// 使用者名稱區分大小寫
	_, err = b.Authenticate("john", "john")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, b.Customers())
}

// TestGatedOperationsRequireLogin 未登入的 session 對任何受限操作都回傳 ErrNotLoggedIn，且不改變狀態。
func TestGatedOperationsRequireLogin(t *testing.T) {
	b := NewBank()
	require.NoError(t, b.Register("John", "john"))
	anon := NewSession()

	assert.ErrorIs(t, b.NewAccount(anon, "Main", false), ErrNotLoggedIn)
	_, _, err := b.Deposit(anon, "Main", "10")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = b.Accounts(anon)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.False(t, b.HasDefaultAccount(anon))

	// 指向不存在客戶的 session 同樣被擋下
	ghost := NewSession()
	ghost.Login("ghost")
	assert.ErrorIs(t, b.NewAccount(ghost, "Main", false), ErrNotLoggedIn)

	john := NewSession()
	john.Login("John")
	assert.Empty(t, accounts(t, b, john))
}

func TestValidateAccountName(t *testing.T) {
	cases := []struct {
		name string
		want error
	}{
		{"abcd", nil},
		{"abcdefghijkl", nil},
		{"AccountB", nil},
		{"abc", ErrInvalidNameLength},
		{"", ErrInvalidNameLength},
		{"abcdefghijklm", ErrInvalidNameLength},
		{"abcdefghijklmnopqr", ErrInvalidNameLength},
		{"123456", ErrInvalidNameLetters},
		{"acc ount", ErrInvalidNameLetters},
		{"abc_d", ErrInvalidNameLetters},
		{"ñandú", ErrInvalidNameLetters},
		{"ab1", ErrInvalidNameLength},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAccountName(tc.name)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, ErrInvalidName)
		})
	}
}

// TestNewAccountLimit 第 6 個帳戶一律回傳 ErrTooManyAccounts，不論名稱是否合法。
func TestNewAccountLimit(t *testing.T) {
	b := NewBank()
	s := loggedIn(t, b, "John")

	for _, n := range []string{"accountB", "accountC", "accountD", "accountE", "accountF"} {
		require.NoError(t, b.NewAccount(s, n, false))
	}
	assert.ErrorIs(t, b.NewAccount(s, "accountG", false), ErrTooManyAccounts)
	assert.ErrorIs(t, b.NewAccount(s, "abc", false), ErrTooManyAccounts)
	assert.ErrorIs(t, b.NewAccount(s, "123456", true), ErrTooManyAccounts)
	assert.Len(t, accounts(t, b, s), MaxAccounts)
}

func TestNewAccountInvalidNameLeavesStateUnchanged(t *testing.T) {
	b := NewBank()
	s := loggedIn(t, b, "John")

	assert.ErrorIs(t, b.NewAccount(s, "abc", false), ErrInvalidNameLength)
	assert.ErrorIs(t, b.NewAccount(s, "123456", false), ErrInvalidNameLetters)
	assert.Empty(t, accounts(t, b, s))
	assert.False(t, b.HasDefaultAccount(s))
}

// TestDefaultAccountPromotion 第一個非儲蓄帳戶自動成為預設帳戶。
func TestDefaultAccountPromotion(t *testing.T) {
	b := NewBank()
	s := loggedIn(t, b, "John")

	require.NoError(t, b.NewAccount(s, "Savings", false))
	assert.False(t, b.HasDefaultAccount(s), "savings account must not be promoted")

	require.NoError(t, b.NewAccount(s, "accountB", false))
	require.NoError(t, b.NewAccount(s, "accountC", false))

	got := accounts(t, b, s)
	require.Len(t, got, 3)
	assert.True(t, got[0].IsSavings)
	assert.False(t, got[0].IsDefault)
	assert.True(t, got[1].IsDefault)
	assert.False(t, got[2].IsDefault)
	assert.True(t, b.HasDefaultAccount(s))
}

// TestExplicitDefaultDemotesPrevious 明確指定 DEFAULT 時，原預設帳戶被降級。
func TestExplicitDefaultDemotesPrevious(t *testing.T) {
	b := NewBank()
	s := loggedIn(t, b, "John")

	require.NoError(t, b.NewAccount(s, "Main", false))
	require.NoError(t, b.NewAccount(s, "Travel", true))
	require.NoError(t, b.NewAccount(s, "RainySavings", true))

	defaults := 0
	for _, a := range accounts(t, b, s) {
		if a.IsDefault {
			defaults++
			assert.Equal(t, "RainySavings", a.Name)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestDeposit(t *testing.T) {
	b := NewBank()
	s := loggedIn(t, b, "John")
	require.NoError(t, b.NewAccount(s, "Savings", false))

	a, amt, err := b.Deposit(s, "Savings", "1000.0")
	require.NoError(t, err)
	assert.Equal(t, "1000.00", amt.StringFixed(2))
	assert.Equal(t, "1000.00", a.FormattedBalance())

	a, _, err = b.Deposit(s, "savings", "250.005")
	require.NoError(t, err)
	assert.Equal(t, "1250.01", a.FormattedBalance())

	_, _, err = b.Deposit(s, "Savings", "0")
	require.NoError(t, err, "zero is a non-negative amount")
}

func TestDepositRejections(t *testing.T) {
	b := NewBank()
	s := loggedIn(t, b, "John")
	require.NoError(t, b.NewAccount(s, "Savings", false))

	for _, amt := range []string{
		"-500.0", "-0.01", "abc", "", "1e", "NaN", "12,50",
		"1e999999999", "1e16", "1000000000000000", "1e-999999999", "0e999999999",
	} {
		_, _, err := b.Deposit(s, "Savings", amt)
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %q", amt)
	}
	_, _, err := b.Deposit(s, "Missing", "10")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	assert.True(t, accounts(t, b, s)[0].Balance.IsZero())
}

func TestParseAmountBounds(t *testing.T) {
	amt, err := ParseAmount("999999999999999.994")
	require.NoError(t, err)
	assert.Equal(t, "999999999999999.99", amt.StringFixed(2))

	amt, err = ParseAmount("1.5e3")
	require.NoError(t, err)
	assert.Equal(t, "1500.00", amt.StringFixed(2))

	amt, err = ParseAmount("0")
	require.NoError(t, err)
	assert.True(t, amt.IsZero())

	_, err = ParseAmount("1e15")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

// TestDepositSum N 次成功存款後的餘額等於各金額（四捨五入至兩位）之和。
func TestDepositSum(t *testing.T) {
	b := NewBank()
	s := loggedIn(t, b, "John")
	require.NoError(t, b.NewAccount(s, "Main", false))

	want := decimal.Zero
	for _, amt := range []string{"0.10", "0.20", "19.99", "3", "0.333", "100.555"} {
		_, got, err := b.Deposit(s, "Main", amt)
		require.NoError(t, err)
		want = want.Add(decimal.RequireFromString(amt).Round(2))
		assert.True(t, got.Equal(decimal.RequireFromString(amt).Round(2)))
	}
	assert.Equal(t, want.StringFixed(2), accounts(t, b, s)[0].FormattedBalance())
}

func TestAccountsReturnsCopies(t *testing.T) {
	b := NewBank()
	s := loggedIn(t, b, "John")
	require.NoError(t, b.NewAccount(s, "Main", false))

	got := accounts(t, b, s)
	got[0].Balance = decimal.NewFromInt(1_000_000)
	got[0].Name = "Hacked"

	again := accounts(t, b, s)
	assert.Equal(t, "Main", again[0].Name)
	assert.True(t, again[0].Balance.IsZero())
}

// TestConcurrentRegisterSameUsername 同名並發註冊只會有一個成功。
func TestConcurrentRegisterSameUsername(t *testing.T) {
	b := NewBank()

	const workers = 64
	var ok, taken int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			switch err := b.Register("Race", "pw"); err {
			case nil:
				atomic.AddInt32(&ok, 1)
			case ErrAlreadyExists:
				atomic.AddInt32(&taken, 1)
			default:
				t.Errorf("unexpected err: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, ok)
	assert.EqualValues(t, workers-1, taken)
}

// TestConcurrentNewAccountRespectsLimit 同一客戶的並發開戶不會超過上限，且只有一個預設帳戶。
func TestConcurrentNewAccountRespectsLimit(t *testing.T) {
	b := NewBank()
	s := loggedIn(t, b, "John")

	const workers = 40
	var created int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		name := "acct" + strings.Repeat(string(rune('a'+i%26)), 1+i/26)
		go func() {
			defer wg.Done()
			if err := b.NewAccount(s, name, false); err == nil {
				atomic.AddInt32(&created, 1)
			}
		}()
	}
	wg.Wait()

	got := accounts(t, b, s)
	assert.EqualValues(t, MaxAccounts, created)
	assert.Len(t, got, MaxAccounts)
	defaults := 0
	for _, a := range got {
		if a.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

// TestConcurrentDepositsRaceSafety 多個 goroutine 同時存款仍具資料一致性。
func TestConcurrentDepositsRaceSafety(t *testing.T) {
	b := NewBank()
	s := loggedIn(t, b, "John")
	require.NoError(t, b.NewAccount(s, "Main", false))

	const workers = 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, _, err := b.Deposit(s, "Main", "0.01"); err != nil {
				t.Errorf("deposit err: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, "1.00", accounts(t, b, s)[0].FormattedBalance())
}

// TestCustomersAreIndependent 不同客戶的帳戶互不影響。
func TestCustomersAreIndependent(t *testing.T) {
	b := NewBank()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		s := loggedIn(t, b, fmt.Sprintf("user%d", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, n := range []string{"Alpha", "Beta", "Gamma", "Delta", "Omega"} {
				if err := b.NewAccount(s, n, false); err != nil {
					t.Errorf("new account: %v", err)
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, b.Customers())
}

func TestSeed(t *testing.T) {
	b := NewBank()
	seed, err := storage.DefaultSeed()
	require.NoError(t, err)
	require.NoError(t, b.Seed(seed))

	name, err := b.Authenticate("Bhagy", "bhagy")
	require.NoError(t, err)
	s := NewSession()
	s.Login(name)

	got := accounts(t, b, s)
	require.Len(t, got, 2)
	assert.Equal(t, "Main", got[0].Name)
	assert.Equal(t, "1000.00", got[0].FormattedBalance())
	assert.Equal(t, Currency, got[0].Currency)
	assert.True(t, got[0].IsDefault)
	assert.Equal(t, "201.19", got[1].FormattedBalance())
	assert.True(t, got[1].IsSavings)

	assert.ErrorIs(t, b.Seed(seed), ErrAlreadyExists)
}

func TestSeedRejectsBadData(t *testing.T) {
	bad := []storage.SeedCustomer{
		{Username: "A", Accounts: []storage.SeedAccount{{Name: "ab", Balance: "1"}}},
		{Username: "B", Accounts: []storage.SeedAccount{{Name: "Main", Balance: "-1"}}},
		{Username: "C", Accounts: []storage.SeedAccount{{Name: "Main", Balance: "ten"}}},
		{Username: ""},
	}
	for _, sc := range bad {
		b := NewBank()
		assert.Error(t, b.Seed(storage.Seed{Customers: []storage.SeedCustomer{sc}}), "customer %q", sc.Username)
		assert.Equal(t, 0, b.Customers())
	}
}
