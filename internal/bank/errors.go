// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 這些錯誤屬於商業邏輯層級，由 command 層統一轉換為 "FAIL: <message>" 回應；
// 任何一種都不會中斷連線。

package bank

import "errors"

var (
	// ErrNotLoggedIn 代表 session 尚未通過 LOGIN。
	ErrNotLoggedIn = errors.New("you must be logged in to perform this action")

	// ErrAlreadyExists 代表註冊時使用者名稱已被使用。
	ErrAlreadyExists = errors.New("username is already taken")

	// ErrInvalidCredentials 代表帳號或密碼錯誤。
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidName 為帳戶名稱錯誤的共同父錯誤，下列兩者皆可用 errors.Is 比對到它。
	ErrInvalidName = errors.New("invalid account name")

	// ErrInvalidNameLength 代表名稱長度不在 4–12 之間。
	ErrInvalidNameLength = &nameError{reason: "Length must be between 4 and 12 characters."}

	// ErrInvalidNameLetters 代表名稱含有非英文字母字元。
	ErrInvalidNameLetters = &nameError{reason: "Only letters are allowed."}

	// ErrTooManyAccounts 代表客戶已持有 MaxAccounts 個帳戶。
	ErrTooManyAccounts = errors.New("maximum number of accounts reached")

	// ErrAccountNotFound 代表該客戶名下沒有指定名稱的帳戶。
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidAmount 代表金額無法解析或為負數。
	ErrInvalidAmount = errors.New("invalid amount")
)

// nameError 保留名稱錯誤的具體原因，並讓 errors.Is(err, ErrInvalidName) 成立。
type nameError struct {
	reason string
}

func (e *nameError) Error() string { return "invalid account name: " + e.reason }

// Reason 回傳對使用者顯示的原因文字。
func (e *nameError) Reason() string { return e.reason }

func (e *nameError) Is(target error) bool { return target == ErrInvalidName }
