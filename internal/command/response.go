// internal/command/response.go
//
// 本檔負責統一回應格式。所有成功回應以 "SUCCESS: " 開頭，失敗以 "FAIL: " 開頭；
// 領域錯誤只在 fail() 一處轉為文字，各指令不自行組字串。
package command

import (
	"errors"
	"fmt"

	"newbank/internal/bank"
)

const (
	successPrefix = "SUCCESS: "
	failPrefix    = "FAIL: "

	msgUnknownCommand = "Unknown command."
	msgNotLoggedIn    = "You must be logged in to perform this action."
	msgAccountCreated = "The account has been created successfully."
	msgGoodbye        = "Goodbye."
)

// Response 為單一指令執行後回傳給連線層的結果。
// Text 可能含多行（SHOWMYACCOUNTS），連線層原樣寫出並補上結尾換行。
// Close 為 true 時，連線層寫出回應後結束該連線。
type Response struct {
	Verb  Verb
	Text  string
	OK    bool
	Close bool
}

func success(format string, args ...any) Response {
	return Response{Text: successPrefix + fmt.Sprintf(format, args...), OK: true}
}

func usage(syntax string) Response {
	return Response{Text: failPrefix + "Usage: " + syntax}
}

func unknown() Response {
	return Response{Text: failPrefix + msgUnknownCommand}
}

// fail 將領域錯誤轉為 "FAIL: <message>"。
func fail(err error) Response {
	var reason interface{ Reason() string }
	switch {
	case errors.Is(err, bank.ErrNotLoggedIn):
		return Response{Text: failPrefix + msgNotLoggedIn}
	case errors.As(err, &reason):
		return Response{Text: failPrefix + "Invalid account name: " + reason.Reason()}
	case errors.Is(err, bank.ErrTooManyAccounts):
		return Response{Text: fmt.Sprintf("%sMaximum number of accounts is: %d", failPrefix, bank.MaxAccounts)}
	case errors.Is(err, bank.ErrAlreadyExists):
		return Response{Text: failPrefix + "Username is already taken."}
	case errors.Is(err, bank.ErrInvalidCredentials):
		return Response{Text: failPrefix + "Invalid username or password."}
	case errors.Is(err, bank.ErrAccountNotFound):
		return Response{Text: failPrefix + "Account not found."}
	case errors.Is(err, bank.ErrInvalidAmount):
		return Response{Text: failPrefix + "Invalid amount."}
	default:
		return Response{Text: failPrefix + err.Error()}
	}
}
