package command

import "strings"

// Verb 為請求行第一個 token 所代表的指令種類。集合固定，New 以 switch 窮舉處理。
type Verb int

const (
	// VerbDefault 對應空白行與字面上的 DEFAULT。
	VerbDefault Verb = iota
	VerbUnknown
	VerbLogin
	VerbRegister
	VerbNewAccount
	VerbDeposit
	VerbShowAccounts
	VerbQuit
)

var verbNames = map[string]Verb{
	"":               VerbDefault,
	"DEFAULT":        VerbDefault,
	"LOGIN":          VerbLogin,
	"REGISTER":       VerbRegister,
	"NEWACCOUNT":     VerbNewAccount,
	"DEPOSIT":        VerbDeposit,
	"SHOWMYACCOUNTS": VerbShowAccounts,
	"QUIT":           VerbQuit,
}

// ParseVerb 將 token 轉大寫後查表；無法辨識者回傳 VerbUnknown，而非錯誤。
func ParseVerb(token string) Verb {
	if v, ok := verbNames[strings.ToUpper(token)]; ok {
		return v
	}
	return VerbUnknown
}

func (v Verb) String() string {
	switch v {
	case VerbDefault:
		return "DEFAULT"
	case VerbLogin:
		return "LOGIN"
	case VerbRegister:
		return "REGISTER"
	case VerbNewAccount:
		return "NEWACCOUNT"
	case VerbDeposit:
		return "DEPOSIT"
	case VerbShowAccounts:
		return "SHOWMYACCOUNTS"
	case VerbQuit:
		return "QUIT"
	default:
		return "UNKNOWN"
	}
}

// RequiresLogin 回報該指令是否需要已登入的 session。
func (v Verb) RequiresLogin() bool {
	switch v {
	case VerbNewAccount, VerbDeposit, VerbShowAccounts:
		return true
	default:
		return false
	}
}
