// internal/command/command.go
//
// Package command 將一行已切分的請求轉為對 bank.Bank 的一次狀態變更或查詢。
// 每個指令變體都在建構時取得注入的 Bank、token 與 session，本身不保存跨請求的狀態。
// 需要登入的指令一律先經過 requireLogin，確保沒有變體會漏掉檢查。
package command

import (
	"strings"

	"newbank/internal/bank"
)

// Command 為單一請求的執行單位。
type Command interface {
	Execute() Response
}

// New 依 verb 建立對應的指令。switch 窮舉所有 Verb，新增 Verb 時必須在此補上。
// tokens[0] 為原始 verb token，其餘為參數。
func New(v Verb, b *bank.Bank, tokens []string, sess *bank.Session) Command {
	args := tokens
	if len(args) > 0 {
		args = args[1:]
	}
	switch v {
	case VerbLogin:
		return loginCommand{bank: b, args: args, sess: sess}
	case VerbRegister:
		return registerCommand{bank: b, args: args}
	case VerbNewAccount:
		return newAccountCommand{bank: b, args: args, sess: sess}
	case VerbDeposit:
		return depositCommand{bank: b, args: args, sess: sess}
	case VerbShowAccounts:
		return showAccountsCommand{bank: b, sess: sess}
	case VerbQuit:
		return quitCommand{}
	case VerbDefault:
		return defaultCommand{}
	default:
		return unknownCommand{}
	}
}

// requireLogin 為所有受限指令共用的登入檢查。
func requireLogin(sess *bank.Session) error {
	if !sess.LoggedIn() {
		return bank.ErrNotLoggedIn
	}
	return nil
}

type loginCommand struct {
	bank *bank.Bank
	args []string
	sess *bank.Session
}

const loginSyntax = "LOGIN <Username> <Password>"

// Execute 驗證帳密；失敗時 session 維持原狀。
func (c loginCommand) Execute() Response {
	if len(c.args) != 2 {
		return usage(loginSyntax)
	}
	name, err := c.bank.Authenticate(c.args[0], c.args[1])
	if err != nil {
		return fail(err)
	}
	c.sess.Login(name)
	return success("Logged in as %s.", name)
}

type registerCommand struct {
	bank *bank.Bank
	args []string
}

const registerSyntax = "REGISTER <Username> <Password>"

func (c registerCommand) Execute() Response {
	if len(c.args) != 2 {
		return usage(registerSyntax)
	}
	if err := c.bank.Register(c.args[0], c.args[1]); err != nil {
		return fail(err)
	}
	return success("Customer %s has been registered.", c.args[0])
}

type newAccountCommand struct {
	bank *bank.Bank
	args []string
	sess *bank.Session
}

const newAccountSyntax = "NEWACCOUNT <Name> [Default]"

// Execute 先檢查登入，再檢查語法，語法錯誤不會觸及 Bank。
func (c newAccountCommand) Execute() Response {
	if err := requireLogin(c.sess); err != nil {
		return fail(err)
	}
	if len(c.args) < 1 || len(c.args) > 2 {
		return usage(newAccountSyntax)
	}
	isDefault := false
	if len(c.args) == 2 {
		if !strings.EqualFold(c.args[1], "DEFAULT") {
			return usage(newAccountSyntax)
		}
		isDefault = true
	}
	if err := c.bank.NewAccount(c.sess, c.args[0], isDefault); err != nil {
		return fail(err)
	}
	return success(msgAccountCreated)
}

type depositCommand struct {
	bank *bank.Bank
	args []string
	sess *bank.Session
}

const depositSyntax = "DEPOSIT <Name> <Amount>"

func (c depositCommand) Execute() Response {
	if err := requireLogin(c.sess); err != nil {
		return fail(err)
	}
	if len(c.args) != 2 {
		return usage(depositSyntax)
	}
	acct, amt, err := c.bank.Deposit(c.sess, c.args[0], c.args[1])
	if err != nil {
		return fail(err)
	}
	return success("Deposited %s %s into %s. New balance: %s %s",
		amt.StringFixed(2), acct.Currency, acct.Name, acct.FormattedBalance(), acct.Currency)
}

type showAccountsCommand struct {
	bank *bank.Bank
	sess *bank.Session
}

// Execute 每個帳戶一行 "<name>: <balance> <currency>"，依建立順序排列。
// 沒有帳戶時回傳空字串，連線層仍會寫出一個空行。
func (c showAccountsCommand) Execute() Response {
	if err := requireLogin(c.sess); err != nil {
		return fail(err)
	}
	accts, err := c.bank.Accounts(c.sess)
	if err != nil {
		return fail(err)
	}
	lines := make([]string, len(accts))
	for i, a := range accts {
		lines[i] = a.Name + ": " + a.FormattedBalance() + " " + a.Currency
	}
	return Response{Text: strings.Join(lines, "\n"), OK: true}
}

type quitCommand struct{}

func (quitCommand) Execute() Response {
	r := success(msgGoodbye)
	r.Close = true
	return r
}

// defaultCommand 處理空白行。
type defaultCommand struct{}

func (defaultCommand) Execute() Response { return unknown() }

type unknownCommand struct{}

func (unknownCommand) Execute() Response { return unknown() }
