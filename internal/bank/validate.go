package bank

import "unicode/utf8"

const (
	minNameLen = 4
	maxNameLen = 12
)

// ValidateAccountName 檢查名稱長度在 [4,12] 且僅含 ASCII 英文字母。
// 長度優先檢查：同時違反兩項規則時回報長度錯誤。
func ValidateAccountName(name string) error {
	if n := utf8.RuneCountInString(name); n < minNameLen || n > maxNameLen {
		return ErrInvalidNameLength
	}
	for _, r := range name {
		if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z') {
			return ErrInvalidNameLetters
		}
	}
	return nil
}
