// internal/storage/model.go
//
// 定義「種子資料 (seed)」的結構模型。
// 系統不做跨重啟的持久化；本層只負責在啟動時提供預先建立的客戶與帳戶，
// 格式為 YAML，金額以字串保存以免經過浮點數轉換。
package storage

// Meta 為種子檔的中繼資料，用於格式版本比對與人工說明。
type Meta struct {
	Version int    `yaml:"version"`
	Note    string `yaml:"note,omitempty"`
}

// SeedAccount 為帳戶在種子檔中的格式。
// Savings 為 nil 時由名稱推導是否為儲蓄帳戶。
type SeedAccount struct {
	Name    string `yaml:"name"`
	Balance string `yaml:"balance"`
	Default bool   `yaml:"default,omitempty"`
	Savings *bool  `yaml:"savings,omitempty"`
}

// SeedCustomer 為客戶在種子檔中的格式；Accounts 順序即為顯示順序。
type SeedCustomer struct {
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Accounts []SeedAccount `yaml:"accounts"`
}

// Seed 為完整的種子文件。
type Seed struct {
	Meta      Meta           `yaml:"_meta"`
	Customers []SeedCustomer `yaml:"customers"`
}
