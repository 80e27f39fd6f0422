// internal/storage/seedstore.go
//
// 提供種子檔的讀取與解析。未設定種子檔時使用內嵌的 default_seed.yaml。
package storage

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedVersion 為目前支援的種子格式版本。
const SeedVersion = 1

//go:embed default_seed.yaml
var defaultSeed []byte

// ErrUnsupportedVersion 代表種子檔的 _meta.version 不受支援。
var ErrUnsupportedVersion = errors.New("unsupported seed version")

// DefaultSeed 回傳內嵌的示範客戶資料。
func DefaultSeed() (Seed, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeed 讀取指定路徑的 YAML 種子檔；path 為空字串時回傳 DefaultSeed。
func LoadSeed(path string) (Seed, error) {
	if path == "" {
		return DefaultSeed()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	s, err := ParseSeed(data)
	if err != nil {
		return Seed{}, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return s, nil
}

// ParseSeed 解析 YAML 種子內容。未知欄位視為錯誤，避免拼字錯誤被默默忽略。
// 空文件視為沒有任何客戶；缺少 _meta.version 時視為目前版本。
func ParseSeed(data []byte) (Seed, error) {
	var s Seed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Seed{}, err
	}
	if s.Meta.Version == 0 {
		s.Meta.Version = SeedVersion
	}
	if s.Meta.Version != SeedVersion {
		return Seed{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Meta.Version)
	}
	return s, nil
}
