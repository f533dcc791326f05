package ingest

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/hcl"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/sql"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/smacker/go-tree-sitter/yaml"
)

// DetectLanguageFromExt returns the language name and tree-sitter Language
// for a given file extension. Returns ok=false for unsupported extensions.
func DetectLanguageFromExt(ext string) (langName string, lang *sitter.Language, ok bool) {
	switch strings.ToLower(ext) {
	case ".go":
		return "go", golang.GetLanguage(), true
	case ".py":
		return "python", python.GetLanguage(), true
	case ".tf", ".hcl":
		return "hcl", hcl.GetLanguage(), true
	case ".js", ".mjs", ".cjs":
		return "javascript", javascript.GetLanguage(), true
	case ".ts", ".tsx":
		return "typescript", typescript.GetLanguage(), true
	case ".rs":
		return "rust", rust.GetLanguage(), true
	case ".sql":
		return "sql", sql.GetLanguage(), true
	case ".yaml", ".yml":
		return "yaml", yaml.GetLanguage(), true
	default:
		return "", nil, false
	}
}

// LanguageByName resolves a language name as returned by
// DetectLanguageFromExt. "terraform" is accepted for hcl.
func LanguageByName(name string) (*sitter.Language, bool) {
	switch strings.ToLower(name) {
	case "go", "golang":
		return golang.GetLanguage(), true
	case "python":
		return python.GetLanguage(), true
	case "hcl", "terraform":
		return hcl.GetLanguage(), true
	case "javascript", "js":
		return javascript.GetLanguage(), true
	case "typescript", "ts":
		return typescript.GetLanguage(), true
	case "rust":
		return rust.GetLanguage(), true
	case "sql":
		return sql.GetLanguage(), true
	case "yaml":
		return yaml.GetLanguage(), true
	default:
		return nil, false
	}
}
