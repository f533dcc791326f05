// Package rules loads named tests from rule files.
//
// A rule file is HCL, JSON or YAML, chosen by extension:
//
//	rule "top-heading" {
//	  test     = { type = "heading", depth = 1 }
//	  message  = "top level heading"
//	  selector = "$..children[*]"
//	}
//
// The JSON and YAML encodings follow api.RuleSet.
package rules

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"

	is "github.com/syntax-tree/unist-util-is"
	"github.com/syntax-tree/unist-util-is/api"
)

var (
	// ErrDuplicateRule is returned when two rules share a name.
	ErrDuplicateRule = errors.New("duplicate rule name")
	// ErrUnsupportedFormat is returned for unknown rule file extensions.
	ErrUnsupportedFormat = errors.New("unsupported rule file format")
)

// Rule is a compiled entry of a rule file.
type Rule struct {
	Name     string
	Test     is.Test
	Message  string
	Selector string
}

// DecodeError reports a rule whose test value is not a valid test.
type DecodeError struct {
	File string
	Rule string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: rule %q: %v", e.File, e.Rule, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Load reads and decodes the rule file at path.
func Load(fs billy.Filesystem, path string) ([]Rule, error) {
	data, err := util.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes a rule file; filename selects the format.
func Parse(filename string, data []byte) ([]Rule, error) {
	var (
		specs []api.Rule
		err   error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hcl":
		specs, err = decodeHCL(filename, data)
	case ".json":
		var set api.RuleSet
		if err = oj.Unmarshal(data, &set); err == nil {
			specs = set.Rules
		}
	case ".yaml", ".yml":
		var set api.RuleSet
		if err = yaml.Unmarshal(data, &set); err == nil {
			specs = set.Rules
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	return compile(filename, specs)
}

// Compile converts decoded rule specs, checking every test eagerly.
func Compile(specs []api.Rule) ([]Rule, error) {
	return compile("", specs)
}

func compile(filename string, specs []api.Rule) ([]Rule, error) {
	seen := make(map[string]bool, len(specs))
	rules := make([]Rule, 0, len(specs))

	for _, spec := range specs {
		if spec.Name == "" {
			return nil, &DecodeError{File: filename, Err: errors.New("rule name is required")}
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRule, spec.Name)
		}
		seen[spec.Name] = true

		test, err := is.FromValue(spec.Test)
		if err == nil {
			_, err = is.Convert(test)
		}
		if err != nil {
			return nil, &DecodeError{File: filename, Rule: spec.Name, Err: err}
		}

		rules = append(rules, Rule{
			Name:     spec.Name,
			Test:     test,
			Message:  spec.Message,
			Selector: spec.Selector,
		})
	}
	return rules, nil
}

// Select returns the rules with the given names, in the order named.
func Select(rules []Rule, names ...string) ([]Rule, error) {
	byName := make(map[string]Rule, len(rules))
	for _, r := range rules {
		byName[r.Name] = r
	}
	picked := make([]Rule, 0, len(names))
	for _, name := range names {
		r, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown rule %q", name)
		}
		picked = append(picked, r)
	}
	return picked, nil
}
