package api

// RuleSet is the root of a rule file. It is shared by the JSON and YAML
// encodings; HCL files use labelled rule blocks with the same attributes.
type RuleSet struct {
	// Version of the rule file schema.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// Rules in evaluation order.
	Rules []Rule `json:"rules" yaml:"rules"`
}

// Rule names a test and what to do with the nodes it matches.
type Rule struct {
	// Name identifies the rule. Unique within a rule set.
	Name string `json:"name" yaml:"name"`
	// Test is a test value: null, a type string, an object of properties,
	// or a list of those.
	Test any `json:"test,omitempty" yaml:"test,omitempty"`
	// Message is reported for each match (optional).
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	// Selector narrows the candidate nodes: JSONPath for JSON trees, a
	// Tree-sitter query for source code (optional).
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"`
}
