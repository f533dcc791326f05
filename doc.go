// Package is checks whether a tree node passes a test.
//
// A node is any value with a non-empty string "type" attribute. Attributes
// are read from maps with string keys, from structs (json tag or field
// name), or from values implementing Attributer, so the package works with
// decoded JSON, hand-written structs and adapters over foreign syntax trees
// alike.
//
// A Test is one of:
//
//   - nil, which passes for any node;
//   - Type, which passes when the node type equals the string;
//   - Props, which passes when every listed attribute is strictly equal;
//   - Func or Cast, a caller predicate invoked with (node, index, parent, context);
//   - AnyOf, which passes when any of its tests passes, tried in order.
//
// Is validates the position of the node (index and parent must be given
// together, and the parent must itself be a node with children) and then
// runs the test. Convert compiles a test once into a Check for callers that
// match many nodes and have already validated their input.
package is
