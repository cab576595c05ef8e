// Package model defines the data structures shared by the conversion workflow.
package model

import "strings"

// Path represents a file system path.
type Path string

// SourceFile is a file path plus its full text content. It is loaded by a
// single rewrite step and never cached across steps.
type SourceFile struct {
	Path    Path
	Content string
}

// NodeCandidate pairs a class name with the file that defines its constructor.
type NodeCandidate struct {
	Class string `yaml:"class"`
	Path  Path   `yaml:"path"`
}

// NamespaceChain lists enclosing namespaces from outermost to innermost.
type NamespaceChain []string

// Prefix renders the chain as "a::b::", or "" for the global scope.
func (c NamespaceChain) Prefix() string {
	if len(c) == 0 {
		return ""
	}

	return strings.Join(c, "::") + "::"
}

// Qualify returns the namespace-qualified name of class.
func (c NamespaceChain) Qualify(class string) string {
	return c.Prefix() + class
}
