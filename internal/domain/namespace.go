package domain

import (
	"strings"

	"composify.dev/pkg/composify/internal/domain/recognizers"
	m "composify.dev/pkg/composify/internal/model"
)

// ResolveNamespace returns the namespaces enclosing the out-of-line
// constructor definition of class in content. It returns an empty chain when
// the constructor is absent, when it sits at global scope, or when the brace
// depth would go negative before the constructor is reached.
//
// Braces are counted literally: a brace inside a string or comment moves the
// depth like a structural one.
func ResolveNamespace(content, class string) m.NamespaceChain {
	lines := strings.Split(content, "\n")

	anchor := findAnchorLine(lines, class)
	if anchor < 0 {
		return nil
	}

	var scan namespaceScan

	for _, line := range lines[:anchor+1] {
		for _, token := range recognizers.ScanScopeTokens(line) {
			if !scan.apply(token) {
				return nil
			}
		}
	}

	return scan.chain()
}

func findAnchorLine(lines []string, class string) int {
	anchor := recognizers.ConstructorAnchor(class)

	for i, line := range lines {
		if anchor.MatchString(line) {
			return i
		}
	}

	return -1
}

type openNamespace struct {
	name  string
	depth int
}

// namespaceScan is the accumulator of a single ResolveNamespace call.
type namespaceScan struct {
	depth   int
	pending []string
	open    []openNamespace
}

// apply advances the scan by one token. It returns false when the depth
// would go negative.
func (s *namespaceScan) apply(token recognizers.ScopeToken) bool {
	switch token.Kind {
	case recognizers.TokenNamespace:
		s.pending = token.Segments
	case recognizers.TokenOpen:
		for _, name := range s.pending {
			s.open = append(s.open, openNamespace{name: name, depth: s.depth})
		}

		s.pending = nil
		s.depth++
	case recognizers.TokenClose:
		s.pending = nil

		s.depth--
		if s.depth < 0 {
			return false
		}

		for len(s.open) > 0 && s.open[len(s.open)-1].depth >= s.depth {
			s.open = s.open[:len(s.open)-1]
		}
	case recognizers.TokenTerminator:
		s.pending = nil
	}

	return true
}

func (s *namespaceScan) chain() m.NamespaceChain {
	if len(s.open) == 0 {
		return nil
	}

	chain := make(m.NamespaceChain, 0, len(s.open))
	for _, ns := range s.open {
		chain = append(chain, ns.name)
	}

	return chain
}
