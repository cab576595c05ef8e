// Package recognizers holds the regular-expression heuristics used to find
// and rewrite ROS 2 node constructs in C++ source text.
//
// Nothing here parses C++. Every recognizer works on raw text and knows
// nothing about string literals or comments.
package recognizers

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// OptionsParameter is the parameter a composable constructor takes.
	OptionsParameter = "const rclcpp::NodeOptions & options"
	// OptionsArgument is the value passed at converted construction sites.
	OptionsArgument = "rclcpp::NodeOptions{}"
	// OptionsMarker is the token whose presence means options are already wired.
	OptionsMarker = "NodeOptions"
	// RegistrationInclude is the header defining the registration macro.
	RegistrationInclude = `#include "rclcpp_components/register_node_macro.hpp"`
	// RegistrationMacro is the macro that registers a component by name.
	RegistrationMacro = "RCLCPP_COMPONENTS_REGISTER_NODE"
)

var (
	identifierRegexp = regexp.MustCompile(`^[A-Za-z_]\w*$`)

	nodeConstructorRegexp = regexp.MustCompile(
		`\b(\w+)::(\w+)\s*\([^)]*\)\s*:\s*(public\s+)?((?:\w+::)*\w+)(\s*\()?`,
	)

	scopeTokenRegexp = regexp.MustCompile(`\bnamespace\s+(\w+(?:::\w+)*)|[{};]`)

	// Arguments may hold one level of nested calls, e.g. Node(std::string("a")).
	baseNodeCallRegexp = regexp.MustCompile(`\bNode\s*\(((?:[^()]|\([^()]*\))*)\)`)
)

var baseNodeTypes = map[string]struct{}{
	"Node":          {},
	"LifecycleNode": {},
}

var baseNodeQualifiers = map[string]struct{}{
	"":                   {},
	"rclcpp::":           {},
	"rclcpp_lifecycle::": {},
}

// IsIdentifier reports whether name is a valid C++ identifier.
func IsIdentifier(name string) bool {
	return identifierRegexp.MatchString(name)
}

// MatchNodeConstructors returns the class name of every constructor
// definition in content that either initializes a base node type directly or
// delegates to another constructor of the same class.
func MatchNodeConstructors(content string) []string {
	var classes []string

	for _, match := range nodeConstructorRegexp.FindAllStringSubmatch(content, -1) {
		class, scope := match[1], match[2]
		if class != scope {
			continue
		}

		public, base, call := match[3] != "", match[4], match[5] != ""
		if isBaseNode(base) || (!public && call && base == class) {
			classes = append(classes, class)
		}
	}

	return classes
}

func isBaseNode(base string) bool {
	qualifier, name := "", base
	if idx := strings.LastIndex(base, "::"); idx >= 0 {
		qualifier, name = base[:idx+2], base[idx+2:]
	}

	_, okName := baseNodeTypes[name]
	_, okQualifier := baseNodeQualifiers[qualifier]

	return okName && okQualifier
}

// ConstructorAnchor matches the start of the out-of-line constructor
// definition for class.
func ConstructorAnchor(class string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`\b%[1]s::%[1]s\s*\(`, regexp.QuoteMeta(class)))
}

// ScopeTokenKind classifies the tokens that drive namespace tracking.
type ScopeTokenKind int

const (
	// TokenNamespace is a "namespace name" keyword pair awaiting its brace.
	TokenNamespace ScopeTokenKind = iota
	// TokenOpen is a '{'.
	TokenOpen
	// TokenClose is a '}'.
	TokenClose
	// TokenTerminator is a ';', which cancels a pending namespace (aliases,
	// using-directives).
	TokenTerminator
)

// ScopeToken is one namespace keyword, brace, or terminator on a line.
type ScopeToken struct {
	Kind ScopeTokenKind
	// Segments holds the namespace name split on "::" for TokenNamespace.
	Segments []string
}

// ScanScopeTokens returns the scope tokens of line in source order. A
// namespace keyword counts only at the start of the line or directly after
// another brace or semicolon. Braces inside string literals and comments are
// reported like any other brace.
func ScanScopeTokens(line string) []ScopeToken {
	matches := scopeTokenRegexp.FindAllStringSubmatchIndex(line, -1)
	tokens := make([]ScopeToken, 0, len(matches))

	// prev is the end of the last punctuation token, or -1 right after a
	// namespace keyword.
	prev := 0

	for _, loc := range matches {
		if loc[2] >= 0 {
			if prev >= 0 && onlySpecifiers(line[prev:loc[0]]) {
				segments := strings.Split(line[loc[2]:loc[3]], "::")
				tokens = append(tokens, ScopeToken{Kind: TokenNamespace, Segments: segments})
			}

			prev = -1

			continue
		}

		prev = loc[1]

		switch line[loc[0]] {
		case '{':
			tokens = append(tokens, ScopeToken{Kind: TokenOpen})
		case '}':
			tokens = append(tokens, ScopeToken{Kind: TokenClose})
		default:
			tokens = append(tokens, ScopeToken{Kind: TokenTerminator})
		}
	}

	return tokens
}

func onlySpecifiers(gap string) bool {
	for _, field := range strings.Fields(gap) {
		if field != "inline" {
			return false
		}
	}

	return true
}

// ConstructorMatch locates a constructor definition and its initializer list.
type ConstructorMatch struct {
	Start       int
	End         int
	Signature   string
	Initializer string
}

// FindConstructorDefinition finds the first "Class::Class(params) : ..." up to
// the opening brace of the body.
func FindConstructorDefinition(content, class string) (ConstructorMatch, bool) {
	quoted := regexp.QuoteMeta(class)
	re := regexp.MustCompile(fmt.Sprintf(`\b(%[1]s::%[1]s\s*\([^)]*\))(\s*:\s*[^{]+)`, quoted))

	loc := re.FindStringSubmatchIndex(content)
	if loc == nil {
		return ConstructorMatch{}, false
	}

	return ConstructorMatch{
		Start:       loc[0],
		End:         loc[1],
		Signature:   content[loc[2]:loc[3]],
		Initializer: content[loc[4]:loc[5]],
	}, true
}

// OptionsSignature renders the rewritten constructor signature.
func OptionsSignature(class string) string {
	return fmt.Sprintf("%[1]s::%[1]s(%[2]s)", class, OptionsParameter)
}

// ForwardOptionsToBase appends the options argument to every Node(...) call
// in an initializer list.
func ForwardOptionsToBase(initializer string) string {
	return baseNodeCallRegexp.ReplaceAllStringFunc(initializer, func(call string) string {
		args := baseNodeCallRegexp.FindStringSubmatch(call)[1]
		if strings.TrimSpace(args) == "" {
			return "Node(options)"
		}

		return "Node(" + args + ", options)"
	})
}

// AlreadyTakesOptions is the idempotence guard for implementation files.
func AlreadyTakesOptions(content, class string) bool {
	return strings.Contains(content, class+"::") && strings.Contains(content, OptionsMarker)
}

// RegistrationDirective renders the registration macro for a qualified class.
func RegistrationDirective(qualified string) string {
	return fmt.Sprintf("%s(%s)", RegistrationMacro, qualified)
}

// HasRegistration reports whether content already registers qualified.
func HasRegistration(content, qualified string) bool {
	return strings.Contains(content, RegistrationDirective(qualified))
}

// RegistrationBlock is the text appended to a converted implementation file.
func RegistrationBlock(qualified string) string {
	return "\n\n" + RegistrationInclude + "\n" + RegistrationDirective(qualified) + "\n"
}

// DeclarationMatch locates a constructor declaration in a header.
type DeclarationMatch struct {
	Start  int
	End    int
	Indent string
	Params string
}

// FindHeaderDeclaration finds the first line declaring a constructor of class
// without a body: "[explicit] Class(params);".
func FindHeaderDeclaration(content, class string) (DeclarationMatch, bool) {
	re := regexp.MustCompile(fmt.Sprintf(
		`(?m)^([ \t]*)(?:explicit[ \t]+)?%s\s*\(([^;{]*)\)\s*;`, regexp.QuoteMeta(class),
	))

	loc := re.FindStringSubmatchIndex(content)
	if loc == nil {
		return DeclarationMatch{}, false
	}

	return DeclarationMatch{
		Start:  loc[0],
		End:    loc[1],
		Indent: content[loc[2]:loc[3]],
		Params: content[loc[4]:loc[5]],
	}, true
}

// OptionsDeclaration renders the rewritten header declaration.
func OptionsDeclaration(indent, class string) string {
	return fmt.Sprintf("%sexplicit %s(%s);", indent, class, OptionsParameter)
}

// ZeroArgMakeShared matches make_shared<[ns::]Class>() with no arguments.
// The first group is everything up to the argument list.
func ZeroArgMakeShared(class string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(
		`\b((?:std::)?make_shared\s*<\s*(?:\w+::)*%s\s*>)\s*\(\s*\)`, regexp.QuoteMeta(class),
	))
}

// PassOptions rewrites every zero-argument make_shared of class to pass
// default options. It returns the new content and the number of rewrites.
func PassOptions(content, class string) (string, int) {
	re := ZeroArgMakeShared(class)
	count := len(re.FindAllStringIndex(content, -1))

	if count == 0 {
		return content, 0
	}

	return re.ReplaceAllString(content, "${1}("+OptionsArgument+")"), count
}
