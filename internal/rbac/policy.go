package rbac

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// catchAll is appended after every declared rule.
const catchAll = "**"

type compiledRule struct {
	Rule
	glob glob.Glob
}

// Policy evaluates rules first-match-wins in declaration order. It is
// read-only after NewPolicy and safe for concurrent use.
type Policy struct {
	rules []compiledRule
}

// NewPolicy compiles rules and appends the AUTHENTICATED catch-all.
func NewPolicy(rules []Rule) (*Policy, error) {
	compiled := make([]compiledRule, 0, len(rules)+1)
	for _, rule := range append(append([]Rule(nil), rules...), Rule{Pattern: catchAll, Requirement: Authenticated}) {
		g, err := glob.Compile(rule.Pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("rbac: compile pattern %q: %w", rule.Pattern, err)
		}
		compiled = append(compiled, compiledRule{Rule: rule, glob: g})
	}
	return &Policy{rules: compiled}, nil
}

// RequirementFor returns the requirement of the first rule matching
// requestPath, which must be the path the router dispatches on. Paths that
// are not canonical always require an identity.
func (p *Policy) RequirementFor(requestPath string) Requirement {
	if !canonical(requestPath) {
		return Authenticated
	}
	if requestPath != "/" {
		requestPath = strings.TrimSuffix(requestPath, "/")
	}
	for _, rule := range p.rules {
		if rule.glob.Match(requestPath) {
			return rule.Requirement
		}
	}
	return Authenticated
}

// canonical rejects empty or relative paths, dot segments, repeated slashes
// and percent-encoded separators or dots.
func canonical(requestPath string) bool {
	if !strings.HasPrefix(requestPath, "/") {
		return false
	}
	lower := strings.ToLower(requestPath)
	if strings.Contains(lower, "%2f") || strings.Contains(lower, "%5c") || strings.Contains(lower, "%2e") {
		return false
	}
	if requestPath == "/" {
		return true
	}
	return path.Clean(requestPath) == strings.TrimSuffix(requestPath, "/")
}

// RequiresIdentity reports whether requestPath needs an authenticated caller.
func (p *Policy) RequiresIdentity(requestPath string) bool {
	return p.RequirementFor(requestPath) != Public
}

// Rules returns the effective rules, catch-all included.
func (p *Policy) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	for i, rule := range p.rules {
		out[i] = rule.Rule
	}
	return out
}
