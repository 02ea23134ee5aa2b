// Package compliance implements FTC affiliate-disclosure validation and
// injection for generated content. All functions are pure: they never touch
// the network and never mutate their inputs.
package compliance

import "regexp"

// MatchSpan locates a disclosure match inside a piece of content.
type MatchSpan struct {
	Start int
	End   int
	Text  string
}

// Rule detects one family of disclosure wording. Rules are data: new
// patterns or locales are added to the rule list, not to the validator.
type Rule interface {
	// Match returns the first occurrence of the rule's pattern in text.
	Match(text string) (MatchSpan, bool)
	// Name identifies the rule for diagnostics.
	Name() string
}

// regexRule is a Rule backed by a case-insensitive regular expression.
type regexRule struct {
	name string
	re   *regexp.Regexp
}

func newRegexRule(name, pattern string) regexRule {
	return regexRule{name: name, re: regexp.MustCompile(`(?i)` + pattern)}
}

func (r regexRule) Name() string { return r.name }

func (r regexRule) Match(text string) (MatchSpan, bool) {
	loc := r.re.FindStringIndex(text)
	if loc == nil {
		return MatchSpan{}, false
	}
	return MatchSpan{Start: loc[0], End: loc[1], Text: text[loc[0]:loc[1]]}, true
}

// defaultRules is the ordered disclosure rule list. Order matters: the
// first rule that matches supplies the disclosure text used by the
// placement and clarity checks, so the most explicit wording comes first
// and bare hashtags come last among the common forms.
var defaultRules = []Rule{
	newRegexRule("amazon-associate", `as an (?:amazon )?associate[^.\n]*earn from qualifying purchases`),
	newRegexRule("hashtag-ad", `#ad\b`),
	newRegexRule("hashtag-sponsored", `#sponsored\b`),
	newRegexRule("affiliate-link", `affiliate link`),
	newRegexRule("earn-commission", `(?:may|might) earn (?:a )?commission`),
	newRegexRule("paid-partnership", `paid partnership`),
}

// DefaultRules returns a copy of the built-in rule list.
func DefaultRules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}
