package categorization

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// MatchType selects how a rule's pattern is interpreted.
type MatchType string

const (
	MatchContains   MatchType = "contains"
	MatchStartsWith MatchType = "startsWith"
	MatchEndsWith   MatchType = "endsWith"
	MatchRegex      MatchType = "regex"
)

// CategoryRule is a user-authored categorization rule. Rules are stored as a
// JSON array in the preference store and read-only per pipeline run.
type CategoryRule struct {
	ID        string    `json:"id"`
	Pattern   string    `json:"pattern"`
	Category  string    `json:"category"`
	MatchType MatchType `json:"matchType"`
	Priority  int       `json:"priority"`
	Enabled   bool      `json:"enabled"`
}

// RuleEngine evaluates user rules against a description. Regex patterns are
// compiled lazily and cached by rule ID; an invalid regex never aborts
// evaluation, it is logged and treated as non-matching.
type RuleEngine struct {
	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
	invalid  map[string]struct{}
	logger   *slog.Logger
}

// NewRuleEngine creates a rule engine.
func NewRuleEngine(logger *slog.Logger) *RuleEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleEngine{
		compiled: make(map[string]*regexp.Regexp),
		invalid:  make(map[string]struct{}),
		logger:   logger,
	}
}

// Apply returns the category of the highest-priority enabled rule matching the
// description. Ties keep original list order, so among equal priorities the
// first-listed rule wins.
func (e *RuleEngine) Apply(description string, rules []CategoryRule) (string, bool) {
	enabled := make([]CategoryRule, 0, len(rules))
	for _, r := range rules {
		if r.Enabled {
			enabled = append(enabled, r)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority > enabled[j].Priority
	})

	for _, r := range enabled {
		if e.matches(description, r) {
			return r.Category, true
		}
	}
	return "", false
}

func (e *RuleEngine) matches(description string, rule CategoryRule) bool {
	// An empty pattern matches any input.
	if rule.Pattern == "" {
		return true
	}

	lowerDesc := strings.ToLower(description)
	lowerPat := strings.ToLower(rule.Pattern)

	switch rule.MatchType {
	case MatchContains:
		return strings.Contains(lowerDesc, lowerPat)
	case MatchStartsWith:
		return strings.HasPrefix(lowerDesc, lowerPat)
	case MatchEndsWith:
		return strings.HasSuffix(lowerDesc, lowerPat)
	case MatchRegex:
		re, ok := e.regexFor(rule)
		return ok && re.MatchString(description)
	default:
		e.logger.Warn("unknown rule match type",
			slog.String("rule_id", rule.ID),
			slog.String("match_type", string(rule.MatchType)))
		return false
	}
}

func (e *RuleEngine) regexFor(rule CategoryRule) (*regexp.Regexp, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if re, ok := e.compiled[rule.ID]; ok {
		return re, true
	}
	if _, bad := e.invalid[rule.ID]; bad {
		return nil, false
	}

	re, err := regexp.Compile(`(?i)` + rule.Pattern)
	if err != nil {
		e.invalid[rule.ID] = struct{}{}
		e.logger.Error("invalid rule regex, treating as non-matching",
			slog.String("rule_id", rule.ID),
			slog.String("pattern", rule.Pattern),
			slog.Any("error", err))
		return nil, false
	}

	e.compiled[rule.ID] = re
	return re, true
}
