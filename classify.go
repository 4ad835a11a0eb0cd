package main

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// OtherCategory receives every name no rule matches
const OtherCategory = "Other"

// Rule assigns a category when every populated condition holds.
// Matching is case-insensitive.
type Rule struct {
	Category   string   `yaml:"category"`
	Extensions []string `yaml:"extensions,omitempty"` // any of, without the dot
	Contains   []string `yaml:"contains,omitempty"`   // any of
	Suffixes   []string `yaml:"suffixes,omitempty"`   // any of, matched against the name without extension
	Glob       string   `yaml:"glob,omitempty"`
	Exclude    []string `yaml:"exclude,omitempty"` // none of
	Report     bool     `yaml:"report,omitempty"`  // spreadsheets open as report views

	compiled glob.Glob
}

// RuleSet is an ordered rule table plus the fixed display order of categories
type RuleSet struct {
	Rules []Rule   `yaml:"rules"`
	Order []string `yaml:"order"`
}

// Classification is the result of Classify
type Classification struct {
	Groups   map[string][]string
	Rejected []string

	order []string
}

// CategoryGroup is one non-empty category in display order
type CategoryGroup struct {
	Category string
	Files    []string
	Report   bool
}

// DefaultRuleSet mirrors the naming convention of the results uploader
func DefaultRuleSet() *RuleSet {
	rs := &RuleSet{
		Rules: []Rule{
			{Category: "Simplified Summaries", Contains: []string{"slim_summary"}, Report: true},
			{Category: "Summary", Extensions: []string{"xlsx", "xlsm"}, Contains: []string{"summary"}, Report: true},
			{Category: "Task Images", Contains: []string{"task_image"}, Extensions: []string{"png", "jpg", "jpeg", "gif", "svg", "webp"}},
			{Category: "Image", Extensions: []string{"png", "jpg", "jpeg", "gif", "svg", "webp"}},
			{Category: "Spreadsheets", Extensions: []string{"xlsx", "xls", "xlsm"}},
			{Category: "Web Pages", Extensions: []string{"html", "htm"}},
			{Category: "Download archives", Extensions: []string{"zip", "gz", "tgz", "tar", "7z"}},
		},
		Order: []string{
			"Summary",
			"Simplified Summaries",
			"Spreadsheets",
			"Web Pages",
			"Task Images",
			"Image",
			"Download archives",
			OtherCategory,
		},
	}
	if err := rs.Compile(); err != nil {
		panic(err)
	}
	return rs
}

// Compile lower-cases every condition, compiles globs and normalizes the display order
func (rs *RuleSet) Compile() error {
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if rule.Category == "" {
			return fmt.Errorf("rule %d has no category", i+1)
		}

		rule.Extensions = lowerAll(rule.Extensions, func(s string) string { return strings.TrimPrefix(s, ".") })
		rule.Contains = lowerAll(rule.Contains, nil)
		rule.Suffixes = lowerAll(rule.Suffixes, nil)
		rule.Exclude = lowerAll(rule.Exclude, nil)

		rule.compiled = nil
		if rule.Glob != "" {
			g, err := glob.Compile(strings.ToLower(rule.Glob))
			if err != nil {
				return fmt.Errorf("rule %d (%s): invalid glob %q: %w", i+1, rule.Category, rule.Glob, err)
			}
			rule.compiled = g
		}
	}

	// Every rule category must be displayable, Other always comes last
	seen := make(map[string]bool)
	var order []string
	for _, category := range rs.Order {
		if category == OtherCategory || seen[category] {
			continue
		}
		seen[category] = true
		order = append(order, category)
	}
	for _, rule := range rs.Rules {
		if !seen[rule.Category] && rule.Category != OtherCategory {
			seen[rule.Category] = true
			order = append(order, rule.Category)
		}
	}
	rs.Order = append(order, OtherCategory)

	return nil
}

// Match reports whether name satisfies every condition of the rule
func (r *Rule) Match(name string) bool {
	lower := strings.ToLower(name)
	ext := strings.TrimPrefix(path.Ext(lower), ".")
	stem := strings.TrimSuffix(lower, path.Ext(lower))

	if len(r.Extensions) > 0 && !containsString(r.Extensions, ext) {
		return false
	}
	if len(r.Contains) > 0 && !anyOf(r.Contains, func(s string) bool { return strings.Contains(lower, s) }) {
		return false
	}
	if len(r.Suffixes) > 0 && !anyOf(r.Suffixes, func(s string) bool { return strings.HasSuffix(stem, s) }) {
		return false
	}
	if r.compiled != nil && !r.compiled.Match(lower) {
		return false
	}
	if anyOf(r.Exclude, func(s string) bool { return strings.Contains(lower, s) }) {
		return false
	}
	return true
}

// CategoryOf returns the first matching category and whether it opens as a report
func (rs *RuleSet) CategoryOf(name string) (string, bool) {
	for i := range rs.Rules {
		if rs.Rules[i].Match(name) {
			return rs.Rules[i].Category, rs.Rules[i].Report
		}
	}
	return OtherCategory, false
}

// Classify partitions sibling file names into categories, first matching rule wins.
// Blank names are rejected and returned separately.
func (rs *RuleSet) Classify(names []string) Classification {
	result := Classification{
		Groups: make(map[string][]string),
		order:  rs.Order,
	}

	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			result.Rejected = append(result.Rejected, name)
			continue
		}
		category, _ := rs.CategoryOf(name)
		result.Groups[category] = append(result.Groups[category], name)
	}

	return result
}

// Ordered returns the non-empty categories in display order
func (c Classification) Ordered() []string {
	var categories []string
	for _, category := range c.order {
		if len(c.Groups[category]) > 0 {
			categories = append(categories, category)
		}
	}
	return categories
}

// GroupFiles classifies names and returns display-ordered groups with report flags
func (rs *RuleSet) GroupFiles(names []string) ([]CategoryGroup, []string) {
	classification := rs.Classify(names)

	reports := make(map[string]bool)
	for _, rule := range rs.Rules {
		if rule.Report {
			reports[rule.Category] = true
		}
	}

	var groups []CategoryGroup
	for _, category := range classification.Ordered() {
		groups = append(groups, CategoryGroup{
			Category: category,
			Files:    classification.Groups[category],
			Report:   reports[category],
		})
	}
	return groups, classification.Rejected
}

func lowerAll(values []string, transform func(string) string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if transform != nil {
			v = transform(v)
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func anyOf(values []string, pred func(string) bool) bool {
	for _, v := range values {
		if pred(v) {
			return true
		}
	}
	return false
}
