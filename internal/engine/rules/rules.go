// Package rules classifies configured aid programs against a completed answer set.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"aid-eligibility-workers/internal/common/errors"
	"aid-eligibility-workers/internal/engine/expression"
	"aid-eligibility-workers/internal/models"
)

type Category string

const (
	CategoryEligible   Category = "eligible"
	CategoryMaybe      Category = "maybe"
	CategoryIneligible Category = "ineligible"
)

// ParseCategory accepts category tags in any case.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryEligible:
		return CategoryEligible, true
	case CategoryMaybe:
		return CategoryMaybe, true
	case CategoryIneligible:
		return CategoryIneligible, true
	}
	return "", false
}

// Confidence is a fixed mapping from category, not a score.
func (c Category) Confidence() float64 {
	switch c {
	case CategoryEligible:
		return 0.9
	case CategoryMaybe:
		return 0.7
	default:
		return 0.5
	}
}

func (c Category) priority() int {
	switch c {
	case CategoryEligible:
		return 0
	case CategoryMaybe:
		return 1
	case CategoryIneligible:
		return 2
	default:
		return 3
	}
}

// Rule is a configured aid program.
type Rule struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Condition   string   `json:"condition"`
	Category    Category `json:"category"`
	Message     string   `json:"message"`
	FormURL     string   `json:"formUrl,omitempty"`
	InfoURL     string   `json:"infoUrl,omitempty"`
	ActionLabel string   `json:"actionLabel,omitempty"`
}

// Result is produced for each rule that fires.
type Result struct {
	RuleID      string   `json:"ruleId"`
	Title       string   `json:"title"`
	Message     string   `json:"message"`
	Category    Category `json:"category"`
	Confidence  float64  `json:"confidence"`
	FormURL     string   `json:"formUrl,omitempty"`
	InfoURL     string   `json:"infoUrl,omitempty"`
	ActionLabel string   `json:"actionLabel,omitempty"`
}

// Load converts rule records, keeping their order.
func Load(records []models.RuleRecord) ([]Rule, error) {
	out := make([]Rule, 0, len(records))
	seen := make(map[string]bool, len(records))

	for _, rec := range records {
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			return nil, errors.NewCatalogError(errors.ErrCodeRulesInvalid, "rule without id")
		}
		if seen[id] {
			return nil, errors.NewCatalogError(errors.ErrCodeRulesInvalid, fmt.Sprintf("duplicate rule id %q", id))
		}
		seen[id] = true

		category, ok := ParseCategory(rec.Category)
		if !ok {
			return nil, errors.NewCatalogError(errors.ErrCodeRulesInvalid,
				fmt.Sprintf("rule %q has unknown category %q", id, rec.Category))
		}

		out = append(out, Rule{
			ID:          id,
			Title:       rec.Title,
			Condition:   strings.TrimSpace(rec.Condition),
			Category:    category,
			Message:     rec.Message,
			FormURL:     rec.FormURL,
			InfoURL:     rec.InfoURL,
			ActionLabel: rec.ActionLabel,
		})
	}
	return out, nil
}

// Categorize evaluates every rule against answers and returns the fired ones,
// eligible first, then maybe, then ineligible, ties in rule order.
func Categorize(rules []Rule, answers models.AnswerSet, e *expression.Evaluator) []Result {
	results := make([]Result, 0)
	for _, r := range rules {
		if !e.Evaluate(r.Condition, answers) {
			continue
		}
		results = append(results, Result{
			RuleID:      r.ID,
			Title:       r.Title,
			Message:     r.Message,
			Category:    r.Category,
			Confidence:  r.Category.Confidence(),
			FormURL:     r.FormURL,
			InfoURL:     r.InfoURL,
			ActionLabel: r.ActionLabel,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Category.priority() < results[j].Category.priority()
	})
	return results
}

// Summary counts results per category.
type Summary struct {
	Eligible   int `json:"eligible"`
	Maybe      int `json:"maybe"`
	Ineligible int `json:"ineligible"`
	Total      int `json:"total"`
}

func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Category {
		case CategoryEligible:
			s.Eligible++
		case CategoryMaybe:
			s.Maybe++
		case CategoryIneligible:
			s.Ineligible++
		}
		s.Total++
	}
	return s
}
