// Package sql provides static safety validation for generated SQL.
//
// The validator is the only gate between the generation backend and the
// execution contract: everything it passes is executed verbatim, so it
// rejects anything that is not a plain read-only statement and applies
// safe defaults (row cap) to what it accepts.
package sql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aiquery-dev/aiquery-engine/pkg/models"
)

// DefaultRowLimit is appended to unbounded, non-aggregate queries.
const DefaultRowLimit = 1000

// blockedPatterns cover schema/data-mutation statements and the classic
// comment-based injection tail. Matching any of them invalidates the query.
var blockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bDROP\b`),
	regexp.MustCompile(`(?i)\bDELETE\b`),
	regexp.MustCompile(`(?i)\bTRUNCATE\b`),
	regexp.MustCompile(`(?i)\bALTER\b`),
	regexp.MustCompile(`(?i)\bCREATE\b`),
	regexp.MustCompile(`(?i)\bINSERT\b`),
	regexp.MustCompile(`(?i)\bUPDATE\b`),
	regexp.MustCompile(`(?i)\bGRANT\b`),
	regexp.MustCompile(`(?i)\bREVOKE\b`),
	regexp.MustCompile(`(?i)\bEXEC\b`),
	regexp.MustCompile(`(?i)\bEXECUTE\b`),
	regexp.MustCompile(`;\s*--`),
}

var (
	lineCommentPattern  = regexp.MustCompile(`--[^\n]*`)
	blockCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)

	wildcardPattern  = regexp.MustCompile(`(?i)SELECT\s+\*`)
	largeIntPattern  = regexp.MustCompile(`\b\d{4,}\b`)
	joinPattern      = regexp.MustCompile(`(?i)\bJOIN\b`)
	limitPattern     = regexp.MustCompile(`(?i)\bLIMIT\b`)
	aggregatePattern = regexp.MustCompile(`(?i)\b(COUNT|SUM|AVG|MAX|MIN)\s*\(`)
	groupByPattern   = regexp.MustCompile(`(?i)\bGROUP\s+BY\b`)

	notInPattern           = regexp.MustCompile(`(?i)NOT\s+IN\s*\(`)
	leadingWildcardPattern = regexp.MustCompile(`(?i)LIKE\s+['"]%`)
	wildcardJoinsPattern   = regexp.MustCompile(`(?i)SELECT\s+\*.*JOIN.*JOIN.*JOIN`)
	mediumCostPattern      = regexp.MustCompile(`(?i)\bJOIN\b|\bGROUP\s+BY\b|\bORDER\s+BY\b|\bDISTINCT\b`)
)

// Validate statically inspects a candidate query and returns the safety
// verdict together with the cleaned, execution-ready text. Errors accumulate
// (no short-circuit on the first violation); warnings never affect validity.
func Validate(rawSQL string) models.ValidationOutcome {
	if strings.TrimSpace(rawSQL) == "" {
		return models.ValidationOutcome{
			Valid:         false,
			Errors:        []string{"Empty SQL query"},
			EstimatedCost: models.CostLow,
		}
	}

	cleaned := Clean(rawSQL)

	var errs []string
	for _, pattern := range blockedPatterns {
		if pattern.MatchString(cleaned) {
			errs = append(errs, fmt.Sprintf("Blocked operation detected: %s", pattern.String()))
		}
	}

	warnings := collectWarnings(cleaned)

	// Independent of the blocked-keyword set: the statement must be read-only.
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(cleaned)), "SELECT") {
		errs = append(errs, "Only SELECT queries are allowed")
	}

	// Cost is estimated before the row cap is appended, on the query as generated.
	cost := estimateCost(cleaned)

	cleaned, warnings = applyRowCap(cleaned, warnings)

	return models.ValidationOutcome{
		Valid:         len(errs) == 0,
		SQL:           cleaned,
		Errors:        errs,
		Warnings:      warnings,
		EstimatedCost: cost,
	}
}

// Clean strips comments, collapses whitespace, and removes trailing
// statement separators. The result is the text used for every subsequent
// check and for execution.
func Clean(rawSQL string) string {
	s := lineCommentPattern.ReplaceAllString(rawSQL, "")
	s = blockCommentPattern.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ";"))
}

func collectWarnings(cleaned string) []string {
	var warnings []string

	if wildcardPattern.MatchString(cleaned) {
		warnings = append(warnings, "Using SELECT * - consider specifying columns")
	}
	if hasLargeIntOutsideLimit(cleaned) {
		warnings = append(warnings, "Large number detected - verify if intentional")
	}
	if len(joinPattern.FindAllStringIndex(cleaned, -1)) >= 3 {
		warnings = append(warnings, "Multiple JOINs detected - may be slow")
	}

	return warnings
}

// hasLargeIntOutsideLimit reports whether a 4+ digit literal appears anywhere
// other than directly after a LIMIT keyword. Go's regexp has no lookbehind,
// so the preceding text is inspected per match.
func hasLargeIntOutsideLimit(cleaned string) bool {
	for _, loc := range largeIntPattern.FindAllStringIndex(cleaned, -1) {
		prefix := strings.ToUpper(strings.TrimRight(cleaned[:loc[0]], " \t"))
		if !strings.HasSuffix(prefix, "LIMIT") {
			return true
		}
	}
	return false
}

// applyRowCap appends the default row cap to queries with no explicit
// row-limiting clause. Aggregate queries without grouping produce a single
// summary row and are exempt; aggregate queries WITH a GROUP BY are not,
// deliberately matching the long-standing behavior of this rule.
func applyRowCap(cleaned string, warnings []string) (string, []string) {
	if limitPattern.MatchString(cleaned) {
		return cleaned, warnings
	}
	if aggregatePattern.MatchString(cleaned) && !groupByPattern.MatchString(cleaned) {
		return cleaned, warnings
	}
	capped := fmt.Sprintf("%s LIMIT %d", strings.TrimRight(cleaned, "; "), DefaultRowLimit)
	warnings = append(warnings, fmt.Sprintf("Added LIMIT %d to prevent large result sets", DefaultRowLimit))
	return capped, warnings
}

func estimateCost(cleaned string) models.CostTier {
	switch {
	case wildcardJoinsPattern.MatchString(cleaned),
		notInPattern.MatchString(cleaned),
		leadingWildcardPattern.MatchString(cleaned):
		return models.CostHigh
	case mediumCostPattern.MatchString(cleaned):
		return models.CostMedium
	default:
		return models.CostLow
	}
}
