package models

import (
	"fmt"
	"sort"
	"strings"

	dErrors "idcard/pkg/domain-errors"
)

// ItemResult is the outcome for one id in a bulk request.
type ItemResult struct {
	ID      string
	Success bool
	Skipped bool
	Err     error
	Citizen *Citizen
}

// BulkResult collects per-id outcomes in input order.
type BulkResult struct {
	Items     []ItemResult
	Succeeded int
	Failed    int
	Skipped   int
}

// NewBulkResult tallies items.
func NewBulkResult(items []ItemResult) *BulkResult {
	r := &BulkResult{Items: items}
	for _, it := range items {
		switch {
		case it.Skipped:
			r.Skipped++
		case it.Success:
			r.Succeeded++
		default:
			r.Failed++
		}
	}
	return r
}

// AllSucceeded is true when no item failed. Skipped items are not failures.
func (r *BulkResult) AllSucceeded() bool {
	return r.Failed == 0
}

// Summary renders e.g. "3 of 5 approved, 2 failed: not found".
func (r *BulkResult) Summary(verb string) string {
	total := len(r.Items)
	msg := fmt.Sprintf("%d of %d %s", r.Succeeded, total, verb)
	if r.Skipped > 0 {
		msg += fmt.Sprintf(", %d skipped", r.Skipped)
	}
	if r.Failed > 0 {
		msg += fmt.Sprintf(", %d failed: %s", r.Failed, strings.Join(r.failureReasons(), ", "))
	}
	return msg
}

func (r *BulkResult) failureReasons() []string {
	seen := map[string]struct{}{}
	for _, it := range r.Items {
		if it.Success || it.Skipped || it.Err == nil {
			continue
		}
		seen[reasonFor(it.Err)] = struct{}{}
	}
	reasons := make([]string, 0, len(seen))
	for k := range seen {
		reasons = append(reasons, k)
	}
	sort.Strings(reasons)
	return reasons
}

func reasonFor(err error) string {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeNotFound:
		return "not found"
	case dErrors.CodeInvalidTransition:
		return "invalid transition"
	case dErrors.CodeConflict:
		return "concurrent update"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodeInvalidInput, dErrors.CodeValidation:
		return "invalid input"
	default:
		return "storage failure"
	}
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
