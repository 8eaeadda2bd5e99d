package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	dErrors "idcard/pkg/domain-errors"
	"idcard/pkg/platform/sentinel"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Errors    int32
	Conflicts int32
	NotFounds int32
	// Rejected counts attempts refused by the transition table.
	Rejected int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Conflicts + r.NotFounds + r.Rejected
}

// Classify buckets an error the same way RunConcurrent does. Store sentinels
// and service domain codes are both recognised.
func Classify(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, sentinel.ErrConflict), dErrors.HasCode(err, dErrors.CodeConflict):
		return "conflict"
	case errors.Is(err, sentinel.ErrNotFound), dErrors.HasCode(err, dErrors.CodeNotFound):
		return "not_found"
	case dErrors.HasCode(err, dErrors.CodeInvalidTransition):
		return "rejected"
	default:
		return "error"
	}
}

// RunConcurrent executes fn in parallel goroutines and collects results.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, errs, conflicts, notFounds, rejected atomic.Int32

	for i := range goroutines {
		wg.Go(func() {
			switch Classify(fn(i)) {
			case "success":
				successes.Add(1)
			case "conflict":
				conflicts.Add(1)
			case "not_found":
				notFounds.Add(1)
			case "rejected":
				rejected.Add(1)
			default:
				errs.Add(1)
			}
		})
	}
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Errors:    errs.Load(),
		Conflicts: conflicts.Load(),
		NotFounds: notFounds.Load(),
		Rejected:  rejected.Load(),
	}
}
