package copier

import (
	"fmt"
	"strings"
)

// ErrorPolicy decides what a per-batch error does to the run.
type ErrorPolicy uint8

const (
	// PolicyContinue logs the error, substitutes a sentinel where a value is
	// missing and carries on with the next row or batch.
	PolicyContinue ErrorPolicy = iota
	// PolicyAbort stops the run at the first error and returns it.
	PolicyAbort
)

func (p ErrorPolicy) String() string {
	switch p {
	case PolicyContinue:
		return "continue"
	case PolicyAbort:
		return "abort"
	default:
		return fmt.Sprintf("ErrorPolicy(%d)", uint8(p))
	}
}

// ParseErrorPolicy parses "continue" or "abort", ignoring case.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(s) {
	case "continue":
		return PolicyContinue, nil
	case "abort":
		return PolicyAbort, nil
	default:
		return 0, fmt.Errorf("unknown error policy %q", s)
	}
}

// Stage names the copy step an error occurred in.
type Stage string

const (
	StageBatch   Stage = "batch"
	StageRowInfo Stage = "row_info"
	StageSignal  Stage = "signal"
	StageResolve Stage = "resolve"
	StageIntern  Stage = "intern"
	StageAppend  Stage = "append"
	StageRunInfo Stage = "run_info"
)

// StageError is an error raised while copying one batch, row or run info.
// Row is -1 when the error is not tied to a row. For StageRunInfo, Batch holds
// the run-info index.
type StageError struct {
	Stage Stage
	Batch int
	Row   int
	Err   error
}

func (e *StageError) Error() string {
	if e.Stage == StageRunInfo {
		return fmt.Sprintf("%s %d: %v", e.Stage, e.Batch, e.Err)
	}
	if e.Row < 0 {
		return fmt.Sprintf("%s: batch %d: %v", e.Stage, e.Batch, e.Err)
	}

	return fmt.Sprintf("%s: batch %d row %d: %v", e.Stage, e.Batch, e.Row, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
