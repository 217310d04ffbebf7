package copier

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorPolicy(t *testing.T) {
	p, err := ParseErrorPolicy("continue")
	require.NoError(t, err)
	require.Equal(t, PolicyContinue, p)

	p, err = ParseErrorPolicy("ABORT")
	require.NoError(t, err)
	require.Equal(t, PolicyAbort, p)
	require.Equal(t, "abort", p.String())

	_, err = ParseErrorPolicy("retry")
	require.Error(t, err)
}

func TestStageError(t *testing.T) {
	err := &StageError{Stage: StageSignal, Batch: 2, Row: 5, Err: errInjected}
	require.Equal(t, "signal: batch 2 row 5: injected failure", err.Error())
	require.ErrorIs(t, err, errInjected)

	err = &StageError{Stage: StageAppend, Batch: 1, Row: -1, Err: errInjected}
	require.Equal(t, "append: batch 1: injected failure", err.Error())

	err = &StageError{Stage: StageRunInfo, Batch: 3, Row: -1, Err: errInjected}
	require.Equal(t, "run_info 3: injected failure", err.Error())
}

func TestWithErrorPolicy_Invalid(t *testing.T) {
	_, err := NewTransformer(NewInterner(newFakeDest()), WithErrorPolicy(ErrorPolicy(9)))
	require.Error(t, err)
}
