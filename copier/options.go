package copier

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/readpack/internal/metrics"
	"github.com/arloliu/readpack/internal/options"
)

// settings is shared by Copier and Transformer.
type settings struct {
	logger  *zap.Logger
	policy  ErrorPolicy
	metrics *metrics.CopyMetrics
}

// Option configures a Copier or a Transformer.
type Option = options.Option[*settings]

func newSettings(opts []Option) (*settings, error) {
	s := &settings{
		logger: zap.NewNop(),
		policy: PolicyContinue,
	}

	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	return s, nil
}

// WithLogger sets the logger for per-batch errors and diagnostics.
// A nil logger keeps the default no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	})
}

// WithErrorPolicy sets how per-batch errors affect the run.
// The default is PolicyContinue.
func WithErrorPolicy(policy ErrorPolicy) Option {
	return options.New(func(s *settings) error {
		if policy != PolicyContinue && policy != PolicyAbort {
			return fmt.Errorf("invalid error policy %s", policy)
		}
		s.policy = policy

		return nil
	})
}

// WithMetrics records copy progress on m.
func WithMetrics(m *metrics.CopyMetrics) Option {
	return options.NoError(func(s *settings) {
		s.metrics = m
	})
}

// reporter applies the error policy to stage errors and counts them.
type reporter struct {
	*settings
	count int
}

// report logs err and returns it under PolicyAbort, nil otherwise.
func (r *reporter) report(err *StageError) error {
	r.log(err)
	if r.policy == PolicyAbort {
		return err
	}

	return nil
}

// fatal logs err and returns it under either policy.
func (r *reporter) fatal(err *StageError) error {
	r.log(err)

	return err
}

func (r *reporter) log(err *StageError) {
	r.count++
	r.metrics.Error(string(err.Stage))

	fields := []zap.Field{
		zap.String("stage", string(err.Stage)),
		zap.Int("batch", err.Batch),
		zap.Error(err.Err),
	}
	if err.Row >= 0 {
		fields = append(fields, zap.Int("row", err.Row))
	}
	r.logger.Error("copy error", fields...)
}
