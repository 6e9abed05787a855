package reconciler

import (
	"github.com/agentstation/utc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/candimap/pkg/errors"
	"github.com/agentstation/candimap/pkg/logging"
)

// options configures a reconciler.
type options struct {
	logger   *zerolog.Logger
	clock    func() utc.Time
	runID    func() string
	tracking bool
}

func defaultOptions() *options {
	return &options{
		logger:   logging.Default(),
		clock:    utc.Now,
		runID:    uuid.NewString,
		tracking: true,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithLogger sets the logger for stage and summary output.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return &errors.ValidationError{
				Field:   "logger",
				Message: "cannot be nil",
			}
		}
		o.logger = logger
		return nil
	}
}

// WithClock sets the clock used for run timestamps.
func WithClock(clock func() utc.Time) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{
				Field:   "clock",
				Message: "cannot be nil",
			}
		}
		o.clock = clock
		return nil
	}
}

// WithRunID fixes the run ID instead of generating a UUID per run.
func WithRunID(id string) Option {
	return func(o *options) error {
		if id == "" {
			return &errors.ValidationError{
				Field:   "runID",
				Message: "cannot be empty",
			}
		}
		o.runID = func() string { return id }
		return nil
	}
}

// WithProvenance enables the audit trail.
func WithProvenance(enabled bool) Option {
	return func(o *options) error {
		o.tracking = enabled
		return nil
	}
}
