package validate

import "github.com/viant/cdm/delta"

// Option configures a session
type Option func(*options)

type options struct {
	warnMissingIDs bool
	warnUnused     bool
	delta          []delta.Option
}

func newOptions(opts []Option) *options {
	result := &options{warnUnused: true}
	for _, opt := range opts {
		opt(result)
	}
	return result
}

// WithMissingIDWarnings enables W005/W006 for definitions of the current file without entity id
func WithMissingIDWarnings(enabled bool) Option {
	return func(o *options) {
		o.warnMissingIDs = enabled
	}
}

// WithUnusedWarnings enables W101 for unused type aliases of the current file
func WithUnusedWarnings(enabled bool) Option {
	return func(o *options) {
		o.warnUnused = enabled
	}
}

// WithDeltaOptions sets options passed to delta computation
func WithDeltaOptions(opts ...delta.Option) Option {
	return func(o *options) {
		o.delta = append(o.delta, opts...)
	}
}
