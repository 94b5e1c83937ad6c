package delta

// Option configures delta computation
type Option func(*options)

type options struct {
	heuristicRenames bool
	minModelFields   int
}

func newOptions(opts []Option) *options {
	result := &options{heuristicRenames: true, minModelFields: 1}
	for _, opt := range opts {
		opt(result)
	}
	return result
}

// WithHeuristicRenames enables or disables rename detection for entities without ids
func WithHeuristicRenames(enabled bool) Option {
	return func(o *options) {
		o.heuristicRenames = enabled
	}
}

// WithMinModelFields sets the minimum field count for a model without id to be considered renamed
func WithMinModelFields(count int) Option {
	return func(o *options) {
		o.minModelFields = count
	}
}
