package kdlt

// DefaultMaxDepth caps template-expansion and build recursion so that a
// pathological document reports depth_exceeded instead of exhausting the
// stack.
const DefaultMaxDepth = 1000

// ParseOpt bundles per-call options shared by the template engine and the
// builder.
type ParseOpt struct {
	// MaxDepth overrides DefaultMaxDepth when positive.
	MaxDepth int
}

// EffectiveMaxDepth resolves the recursion cap for this call.
func (o ParseOpt) EffectiveMaxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}

// FirstOpt picks the first option of a variadic list, or the zero value.
func FirstOpt(opts []ParseOpt) ParseOpt {
	if len(opts) > 0 {
		return opts[0]
	}
	return ParseOpt{}
}
