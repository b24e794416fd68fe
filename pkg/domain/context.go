package domain

// Context carries the evaluation environment for validator and condition
// functions: the current request's field values plus any custom per-journey
// data the host wants to expose. The engine builds one per request and never
// retains it between calls.
type Context struct {
	// Values holds the field values visible to this evaluation: stored journey
	// values overlaid with the current submission.
	Values map[string]any

	// Custom holds host-supplied data (e.g. the authenticated user) that
	// validator and condition functions may reference.
	Custom map[string]any
}

// NewContext creates a context over the given field values.
func NewContext(values map[string]any) *Context {
	if values == nil {
		values = make(map[string]any)
	}
	return &Context{
		Values: values,
		Custom: make(map[string]any),
	}
}

// Value returns the current value of a field, or nil if unset.
func (c *Context) Value(key string) any {
	if c == nil || c.Values == nil {
		return nil
	}
	return c.Values[key]
}
