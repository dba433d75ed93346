package domain

// EffectFailure names a best-effort write that did not succeed.
type EffectFailure struct {
	Effect string
	Err    error
}

// Effects reports the outcome of best-effort side effects of an operation.
// The primary write of an operation is never listed here.
type Effects struct {
	Attempted int
	Failed    []EffectFailure
}

// Record counts an attempted effect and keeps its error if any.
func (e *Effects) Record(effect string, err error) {
	e.Attempted++
	if err != nil {
		e.Failed = append(e.Failed, EffectFailure{Effect: effect, Err: err})
	}
}

// OK reports whether every attempted effect succeeded.
func (e Effects) OK() bool {
	return len(e.Failed) == 0
}
