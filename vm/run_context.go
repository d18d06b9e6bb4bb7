package vm

// RunContext is the register window the interpreter exposes at a hint site:
// the allocation pointer AP and the frame pointer FP, both addresses into
// the execution segment.
type RunContext struct {
	Ap Relocatable
	Fp Relocatable
}

// NewRunContext builds a register window over the given execution segment
// positions.
func NewRunContext(ap, fp Relocatable) *RunContext {
	return &RunContext{Ap: ap, Fp: fp}
}

// GetAp returns the current allocation pointer.
func (rc *RunContext) GetAp() Relocatable {
	return rc.Ap
}

// GetFp returns the current frame pointer.
func (rc *RunContext) GetFp() Relocatable {
	return rc.Fp
}
