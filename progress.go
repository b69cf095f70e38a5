package psd

// ControlFlow is returned by a ProgressFunc to say whether the operation
// driving it should keep going.
type ControlFlow int

const (
	Continue ControlFlow = iota
	Break
)

// ProgressFunc receives a task name and a fraction-done in [0,1]. Returning
// Break causes the driving operation to stop and return ErrCancelled.
type ProgressFunc func(task string, fractionDone float64) ControlFlow

// noopProgress is a ProgressFunc that always continues. A nil callback
// behaves the same way: callProgress returns Continue for it.
func noopProgress(string, float64) ControlFlow { return Continue }

func callProgress(fn ProgressFunc, task string, fractionDone float64) ControlFlow {
	if fn == nil {
		return Continue
	}
	return fn(task, fractionDone)
}
