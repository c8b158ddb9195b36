package effects

import "context"

// Failure records a named side effect that did not take. Side effects run
// after the primary operation has committed, so a Failure never implies a
// rollback of the primary result.
type Failure struct {
	Name string
	Err  error
}

func (f Failure) Error() string {
	return f.Name + ": " + f.Err.Error()
}

type namedEffect struct {
	name string
	fn   func(ctx context.Context) error
}

// List collects side effects to run once the primary operation has
// succeeded. Failures are gathered, not propagated; the caller decides how
// to surface them.
type List struct {
	effects []namedEffect
}

func (l *List) Add(name string, fn func(ctx context.Context) error) {
	l.effects = append(l.effects, namedEffect{name: name, fn: fn})
}

// Run executes every registered effect in order and returns the failures.
func (l *List) Run(ctx context.Context) []Failure {
	var failed []Failure
	for _, e := range l.effects {
		if err := e.fn(ctx); err != nil {
			failed = append(failed, Failure{Name: e.name, Err: err})
		}
	}
	return failed
}
