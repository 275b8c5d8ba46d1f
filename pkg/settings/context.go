package settings

import "context"

type runKey struct{}

// IntoContext attaches the run settings for one command invocation to ctx.
func IntoContext(ctx context.Context, s *Run) context.Context {
	return context.WithValue(ctx, runKey{}, s)
}

// FromContext returns the run settings stored by IntoContext. ok is false
// when ctx carries none.
func FromContext(ctx context.Context) (s *Run, ok bool) {
	s, ok = ctx.Value(runKey{}).(*Run)
	return s, ok
}
