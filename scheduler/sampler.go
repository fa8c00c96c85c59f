package scheduler

import "context"

// Sampler is the interface the scheduler's sample pool drives (spec.md
// §4.J). Sample draws one new fact and installs it into the carrier and
// signature tables, returning false once it declines to draw (e.g. the
// carrier has no room left for the ob it would need).
type Sampler interface {
	Sample(ctx context.Context) (bool, error)
}
