package dataset

import "context"

// Calculator is the boundary to the remote engineering-calculation service.
// gridx treats it as an opaque synchronous call: hand a record in, get the
// recalculated record back. Implementations live outside this repository.
type Calculator interface {
	Recalculate(ctx context.Context, rec Record) (Record, error)
}

// NoopCalculator returns records unchanged. Used when no remote service is
// configured and by tests.
type NoopCalculator struct{}

func (NoopCalculator) Recalculate(_ context.Context, rec Record) (Record, error) {
	return rec, nil
}
