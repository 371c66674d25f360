package usage

import (
	"context"

	"github.com/Ame-28/AI-Vision-Analyzer/internal/identity"
)

// Unlimited is the limit passed for premium identities. Consumption is
// still counted so usage reporting and analytics stay meaningful; the
// store just never rejects.
const Unlimited int64 = -1

// Decision is the outcome of a TryConsume call.
type Decision struct {
	Admitted bool
	// Used is the counter value after the call: post-increment when
	// admitted, unchanged when rejected.
	Used int64
}

// Store tracks analyses consumed per identity.
//
// TryConsume is the only mutating operation on the request path and
// must be atomic per identity: check-then-increment is a single
// indivisible step, and no more than limit admits can ever occur for a
// limited identity. Calls for different identities must not serialize
// against each other.
//
// Reset is the administrative counter reset (billing-cycle rollover);
// it never runs on the request path.
type Store interface {
	Peek(ctx context.Context, id identity.Identity) (int64, error)
	TryConsume(ctx context.Context, id identity.Identity, limit int64) (Decision, error)
	Reset(ctx context.Context, id identity.Identity) error
}
