// Package ptpsession provides typed operation wrappers over the
// transaction engine: opening and closing a session, querying storages
// and objects, and moving object data in and out, all classified
// against PTP response codes rather than raw container bytes.
package ptpsession

import (
	"context"

	"github.com/defiant-labs/ptpfs/internal/ptptxn"
	"github.com/defiant-labs/ptpfs/internal/usbtransport"
)

// CreateReconciliationPolicy selects how Create resolves a zero-handle
// SendObjectInfo response (§9 open question, the original source's
// "pick the first" behavior kept opt-in rather than hard-wired).
type CreateReconciliationPolicy int

const (
	// CacheInconsistentOnAmbiguity is the default: more than one newly
	// appeared handle after a zero-handle create is reported as an
	// error rather than guessed at.
	CacheInconsistentOnAmbiguity CreateReconciliationPolicy = iota
	// FirstNewHandle silently picks the first newly appeared handle,
	// matching the original mmptp.cpp behavior.
	FirstNewHandle
)

// Params configures a Session. The zero value is usable; unset fields
// fall back to the documented defaults.
type Params struct {
	// PreProbeDeviceInfo allows GetDeviceInfo before OpenSession, as a
	// documented probe. Default false: GetDeviceInfo is otherwise only
	// legal once a session is open.
	PreProbeDeviceInfo bool

	// CreateReconciliation selects the zero-handle reconciliation
	// policy used by a tree layer's create algorithm.
	CreateReconciliation CreateReconciliationPolicy

	// RetryOnStall permits one retry of a transaction whose transport
	// call failed with Stalled, after a ClearHalt. Default false: a
	// stall is surfaced to the caller untouched.
	RetryOnStall bool

	// ExpectedSessionID is written into the OpenSession command params;
	// most devices ignore the requested ID and assign 1, but PIMA
	// 15740:2000 leaves this caller-supplied.
	ExpectedSessionID uint32
}

// DefaultParams returns the conservative defaults described above.
func DefaultParams() Params {
	return Params{
		ExpectedSessionID: 1,
	}
}

// Options bundles constructor-time collaborators that are not part of
// protocol-visible configuration.
type Options struct {
	// Context is carried for the caller's own use; Open does not read
	// it; Open and every operation take their own ctx argument instead.
	Context context.Context

	Logger Logger
}

// Logger is the structured logging surface a Session calls into. A nil
// Logger means no logging (mirrors the teacher's optional Logger
// pattern in Options).
type Logger interface {
	Printf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// newEngine is split out so tests can substitute a MockTransport
// without touching gousb.
func newEngine(transport usbtransport.Transport, sessionID uint32) *ptptxn.Engine {
	return ptptxn.NewEngine(transport, sessionID)
}
