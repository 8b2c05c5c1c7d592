package ptpsession

import (
	"context"
	"sync"

	"github.com/defiant-labs/ptpfs/internal/ptptxn"
	"github.com/defiant-labs/ptpfs/internal/ptpwire"
	"github.com/defiant-labs/ptpfs/internal/usbtransport"
	"github.com/defiant-labs/ptpfs/ptperr"
)

// State is a session's position in its lifecycle (§4.7).
type State int

const (
	StateClosed State = iota
	StateOpening
	StateOpen
	StateClosing
	StateBroken
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// Session is a typed façade over the transaction engine for one open
// PTP session against one device. Construct with Open.
type Session struct {
	transport usbtransport.Transport
	engine    *ptptxn.Engine
	params    Params
	logger    Logger

	mu         sync.RWMutex
	state      State
	deviceInfo ptpwire.DeviceInfo
	preferEK   bool
}

// Open performs the session handshake: an optional pre-OpenSession
// GetDeviceInfo probe (Params.PreProbeDeviceInfo), OpenSession, and the
// mandatory post-open GetDeviceInfo fetch that is cached for the
// session's lifetime and used to decide EK opcode gating once.
func Open(ctx context.Context, transport usbtransport.Transport, params Params, opts *Options) (*Session, error) {
	const op = "ptpsession.Open"

	if opts == nil {
		opts = &Options{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if params.ExpectedSessionID == 0 {
		params.ExpectedSessionID = DefaultParams().ExpectedSessionID
	}

	s := &Session{
		transport: transport,
		params:    params,
		logger:    opts.Logger,
		state:     StateClosed,
	}

	if params.PreProbeDeviceInfo {
		// A pre-open probe has no session yet, so it must not consume
		// a transaction id from the session's own sequence (OpenSession
		// requires transaction_id=0 on the wire). Use a throwaway
		// engine scoped to the probe alone.
		probe := newEngine(transport, 0)
		probeSession := &Session{transport: transport, engine: probe, logger: opts.Logger}
		if _, err := probeSession.fetchDeviceInfo(ctx); err != nil {
			s.logf("pre-probe GetDeviceInfo failed: %v", err)
		}
	}

	s.engine = newEngine(transport, params.ExpectedSessionID)
	s.setState(StateOpening)
	out, err := s.engine.Run(ctx, ptpwire.OpOpenSession, []uint32{params.ExpectedSessionID}, ptptxn.NoData, nil, 0)
	if err != nil {
		s.setState(StateBroken)
		return nil, ptperr.Wrap(op, err)
	}
	if out.ResponseCode != ptperr.RC_OK {
		s.setState(StateClosed)
		return nil, ptperr.NewResponse(op, 0, out.ResponseCode)
	}

	info, err := s.fetchDeviceInfo(ctx)
	if err != nil {
		s.setState(StateBroken)
		return nil, ptperr.Wrap(op, err)
	}

	s.mu.Lock()
	s.deviceInfo = info
	s.preferEK = info.SupportsOperation(ptpwire.OpEKSendObjectInfo) && info.SupportsOperation(ptpwire.OpEKSendObject)
	s.state = StateOpen
	s.mu.Unlock()

	s.logf("session open: manufacturer=%q model=%q preferEK=%v", info.Manufacturer, info.Model, s.preferEK)
	return s, nil
}

// Close issues CloseSession and transitions to Closed regardless of the
// peer's response (a device that rejects CloseSession has nothing left
// worth keeping the session open for).
func (s *Session) Close(ctx context.Context) error {
	const op = "ptpsession.Close"
	if s.State() != StateOpen {
		return nil
	}
	s.setState(StateClosing)
	_, err := s.engine.Run(ctx, ptpwire.OpCloseSession, nil, ptptxn.NoData, nil, 0)
	s.setState(StateClosed)
	if err != nil {
		return ptperr.Wrap(op, err)
	}
	return nil
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// DeviceInfo returns the DeviceInfo fetched at session open. It is
// never re-fetched (§3 lifecycle: "DeviceInfo fetched once per
// session").
func (s *Session) DeviceInfo() ptpwire.DeviceInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceInfo
}

// Params returns the configuration the session was opened with, e.g.
// for a tree layer to read CreateReconciliation when constructing
// itself against this session.
func (s *Session) Params() Params {
	return s.params
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debugf(format, args...)
	}
}

// fetchDeviceInfo issues GetDeviceInfo and decodes the response. Legal
// both as a pre-open probe and as the mandatory post-open fetch.
func (s *Session) fetchDeviceInfo(ctx context.Context) (ptpwire.DeviceInfo, error) {
	const op = "GetDeviceInfo"
	out, err := s.engine.Run(ctx, ptpwire.OpGetDeviceInfo, nil, ptptxn.Receive, nil, 0)
	if err != nil {
		return ptpwire.DeviceInfo{}, s.classifyEngineErr(op, err)
	}
	defer out.Payload.Release()
	if out.ResponseCode != ptperr.RC_OK {
		return ptpwire.DeviceInfo{}, ptperr.NewResponse(op, 0, out.ResponseCode)
	}

	var info ptpwire.DeviceInfo
	if err := info.UnmarshalBinary(out.Payload.Bytes()); err != nil {
		return ptpwire.DeviceInfo{}, ptperr.Wrap(op, err)
	}
	return info, nil
}

// run checks that the session is Open (the GetDeviceInfo probe path
// bypasses run and calls the engine directly) before delegating to the
// engine. With Params.RetryOnStall set, a Stalled failure clears the
// halt on both endpoints and the transaction is retried once. run
// marks the session Broken on a transport-disconnect, transport-timeout
// or transaction-id-mismatch failure (§4.7: these are terminal, no
// in-core recovery).
func (s *Session) run(ctx context.Context, op string, opCode uint16, params []uint32, phase ptptxn.Phase, sendBytes []byte, expectedSize int64) (ptptxn.Outcome, error) {
	if s.State() != StateOpen {
		return ptptxn.Outcome{}, ptperr.New(op, ptperr.CodeSessionNotOpen, "session is not open")
	}
	out, err := s.engine.Run(ctx, opCode, params, phase, sendBytes, expectedSize)
	if err != nil && s.params.RetryOnStall && ptperr.IsCode(err, ptperr.CodeTransportStalled) {
		s.logf("%s: endpoint stalled, clearing halt and retrying once", op)
		_ = s.transport.ClearHalt(usbtransport.DirectionOut)
		_ = s.transport.ClearHalt(usbtransport.DirectionIn)
		out, err = s.engine.Run(ctx, opCode, params, phase, sendBytes, expectedSize)
	}
	if err != nil {
		return ptptxn.Outcome{}, s.classifyEngineErr(op, err)
	}
	return out, nil
}

func (s *Session) classifyEngineErr(op string, err error) error {
	wrapped := ptperr.Wrap(op, err)
	if wrapped.Code == ptperr.CodeTransportDisconnected || wrapped.Code == ptperr.CodeTransportTimeout || wrapped.Code == ptperr.CodeTxIDMismatch {
		s.setState(StateBroken)
	}
	return wrapped
}
