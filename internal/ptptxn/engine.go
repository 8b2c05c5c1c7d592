// Package ptptxn implements the PTP transaction engine: one
// command/[data]/response exchange over an open session, synchronized
// by a single session-wide lock and classified only as far as "did the
// container framing hold together" — response-code interpretation is
// the session layer's job (ptpsession).
package ptptxn

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/defiant-labs/ptpfs/internal/ptpwire"
	"github.com/defiant-labs/ptpfs/internal/usbtransport"
	"github.com/defiant-labs/ptpfs/ptperr"
)

// Phase describes whether a transaction carries a data container, and
// in which direction.
type Phase int

const (
	NoData Phase = iota
	Send
	Receive
)

// maxSegmentSize bounds a single bulk write/read chunk. Mirrors the
// teacher's IOBufferSizePerTag / DefaultMaxIOSize sizing discipline,
// scaled up since a single PTP object transfer commonly exceeds 64KB.
const maxSegmentSize = 1 << 20

// receiveChunkSize is the fixed chunk size used once a Receive data
// container's header has been parsed and the remaining payload is
// drained incrementally.
const receiveChunkSize = size16k

// Outcome is the raw result of a transaction: the response container's
// code and parameters, and (for a Receive phase) the payload received
// in the data container.
type Outcome struct {
	ResponseCode   uint16
	ResponseParams [5]uint32
	Payload        *BlockList
}

// Engine drives one open session's transactions. The zero value is not
// usable; construct with NewEngine.
type Engine struct {
	transport usbtransport.Transport
	sessionID uint32

	mu       sync.Mutex
	nextTxID atomic.Uint32
}

// NewEngine returns an Engine bound to transport for the named session.
// sessionID is threaded into every error for diagnostics; it is not
// otherwise interpreted here (OpenSession's own session_id=0 framing is
// the caller's responsibility — see ptpsession).
func NewEngine(transport usbtransport.Transport, sessionID uint32) *Engine {
	return &Engine{transport: transport, sessionID: sessionID}
}

// Run executes one transaction: assigns the next transaction ID,
// issues the command, carries out the data phase if any, and reads
// exactly one response container. The session lock is held for the
// entire call (§5): only one transaction may be in flight on a session
// at a time.
//
// expectedSize, when >0 and phase==Receive, presizes the returned
// BlockList's block index for that many bytes plus one block of slack;
// <=0 presizes it for a 1MiB soft cap, past which it grows.
func (e *Engine) Run(ctx context.Context, opCode uint16, params []uint32, phase Phase, sendBytes []byte, expectedSize int64) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	const op = "ptptxn.Run"
	txID := e.nextTxID.Load()
	e.nextTxID.Add(1)

	cmd := ptpwire.EncodeCommand(opCode, txID, params)
	if err := e.transport.Write(ctx, cmd); err != nil {
		return Outcome{}, e.wrap(op, txID, err)
	}

	if phase == Send {
		if err := e.sendData(ctx, opCode, txID, sendBytes); err != nil {
			return Outcome{}, e.wrap(op, txID, err)
		}
	}

	var payload *BlockList
	if phase == Receive {
		bl, err := e.receiveData(ctx, opCode, txID, expectedSize)
		if err != nil {
			return Outcome{}, e.wrap(op, txID, err)
		}
		payload = bl
	}

	outcome, err := e.receiveResponse(ctx, txID)
	if err != nil {
		if payload != nil {
			payload.Release()
		}
		return Outcome{}, e.wrap(op, txID, err)
	}
	outcome.Payload = payload
	return outcome, nil
}

func (e *Engine) wrap(op string, txID uint32, err error) error {
	wrapped := ptperr.Wrap(op, err)
	wrapped.SessionID = e.sessionID
	wrapped.TransactionID = txID
	return wrapped
}

// sendData writes sendBytes as one or more data-container segments: the
// container header (carrying the true total length) is written exactly
// once, prepended to the first segment; any remaining bytes follow as
// raw continuation writes with no further framing.
func (e *Engine) sendData(ctx context.Context, opCode uint16, txID uint32, sendBytes []byte) error {
	header := ptpwire.EncodeDataHeader(opCode, txID, uint32(12+len(sendBytes)))
	firstChunkLen := len(sendBytes)
	if maxSegmentSize-len(header) < firstChunkLen {
		firstChunkLen = maxSegmentSize - len(header)
	}
	first := append(header, sendBytes[:firstChunkLen]...)
	if err := e.transport.Write(ctx, first); err != nil {
		return err
	}

	remaining := sendBytes[firstChunkLen:]
	for len(remaining) > 0 {
		chunkLen := len(remaining)
		if chunkLen > maxSegmentSize {
			chunkLen = maxSegmentSize
		}
		if err := e.transport.Write(ctx, remaining[:chunkLen]); err != nil {
			return err
		}
		remaining = remaining[chunkLen:]
	}
	return nil
}

// receiveData reads a data container: the first transport.Read may
// return header bytes only, header+partial payload, or (for a small
// payload) the entire container in one call. Remaining payload bytes
// are drained in fixed-size pooled chunks.
func (e *Engine) receiveData(ctx context.Context, opCode uint16, txID uint32, expectedSize int64) (*BlockList, error) {
	const op = "ptptxn.receiveData"

	acc, err := e.readAtLeast(ctx, 12)
	if err != nil {
		return nil, err
	}
	hdr, err := ptpwire.DecodeHeader(acc)
	if err != nil {
		return nil, err
	}
	if hdr.Type != ptpwire.ContainerData {
		return nil, ptperr.New(op, ptperr.CodeUnexpectedType, "expected data container")
	}
	if hdr.Code != opCode {
		return nil, &ptperr.Error{Op: op, Code: ptperr.CodeCodeMismatch, ResponseCode: hdr.Code, Msg: "data container code mismatch"}
	}
	if hdr.TransactionID != txID {
		return nil, ptperr.New(op, ptperr.CodeTxIDMismatch, "data container transaction id mismatch")
	}

	payloadTotal := int64(hdr.Length) - 12
	blockCap := int64(size1m / receiveChunkSize)
	if expectedSize > 0 {
		blockCap = expectedSize/receiveChunkSize + 2
	}
	bl := &BlockList{blocks: make([]block, 0, blockCap)}

	already := acc[12:]
	if int64(len(already)) > payloadTotal {
		already = already[:payloadTotal]
	}
	if len(already) > 0 {
		cp := make([]byte, len(already))
		copy(cp, already)
		bl.append(cp, false)
	}

	remaining := payloadTotal - int64(len(already))
	for remaining > 0 {
		readSize := receiveChunkSize
		if int64(readSize) > remaining {
			readSize = int(remaining)
		}
		chunk, err := e.transport.Read(ctx, readSize)
		if err != nil {
			bl.Release()
			return nil, err
		}
		if int64(len(chunk)) > remaining {
			chunk = chunk[:remaining]
		}
		buf := getBuffer(len(chunk))
		copy(buf, chunk)
		bl.append(buf, true)
		remaining -= int64(len(chunk))
	}

	return bl, nil
}

// receiveResponse reads exactly one response container.
func (e *Engine) receiveResponse(ctx context.Context, txID uint32) (Outcome, error) {
	const op = "ptptxn.receiveResponse"

	acc, err := e.readAtLeast(ctx, 12)
	if err != nil {
		return Outcome{}, err
	}
	hdr, err := ptpwire.DecodeHeader(acc)
	if err != nil {
		return Outcome{}, err
	}
	if hdr.Type != ptpwire.ContainerResponse {
		return Outcome{}, ptperr.New(op, ptperr.CodeUnexpectedType, "expected response container")
	}
	if hdr.TransactionID != txID {
		return Outcome{}, ptperr.New(op, ptperr.CodeTxIDMismatch, "response transaction id mismatch")
	}

	paramBytes := acc[12:]
	need := int(hdr.Length) - 12
	for len(paramBytes) < need {
		chunk, err := e.transport.Read(ctx, need-len(paramBytes))
		if err != nil {
			return Outcome{}, err
		}
		paramBytes = append(paramBytes, chunk...)
	}
	params := ptpwire.DecodeParams(paramBytes[:need])

	var out Outcome
	out.ResponseCode = hdr.Code
	for i := 0; i < len(params) && i < 5; i++ {
		out.ResponseParams[i] = params[i]
	}
	return out, nil
}

// readAtLeast reads from the transport until at least n bytes have
// accumulated, returning the accumulated buffer (which may be longer
// than n: it always ends on a transport.Read boundary).
func (e *Engine) readAtLeast(ctx context.Context, n int) ([]byte, error) {
	var acc []byte
	for len(acc) < n {
		chunk, err := e.transport.Read(ctx, maxSegmentSize)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			return nil, ptperr.New("ptptxn.readAtLeast", ptperr.CodeTruncated, "transport returned no data")
		}
		acc = append(acc, chunk...)
	}
	return acc, nil
}
