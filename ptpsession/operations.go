package ptpsession

import (
	"context"

	"github.com/defiant-labs/ptpfs/internal/ptptxn"
	"github.com/defiant-labs/ptpfs/internal/ptpwire"
	"github.com/defiant-labs/ptpfs/ptperr"
)

// GetStorageIDs returns every StorageID the device currently reports,
// mounted or not (§3 lifecycle: "queried on demand, never cached").
func (s *Session) GetStorageIDs(ctx context.Context) ([]uint32, error) {
	const op = "GetStorageIDs"
	out, err := s.run(ctx, op, ptpwire.OpGetStorageIDs, nil, ptptxn.Receive, nil, 0)
	if err != nil {
		return nil, err
	}
	defer out.Payload.Release()
	if out.ResponseCode != ptperr.RC_OK {
		return nil, ptperr.NewResponse(op, 0, out.ResponseCode)
	}
	ids, err := ptpwire.UnpackU32Array(out.Payload.Bytes())
	if err != nil {
		return nil, ptperr.Wrap(op, err)
	}
	return ids, nil
}

// GetStorageInfo fetches the StorageInfo dataset for one StorageID.
func (s *Session) GetStorageInfo(ctx context.Context, storageID uint32) (ptpwire.StorageInfo, error) {
	const op = "GetStorageInfo"
	out, err := s.run(ctx, op, ptpwire.OpGetStorageInfo, []uint32{storageID}, ptptxn.Receive, nil, 0)
	if err != nil {
		return ptpwire.StorageInfo{}, err
	}
	defer out.Payload.Release()
	if out.ResponseCode != ptperr.RC_OK {
		return ptpwire.StorageInfo{}, ptperr.NewResponse(op, 0, out.ResponseCode)
	}
	var info ptpwire.StorageInfo
	if err := info.UnmarshalBinary(out.Payload.Bytes()); err != nil {
		return ptpwire.StorageInfo{}, ptperr.Wrap(op, err)
	}
	return info, nil
}

// GetObjectHandles lists object handles on storageID matching
// formatFilter (0 = any format) whose parent is parent
// (ptpwire.RootHandle for root-of-storage, 0 for "every object on the
// storage" per the device-dependent storage-wide workaround described
// in §4.6).
func (s *Session) GetObjectHandles(ctx context.Context, storageID uint32, formatFilter uint16, parent uint32) ([]uint32, error) {
	const op = "GetObjectHandles"
	out, err := s.run(ctx, op, ptpwire.OpGetObjectHandles, []uint32{storageID, uint32(formatFilter), parent}, ptptxn.Receive, nil, 0)
	if err != nil {
		return nil, err
	}
	defer out.Payload.Release()
	if out.ResponseCode != ptperr.RC_OK {
		return nil, ptperr.NewResponse(op, 0, out.ResponseCode)
	}
	handles, err := ptpwire.UnpackU32Array(out.Payload.Bytes())
	if err != nil {
		return nil, ptperr.Wrap(op, err)
	}
	return handles, nil
}

// GetObjectInfo fetches the ObjectInfo dataset for one handle.
func (s *Session) GetObjectInfo(ctx context.Context, handle uint32) (ptpwire.ObjectInfo, error) {
	const op = "GetObjectInfo"
	out, err := s.run(ctx, op, ptpwire.OpGetObjectInfo, []uint32{handle}, ptptxn.Receive, nil, 0)
	if err != nil {
		return ptpwire.ObjectInfo{}, err
	}
	defer out.Payload.Release()
	if out.ResponseCode != ptperr.RC_OK {
		return ptpwire.ObjectInfo{}, ptperr.NewResponse(op, 0, out.ResponseCode)
	}
	var info ptpwire.ObjectInfo
	if err := info.UnmarshalBinary(out.Payload.Bytes()); err != nil {
		return ptpwire.ObjectInfo{}, ptperr.Wrap(op, err)
	}
	return info, nil
}

// GetObject fetches an object's full binary payload. The returned
// BlockList is caller-owned (§5 memory discipline): the caller must
// call Release once done, typically after streaming it to a local file
// or a FUSE read buffer. Per §3 lifecycle, object payloads are never
// cached here: every call issues a fresh GetObject.
func (s *Session) GetObject(ctx context.Context, handle uint32, expectedSize int64) (*ptptxn.BlockList, error) {
	const op = "GetObject"
	out, err := s.run(ctx, op, ptpwire.OpGetObject, []uint32{handle}, ptptxn.Receive, nil, expectedSize)
	if err != nil {
		return nil, err
	}
	if out.ResponseCode != ptperr.RC_OK {
		out.Payload.Release()
		return nil, ptperr.NewResponse(op, 0, out.ResponseCode)
	}
	return out.Payload, nil
}

// SendObjectInfo begins a create/overwrite transaction: it sends the
// ObjectInfo dataset for a new object under parent on storageID and
// returns the device-assigned (storageID, parentHandle, handle) triple
// from the response parameters. A zero handle means the device expects
// the caller to reconcile it by re-listing the directory (§4.6 create
// algorithm step 4) — this method does not do that reconciliation
// itself; that is ptptree's job.
func (s *Session) SendObjectInfo(ctx context.Context, storageID, parent uint32, info ptpwire.ObjectInfo) (respStorageID, respParent, handle uint32, err error) {
	const op = "SendObjectInfo"
	opCode := ptpwire.OpSendObjectInfo
	if s.preferEKOpcodes() {
		opCode = ptpwire.OpEKSendObjectInfo
	}

	payload, marshalErr := info.MarshalBinary()
	if marshalErr != nil {
		return 0, 0, 0, ptperr.Wrap(op, marshalErr)
	}

	out, runErr := s.run(ctx, op, opCode, []uint32{storageID, parent}, ptptxn.Send, payload, 0)
	if runErr != nil {
		return 0, 0, 0, runErr
	}
	if out.ResponseCode != ptperr.RC_OK {
		return 0, 0, 0, ptperr.NewResponse(op, 0, out.ResponseCode)
	}
	return out.ResponseParams[0], out.ResponseParams[1], out.ResponseParams[2], nil
}

// SendObject sends an object's binary payload, following a prior
// SendObjectInfo in the same transaction sequence. size is advisory
// only (the data container header carries the real length).
func (s *Session) SendObject(ctx context.Context, payload []byte, size int64) error {
	const op = "SendObject"
	opCode := ptpwire.OpSendObject
	if s.preferEKOpcodes() {
		opCode = ptpwire.OpEKSendObject
	}

	out, err := s.run(ctx, op, opCode, nil, ptptxn.Send, payload, 0)
	if err != nil {
		return err
	}
	if out.ResponseCode != ptperr.RC_OK {
		return ptperr.NewResponse(op, 0, out.ResponseCode)
	}
	return nil
}

// DeleteObject deletes handle, optionally restricted to a format
// filter. format=0 deletes regardless of format. Used for both Unlink
// and Rmdir (§6.5 — folders are deleted the same way as files,
// verbatim from the original source, device-dependent for non-empty
// folders).
func (s *Session) DeleteObject(ctx context.Context, handle uint32, format uint16) error {
	const op = "DeleteObject"
	out, err := s.run(ctx, op, ptpwire.OpDeleteObject, []uint32{handle, uint32(format)}, ptptxn.NoData, nil, 0)
	if err != nil {
		return err
	}
	if out.ResponseCode != ptperr.RC_OK {
		return ptperr.NewResponse(op, 0, out.ResponseCode)
	}
	return nil
}

// GetDevicePropValue fetches and decodes a device property, per the
// caller-supplied dataType (the wire response carries only the raw
// value bytes; the type is established out of band by a prior
// GetDevicePropDesc, which this core does not itself issue — see
// §3.1).
func (s *Session) GetDevicePropValue(ctx context.Context, propCode uint16, dataType ptpwire.DataType) (ptpwire.PropValue, error) {
	const op = "GetDevicePropValue"
	out, err := s.run(ctx, op, ptpwire.OpGetDevicePropValue, []uint32{uint32(propCode)}, ptptxn.Receive, nil, 0)
	if err != nil {
		return ptpwire.PropValue{}, err
	}
	defer out.Payload.Release()
	if out.ResponseCode != ptperr.RC_OK {
		return ptpwire.PropValue{}, ptperr.NewResponse(op, 0, out.ResponseCode)
	}
	val, err := ptpwire.UnpackPropValue(out.Payload.Bytes(), dataType)
	if err != nil {
		return ptpwire.PropValue{}, ptperr.Wrap(op, err)
	}
	return val, nil
}

func (s *Session) preferEKOpcodes() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preferEK
}
