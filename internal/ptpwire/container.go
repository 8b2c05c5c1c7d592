package ptpwire

import (
	"encoding/binary"

	"github.com/defiant-labs/ptpfs/ptperr"
)

// ContainerType identifies the kind of PTP container on the wire.
type ContainerType uint16

const (
	ContainerCommand  ContainerType = 1
	ContainerData     ContainerType = 2
	ContainerResponse ContainerType = 3
	ContainerEvent    ContainerType = 4
)

const headerSize = 12

// Header is the 12-byte container header common to every PTP
// container: {length, type, code, transaction_id}.
type Header struct {
	Length        uint32
	Type          ContainerType
	Code          uint16
	TransactionID uint32
}

// DecodeHeader parses the 12-byte container header from buf. It never
// allocates and never reads past the 12 bytes it needs; the caller is
// responsible for validating that Length matches the bytes actually
// available.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, ptperr.New("DecodeHeader", ptperr.CodeBadHeader, "container shorter than 12 bytes")
	}

	length := binary.LittleEndian.Uint32(buf[0:4])
	typ := ContainerType(binary.LittleEndian.Uint16(buf[4:6]))
	code := binary.LittleEndian.Uint16(buf[6:8])
	txID := binary.LittleEndian.Uint32(buf[8:12])

	if length < headerSize {
		return Header{}, ptperr.New("DecodeHeader", ptperr.CodeBadHeader, "length field smaller than header")
	}
	switch typ {
	case ContainerCommand, ContainerData, ContainerResponse, ContainerEvent:
	default:
		return Header{}, ptperr.New("DecodeHeader", ptperr.CodeUnexpectedType, "unknown container type")
	}

	return Header{Length: length, Type: typ, Code: code, TransactionID: txID}, nil
}

func putHeader(buf []byte, length uint32, typ ContainerType, code uint16, txID uint32) {
	binary.LittleEndian.PutUint32(buf[0:4], length)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(typ))
	binary.LittleEndian.PutUint16(buf[6:8], code)
	binary.LittleEndian.PutUint32(buf[8:12], txID)
}

// EncodeCommand produces a command container: a 12-byte header
// followed by 0-5 u32 parameters, packed contiguously. The container
// length reflects only the parameters actually present.
func EncodeCommand(code uint16, txID uint32, params []uint32) []byte {
	if len(params) > 5 {
		params = params[:5]
	}
	buf := make([]byte, headerSize+4*len(params))
	putHeader(buf, uint32(len(buf)), ContainerCommand, code, txID)
	for i, p := range params {
		binary.LittleEndian.PutUint32(buf[headerSize+4*i:], p)
	}
	return buf
}

// EncodeDataContainer produces a data container: a 12-byte header
// followed by the raw payload bytes. Callers splitting a large payload
// across multiple bulk segments use EncodeDataHeader instead, writing
// that header once and sending the payload bytes as raw writes.
func EncodeDataContainer(code uint16, txID uint32, payload []byte) []byte {
	buf := make([]byte, headerSize+len(payload))
	putHeader(buf, uint32(len(buf)), ContainerData, code, txID)
	copy(buf[headerSize:], payload)
	return buf
}

// EncodeDataHeader produces a standalone 12-byte data container header
// carrying totalLength (header size plus the full payload size), for
// callers that stream the payload across multiple bulk writes and need
// the header's length field to reflect the whole container up front.
func EncodeDataHeader(code uint16, txID uint32, totalLength uint32) []byte {
	buf := make([]byte, headerSize)
	putHeader(buf, totalLength, ContainerData, code, txID)
	return buf
}

// EncodeResponse produces a response container: a 12-byte header
// followed by 0-5 u32 parameters.
func EncodeResponse(code uint16, txID uint32, params []uint32) []byte {
	if len(params) > 5 {
		params = params[:5]
	}
	buf := make([]byte, headerSize+4*len(params))
	putHeader(buf, uint32(len(buf)), ContainerResponse, code, txID)
	for i, p := range params {
		binary.LittleEndian.PutUint32(buf[headerSize+4*i:], p)
	}
	return buf
}

// DecodeParams extracts up to 5 u32 parameters from the payload
// following a command or response header.
func DecodeParams(buf []byte) []uint32 {
	n := len(buf) / 4
	if n > 5 {
		n = 5
	}
	params := make([]uint32, n)
	for i := 0; i < n; i++ {
		params[i] = binary.LittleEndian.Uint32(buf[4*i:])
	}
	return params
}
