package ptpwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1 (spec §8): OpenSession request with sessionID=1 round-trips to the
// literal bytes from the end-to-end scenario.
func TestEncodeCommand_OpenSessionLiteralBytes(t *testing.T) {
	buf := EncodeCommand(OpOpenSession, 0, []uint32{1})
	want := []byte{0x10, 0x00, 0x00, 0x00, 0x01, 0x00, 0x02, 0x10, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}
	assert.Equal(t, want, buf)
}

func TestEncodeCommand_NoParams(t *testing.T) {
	buf := EncodeCommand(OpGetDeviceInfo, 0, nil)
	require.Len(t, buf, headerSize)

	hdr, err := DecodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(headerSize), hdr.Length)
	assert.Equal(t, ContainerCommand, hdr.Type)
	assert.Equal(t, OpGetDeviceInfo, hdr.Code)
	assert.Equal(t, uint32(0), hdr.TransactionID)
}

func TestEncodeCommand_TruncatesBeyondFiveParams(t *testing.T) {
	buf := EncodeCommand(OpGetObjectHandles, 3, []uint32{1, 2, 3, 4, 5, 6, 7})
	assert.Len(t, buf, headerSize+5*4)
}

// Property 2 (spec §8): decode(encode(X)).length == len(encoded bytes),
// round trip for the command, data and response containers.
func TestHeaderRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
	}{
		{"command", EncodeCommand(OpGetStorageIDs, 7, []uint32{1})},
		{"data", EncodeDataContainer(OpGetStorageIDs, 7, []byte{1, 2, 3, 4})},
		{"response", EncodeResponse(0x2001, 7, nil)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hdr, err := DecodeHeader(tc.buf)
			require.NoError(t, err)
			assert.Equal(t, uint32(len(tc.buf)), hdr.Length)
			assert.Equal(t, uint32(7), hdr.TransactionID)
		})
	}
}

// S2 (spec §8): GetStorageIDs response data container decodes to
// exactly one storage ID.
func TestDecodeStorageIDsDataContainer(t *testing.T) {
	data := []byte{
		0x14, 0x00, 0x00, 0x00, // length = 20
		0x02, 0x00, // type = Data
		0x04, 0x10, // code = GetStorageIDs
		0x01, 0x00, 0x00, 0x00, // tx_id = 1
		0x01, 0x00, 0x00, 0x00, // count = 1
		0x01, 0x00, 0x01, 0x00, // 0x00010001
	}
	hdr, err := DecodeHeader(data)
	require.NoError(t, err)
	assert.Equal(t, ContainerData, hdr.Type)
	assert.Equal(t, OpGetStorageIDs, hdr.Code)

	ids, err := unpackU32Array(newCursor(data[headerSize:], LittleEndian), "test")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x00010001}, ids)
}

func TestDecodeHeader_Errors(t *testing.T) {
	t.Run("truncated", func(t *testing.T) {
		_, err := DecodeHeader([]byte{1, 2, 3})
		assert.Error(t, err)
	})
	t.Run("length too small", func(t *testing.T) {
		buf := make([]byte, headerSize)
		buf[0] = 4 // length=4, below header size
		_, err := DecodeHeader(buf)
		assert.Error(t, err)
	})
	t.Run("bad type", func(t *testing.T) {
		buf := make([]byte, headerSize)
		buf[0] = headerSize
		buf[4] = 0xff
		buf[5] = 0xff
		_, err := DecodeHeader(buf)
		assert.Error(t, err)
	})
}

func TestDecodeParams(t *testing.T) {
	buf := EncodeCommand(OpGetObjectInfo, 1, []uint32{42, 7})
	params := DecodeParams(buf[headerSize:])
	assert.Equal(t, []uint32{42, 7}, params)
}
