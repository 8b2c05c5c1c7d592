package usbtransport

import (
	"context"
	"testing"

	"github.com/defiant-labs/ptpfs/ptperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockTransport_WriteAndRead(t *testing.T) {
	mt := NewMockTransport([]byte{1, 2, 3}, []byte{4, 5})

	require.NoError(t, mt.Write(context.Background(), []byte{0xaa}))
	require.NoError(t, mt.Write(context.Background(), []byte{0xbb}))
	assert.Equal(t, [][]byte{{0xaa}, {0xbb}}, mt.Writes())

	seg, err := mt.Read(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, seg)

	seg, err = mt.Read(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 5}, seg)

	_, err = mt.Read(context.Background(), 8)
	assert.True(t, ptperr.IsCode(err, ptperr.CodeTransportIO))
}

func TestMockTransport_StallThenRecover(t *testing.T) {
	mt := NewMockTransport([]byte{1})
	mt.StallOnWrite = true

	err := mt.Write(context.Background(), []byte{1})
	assert.True(t, ptperr.IsCode(err, ptperr.CodeTransportStalled))

	require.NoError(t, mt.ClearHalt(DirectionOut))
	assert.Equal(t, 1, mt.ClearHaltCallCount())

	require.NoError(t, mt.Write(context.Background(), []byte{1}))
}

func TestMockTransport_DisconnectAfter(t *testing.T) {
	mt := NewMockTransport([]byte{1}, []byte{2}, []byte{3})
	mt.DisconnectAfter = 2

	_, err := mt.Read(context.Background(), 8)
	require.NoError(t, err)

	_, err = mt.Read(context.Background(), 8)
	assert.True(t, ptperr.IsCode(err, ptperr.CodeTransportDisconnected))
}

func TestMockTransport_ReadTruncatesToMax(t *testing.T) {
	mt := NewMockTransport([]byte{1, 2, 3, 4})
	seg, err := mt.Read(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, seg)
}

func TestMockTransport_CloseDisconnectsFurtherCalls(t *testing.T) {
	mt := NewMockTransport([]byte{1})
	require.NoError(t, mt.Close())

	err := mt.Write(context.Background(), []byte{1})
	assert.True(t, ptperr.IsCode(err, ptperr.CodeTransportDisconnected))
}
