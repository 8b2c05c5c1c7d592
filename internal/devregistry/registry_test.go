package devregistry

import (
	"context"
	"testing"

	"github.com/defiant-labs/ptpfs/ptpsession"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_OpensOnceAndSharesSession(t *testing.T) {
	r := New()
	key := DeviceKey{Bus: 1, Address: 2}
	opens := 0

	open := func(ctx context.Context) (*ptpsession.Session, error) {
		opens++
		return &ptpsession.Session{}, nil
	}

	s1, err := r.Acquire(context.Background(), key, open)
	require.NoError(t, err)
	s2, err := r.Acquire(context.Background(), key, open)
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Equal(t, 1, opens)
	assert.Equal(t, 1, r.Len())
}

func TestRelease_ClosesOnLastReference(t *testing.T) {
	r := New()
	key := DeviceKey{Bus: 1, Address: 2}
	open := func(ctx context.Context) (*ptpsession.Session, error) {
		return &ptpsession.Session{}, nil
	}

	_, err := r.Acquire(context.Background(), key, open)
	require.NoError(t, err)
	_, err = r.Acquire(context.Background(), key, open)
	require.NoError(t, err)

	require.NoError(t, r.Release(context.Background(), key))
	_, ok := r.Lookup(key)
	assert.True(t, ok, "session stays registered while a reference remains")

	require.NoError(t, r.Release(context.Background(), key))
	_, ok = r.Lookup(key)
	assert.False(t, ok, "session is dropped once the last reference releases")
}

func TestRelease_UnknownKeyIsNoop(t *testing.T) {
	r := New()
	err := r.Release(context.Background(), DeviceKey{Bus: 9, Address: 9})
	assert.NoError(t, err)
}

func TestKeys_ListsRegisteredDevices(t *testing.T) {
	r := New()
	open := func(ctx context.Context) (*ptpsession.Session, error) {
		return &ptpsession.Session{}, nil
	}
	_, err := r.Acquire(context.Background(), DeviceKey{Bus: 1, Address: 1}, open)
	require.NoError(t, err)
	_, err = r.Acquire(context.Background(), DeviceKey{Bus: 1, Address: 2}, open)
	require.NoError(t, err)

	assert.ElementsMatch(t, []DeviceKey{{Bus: 1, Address: 1}, {Bus: 1, Address: 2}}, r.Keys())
}
