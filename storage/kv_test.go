package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKVRoundTrip(t *testing.T) {
	kv := NewKV(NewMemDB())

	type record struct {
		Name  string   `json:"name"`
		Total *big.Int `json:"total"`
	}
	in := record{Name: "alpha", Total: big.NewInt(42)}
	require.NoError(t, kv.KVPut([]byte("rec"), in))

	var out record
	found, err := kv.KVGet([]byte("rec"), &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, in, out)

	found, err = kv.KVGet([]byte("absent"), &out)
	require.NoError(t, err)
	require.False(t, found)
}

func TestKVNilOutChecksExistence(t *testing.T) {
	kv := NewKV(NewMemDB())
	require.NoError(t, kv.KVPut([]byte("flag"), true))
	found, err := kv.KVGet([]byte("flag"), nil)
	require.NoError(t, err)
	require.True(t, found)
}

func TestKVNilDatabase(t *testing.T) {
	var kv *KV
	require.ErrorIs(t, kv.KVPut([]byte("k"), 1), errNilDatabase)
	_, err := kv.KVGet([]byte("k"), nil)
	require.ErrorIs(t, err, errNilDatabase)
}
