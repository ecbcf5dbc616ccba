package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		key   []byte
		value []byte
	}{
		{"simple", []byte("user:1"), []byte("Alice")},
		{"empty value", []byte("k"), []byte{}},
		{"empty key on decode only", []byte{}, []byte("v")},
		{"binary", []byte{0x00, 0xff, 0x01}, []byte{0x10, 0x20}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := Encode(tc.key, tc.value)
			require.Len(t, buf, 8+len(tc.key)+len(tc.value))

			pair, n, err := Decode(buf)
			require.NoError(t, err)
			require.Equal(t, len(buf), n)
			require.Equal(t, tc.key, pair.Key)
			require.Equal(t, tc.value, pair.Value)
		})
	}
}

func TestDecodeTruncatedFrame(t *testing.T) {
	full := Encode([]byte("hello"), []byte("world"))

	for n := 0; n < len(full); n++ {
		_, _, err := Decode(full[:n])
		require.ErrorIs(t, err, ErrTruncatedFrame, "prefix length %d should be truncated", n)
	}
}

func TestDecodeConsumesExactByteCount(t *testing.T) {
	a := Encode([]byte("a"), []byte("1"))
	b := Encode([]byte("b"), []byte("2"))
	buf := append(append([]byte{}, a...), b...)

	pair, n, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, len(a), n)
	require.Equal(t, "a", string(pair.Key))
	require.Equal(t, "1", string(pair.Value))

	pair, n, err = Decode(buf[n:])
	require.NoError(t, err)
	require.Equal(t, len(b), n)
	require.Equal(t, "b", string(pair.Key))
	require.Equal(t, "2", string(pair.Value))
}
