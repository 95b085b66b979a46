package memcached

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	for _, member := range []bool{true, false} {
		got, err := decode(encode(member))
		require.NoError(t, err)
		assert.Equal(t, member, got)
	}
}

func TestDecodeGarbage(t *testing.T) {
	for _, value := range [][]byte{nil, []byte("yes"), []byte("x")} {
		_, err := decode(value)
		assert.Error(t, err, "%q", value)
	}
}
