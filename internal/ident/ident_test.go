package ident

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomCodeFormat(t *testing.T) {
	g := NewGenerator(0, 0)

	code, err := g.RoomCode()
	require.NoError(t, err)
	assert.NoError(t, Validate(code, CodeAlphabet, DefaultCodeLength))
}

func TestSeatTokenFormat(t *testing.T) {
	g := NewGenerator(0, 12)

	token, err := g.SeatToken()
	require.NoError(t, err)
	assert.NoError(t, Validate(token, TokenAlphabet, 12))
}

func TestGenerateUnique(t *testing.T) {
	const n = 10000
	g := NewGenerator(DefaultCodeLength, DefaultTokenLength)

	codes := make(map[string]struct{}, n)
	tokens := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		code, err := g.RoomCode()
		require.NoError(t, err)
		token, err := g.SeatToken()
		require.NoError(t, err)

		_, dupCode := codes[code]
		_, dupToken := tokens[token]
		require.False(t, dupCode, "duplicate room code %s after %d draws", code, i)
		require.False(t, dupToken, "duplicate seat token %s after %d draws", token, i)

		codes[code] = struct{}{}
		tokens[token] = struct{}{}
	}
}

func TestWithRandSourceIsDeterministic(t *testing.T) {
	a := NewGenerator(6, 10).WithRandSource(rand.New(rand.NewSource(42)))
	b := NewGenerator(6, 10).WithRandSource(rand.New(rand.NewSource(42)))

	for i := 0; i < 5; i++ {
		ca, err := a.RoomCode()
		require.NoError(t, err)
		cb, err := b.RoomCode()
		require.NoError(t, err)
		assert.Equal(t, ca, cb)
	}
}

func TestWithReaderRejectsBiasedBytes(t *testing.T) {
	// 252 is the first byte rejected for a 36 character alphabet.
	src := bytes.NewReader([]byte{252, 253, 254, 255, 0, 1, 2, 35, 36, 71, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	g := NewGenerator(6, 10).WithReader(src)

	code, err := g.RoomCode()
	require.NoError(t, err)
	assert.Equal(t, "ABC9A9", code)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestReaderErrorPropagates(t *testing.T) {
	g := NewGenerator(6, 10).WithReader(failingReader{})

	_, err := g.SeatToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "AB12CD", false},
		{"too short", "AB12C", true},
		{"too long", "AB12CDE", true},
		{"lower case", "ab12cd", true},
		{"symbol", "AB-2CD", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.value, CodeAlphabet, 6)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
