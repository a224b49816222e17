// Package ident generates the short room codes and seat tokens handed out
// by the room registry.
package ident

import (
	"crypto/rand"
	"fmt"
	"io"
)

const (
	// CodeAlphabet is used for room codes. Upper case only so codes are easy
	// to read out loud.
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// TokenAlphabet is used for seat tokens.
	TokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	DefaultCodeLength  = 6
	DefaultTokenLength = 16

	// MinTokenLength is the shortest seat token we are willing to issue.
	MinTokenLength = 10
)

// RandSource allows deterministic randomness to be injected in tests.
type RandSource interface {
	Intn(n int) int
}

// Generator produces room codes and seat tokens.
type Generator struct {
	randSource  RandSource
	reader      io.Reader
	codeLength  int
	tokenLength int
}

// NewGenerator creates a generator backed by crypto/rand. Non-positive
// lengths fall back to the defaults.
func NewGenerator(codeLength, tokenLength int) *Generator {
	if codeLength <= 0 {
		codeLength = DefaultCodeLength
	}
	if tokenLength <= 0 {
		tokenLength = DefaultTokenLength
	}
	return &Generator{
		reader:      rand.Reader,
		codeLength:  codeLength,
		tokenLength: tokenLength,
	}
}

// WithRandSource returns a copy of the generator that draws from src instead
// of crypto/rand.
func (g *Generator) WithRandSource(src RandSource) *Generator {
	cp := *g
	cp.randSource = src
	return &cp
}

// WithReader returns a copy of the generator that reads entropy from r.
func (g *Generator) WithReader(r io.Reader) *Generator {
	cp := *g
	cp.reader = r
	return &cp
}

// RoomCode returns a fresh room code.
func (g *Generator) RoomCode() (string, error) {
	return g.generate(CodeAlphabet, g.codeLength)
}

// SeatToken returns a fresh seat token.
func (g *Generator) SeatToken() (string, error) {
	return g.generate(TokenAlphabet, g.tokenLength)
}

func (g *Generator) generate(alphabet string, n int) (string, error) {
	if g.randSource != nil {
		out := make([]byte, n)
		for i := range out {
			out[i] = alphabet[g.randSource.Intn(len(alphabet))]
		}
		return string(out), nil
	}
	return randomString(g.reader, alphabet, n)
}

// randomString draws n characters uniformly from alphabet. Bytes at or above
// the largest multiple of len(alphabet) are rejected to avoid modulo bias.
func randomString(r io.Reader, alphabet string, n int) (string, error) {
	limit := 256 - 256%len(alphabet)
	out := make([]byte, 0, n)
	buf := make([]byte, n+n/2+1)

	for len(out) < n {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// Validate checks that s has the given length and only uses characters from
// alphabet.
func Validate(s, alphabet string, length int) error {
	if len(s) != length {
		return fmt.Errorf("expected %d characters, got %d", length, len(s))
	}
	for i := 0; i < len(s); i++ {
		if !contains(alphabet, s[i]) {
			return fmt.Errorf("invalid character %c at position %d", s[i], i)
		}
	}
	return nil
}

func contains(alphabet string, c byte) bool {
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == c {
			return true
		}
	}
	return false
}
