// Package channel implements the Fiat-Shamir transcript: a Prover/Verifier
// pair, each wrapping one deterministic PRNG, that turns an interactive
// protocol into a non-interactive one by deriving every verifier challenge
// from a Blake2s-256 hash of everything sent so far.
package channel

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2s"
)

// prng is the deterministic byte source shared by the prover and verifier
// channel halves. Its state is reseeded by mixing in every byte sent along
// the prover-to-verifier direction; bytes are drawn from it by hashing
// state||counter and incrementing counter, never by advancing state itself,
// so a draw never perturbs what a later Mix would have produced.
type prng struct {
	state   [32]byte
	counter uint64
}

func newPRNG(seed []byte) prng {
	return prng{state: blake2s.Sum256(seed)}
}

// Mix folds data into the PRNG state and resets the draw counter, so that
// the very next bytes drawn depend on everything sent up to and including
// data.
func (p *prng) Mix(data []byte) {
	buf := make([]byte, 0, len(p.state)+len(data))
	buf = append(buf, p.state[:]...)
	buf = append(buf, data...)
	p.state = blake2s.Sum256(buf)
	p.counter = 0
}

// Bytes draws n pseudo-random bytes without mutating state, only counter.
func (p *prng) Bytes(n int) []byte {
	out := make([]byte, 0, n+32)
	for len(out) < n {
		var cb [8]byte
		binary.LittleEndian.PutUint64(cb[:], p.counter)
		buf := make([]byte, 0, len(p.state)+8)
		buf = append(buf, p.state[:]...)
		buf = append(buf, cb[:]...)
		h := blake2s.Sum256(buf)
		out = append(out, h[:]...)
		p.counter++
	}
	return out[:n]
}

// Snapshot returns the current state, for use as a Proof-of-Work seed
// without consuming any draw bytes.
func (p *prng) Snapshot() []byte {
	return append([]byte(nil), p.state[:]...)
}
