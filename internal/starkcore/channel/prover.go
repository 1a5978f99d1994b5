package channel

import (
	"encoding/binary"

	"github.com/vybium/starkcore/internal/starkcore/field"
)

// upperBoundBits caps receive_number's upper bound so modulo bias stays
// below 2^-16, per the channel's number-drawing contract.
const upperBoundBits = 48

// ProverChannel is the prover's half of the Fiat-Shamir transcript: every
// send appends bytes to the proof and, pre-query-phase, mixes those same
// bytes into the PRNG that future challenges are drawn from.
type ProverChannel struct {
	prng         prng
	proof        []byte
	inQueryPhase bool
	annotations  annotationStack
}

// NewProverChannel starts a transcript from an initial public seed (empty by
// default; the caller may domain-separate across AIRs by varying it).
func NewProverChannel(seed []byte) *ProverChannel {
	return &ProverChannel{prng: newPRNG(seed)}
}

func (c *ProverChannel) sendBytes(b []byte) {
	c.proof = append(c.proof, b...)
	if !c.inQueryPhase {
		c.prng.Mix(b)
	}
}

// EnterScope pushes an annotation label for the duration of the returned
// release function.
func (c *ProverChannel) EnterScope(label string) func() { return c.annotations.scope(label) }

// SendFieldElement appends a base-field element's canonical encoding.
func (c *ProverChannel) SendFieldElement(x field.BaseFE) { c.sendBytes(x.Bytes()) }

// SendExtFieldElement appends an extension-field element's canonical encoding.
func (c *ProverChannel) SendExtFieldElement(x field.ExtFE) { c.sendBytes(x.Bytes()) }

// SendFieldElementSpan appends a sequence of base-field elements.
func (c *ProverChannel) SendFieldElementSpan(xs []field.BaseFE) {
	for _, x := range xs {
		c.sendBytes(x.Bytes())
	}
}

// SendCommitmentHash appends a 32-byte Merkle root.
func (c *ProverChannel) SendCommitmentHash(h [32]byte) { c.sendBytes(h[:]) }

// SendDecommitmentNode appends a 32-byte authentication-path sibling digest.
func (c *ProverChannel) SendDecommitmentNode(h [32]byte) { c.sendBytes(h[:]) }

// SendData appends raw bytes (used for the Proof-of-Work nonce).
func (c *ProverChannel) SendData(b []byte) { c.sendBytes(b) }

// ReceiveFieldElement draws a base-field element from the PRNG.
func (c *ProverChannel) ReceiveFieldElement() (field.BaseFE, error) {
	if c.inQueryPhase {
		return field.BaseFE{}, &PhaseError{Op: "receive_field_element"}
	}
	return field.BaseFEFromBytes(c.prng.Bytes(field.SizeInBytes())), nil
}

// ReceiveExtFieldElement draws an extension-field element from the PRNG.
func (c *ProverChannel) ReceiveExtFieldElement() (field.ExtFE, error) {
	if c.inQueryPhase {
		return field.ExtFE{}, &PhaseError{Op: "receive_ext_field_element"}
	}
	return field.ExtFEFromBytes(c.prng.Bytes(field.ExtSizeInBytes())), nil
}

// ReceiveNumber draws a uniformly distributed integer in [0, upperBound) by
// reading 8 PRNG bytes as a little-endian u64 and reducing modulo
// upperBound. upperBound must be < 2^48 to keep modulo bias <= 2^-16.
func (c *ProverChannel) ReceiveNumber(upperBound uint64) (uint64, error) {
	if upperBound >= (1 << upperBoundBits) {
		return 0, &ConfigError{Reason: "receive_number upper_bound must be < 2^48"}
	}
	if c.inQueryPhase {
		return 0, &PhaseError{Op: "receive_number"}
	}
	raw := binary.LittleEndian.Uint64(c.prng.Bytes(8))
	return raw % upperBound, nil
}

// ApplyProofOfWork runs the Proof-of-Work search seeded by the current PRNG
// state and sends the resulting nonce as data.
func (c *ProverChannel) ApplyProofOfWork(workBits uint32) (uint64, error) {
	nonce, err := powProve(c.prng.Snapshot(), workBits, defaultLogChunkSize)
	if err != nil {
		return 0, err
	}
	var nb [8]byte
	binary.LittleEndian.PutUint64(nb[:], nonce)
	c.SendData(nb[:])
	return nonce, nil
}

// BeginQueryPhase freezes the PRNG: after this call only sends are allowed.
func (c *ProverChannel) BeginQueryPhase() { c.inQueryPhase = true }

// InQueryPhase reports whether BeginQueryPhase has been called.
func (c *ProverChannel) InQueryPhase() bool { return c.inQueryPhase }

// GetProof returns the accumulated proof bytes.
func (c *ProverChannel) GetProof() []byte { return append([]byte(nil), c.proof...) }
