package channel

import (
	"encoding/binary"

	"github.com/vybium/starkcore/internal/starkcore/field"
)

// VerifierChannel is the verifier's half of the transcript: it consumes
// bytes from a received proof in the same order the prover sent them,
// mixing each into its own PRNG so that its subsequently drawn challenges
// match the prover's exactly.
type VerifierChannel struct {
	prng         prng
	proof        []byte
	pos          int
	inQueryPhase bool
	annotations  annotationStack
}

// NewVerifierChannel starts a transcript reader over proof, seeded
// identically to the corresponding ProverChannel.
func NewVerifierChannel(seed []byte, proof []byte) *VerifierChannel {
	return &VerifierChannel{prng: newPRNG(seed), proof: proof}
}

// EnterScope pushes an annotation label for the duration of the returned
// release function.
func (c *VerifierChannel) EnterScope(label string) func() { return c.annotations.scope(label) }

func (c *VerifierChannel) readBytes(n int) ([]byte, error) {
	if c.pos+n > len(c.proof) {
		return nil, &VerificationError{Reason: "proof too short"}
	}
	b := c.proof[c.pos : c.pos+n]
	c.pos += n
	if !c.inQueryPhase {
		c.prng.Mix(b)
	}
	return b, nil
}

// ReceiveFieldElement reads and mixes a base-field element from the proof.
func (c *VerifierChannel) ReceiveFieldElement() (field.BaseFE, error) {
	b, err := c.readBytes(field.SizeInBytes())
	if err != nil {
		return field.BaseFE{}, err
	}
	return field.BaseFEFromBytes(b), nil
}

// ReceiveExtFieldElement reads and mixes an extension-field element.
func (c *VerifierChannel) ReceiveExtFieldElement() (field.ExtFE, error) {
	b, err := c.readBytes(field.ExtSizeInBytes())
	if err != nil {
		return field.ExtFE{}, err
	}
	return field.ExtFEFromBytes(b), nil
}

// ReceiveCommitmentHash reads and mixes a 32-byte Merkle root.
func (c *VerifierChannel) ReceiveCommitmentHash() ([32]byte, error) {
	b, err := c.readBytes(32)
	if err != nil {
		return [32]byte{}, err
	}
	var h [32]byte
	copy(h[:], b)
	return h, nil
}

// ReceiveDecommitmentNode reads and mixes a 32-byte authentication-path node.
func (c *VerifierChannel) ReceiveDecommitmentNode() ([32]byte, error) {
	return c.ReceiveCommitmentHash()
}

// ReceiveData reads and mixes n raw bytes.
func (c *VerifierChannel) ReceiveData(n int) ([]byte, error) {
	return c.readBytes(n)
}

// GetAndSendRandomFieldElement draws the challenge the prover would have
// sent at this point by reading it straight from the PRNG, not the proof:
// non-interactively, "sending" it back is a no-op since both sides already
// share the PRNG state that determines it.
func (c *VerifierChannel) GetAndSendRandomFieldElement() (field.BaseFE, error) {
	if c.inQueryPhase {
		return field.BaseFE{}, &PhaseError{Op: "get_and_send_random_field_element"}
	}
	return field.BaseFEFromBytes(c.prng.Bytes(field.SizeInBytes())), nil
}

// GetAndSendRandomExtFieldElement is GetAndSendRandomFieldElement over the
// extension field.
func (c *VerifierChannel) GetAndSendRandomExtFieldElement() (field.ExtFE, error) {
	if c.inQueryPhase {
		return field.ExtFE{}, &PhaseError{Op: "get_and_send_random_ext_field_element"}
	}
	return field.ExtFEFromBytes(c.prng.Bytes(field.ExtSizeInBytes())), nil
}

// GetAndSendRandomNumber mirrors ProverChannel.ReceiveNumber.
func (c *VerifierChannel) GetAndSendRandomNumber(upperBound uint64) (uint64, error) {
	if upperBound >= (1 << upperBoundBits) {
		return 0, &ConfigError{Reason: "receive_number upper_bound must be < 2^48"}
	}
	if c.inQueryPhase {
		return 0, &PhaseError{Op: "get_and_send_random_number"}
	}
	raw := binary.LittleEndian.Uint64(c.prng.Bytes(8))
	return raw % upperBound, nil
}

// ApplyProofOfWork reads the nonce the prover sent and verifies it against
// the current PRNG state.
func (c *VerifierChannel) ApplyProofOfWork(workBits uint32) error {
	seed := c.prng.Snapshot()
	nb, err := c.ReceiveData(8)
	if err != nil {
		return err
	}
	nonce := binary.LittleEndian.Uint64(nb)
	ok, err := powVerify(seed, workBits, nonce)
	if err != nil {
		return err
	}
	if !ok {
		return &VerificationError{Reason: "proof of work invalid"}
	}
	return nil
}

// BeginQueryPhase freezes the PRNG: after this call no further reads are
// permitted.
func (c *VerifierChannel) BeginQueryPhase() { c.inQueryPhase = true }

// InQueryPhase reports whether BeginQueryPhase has been called.
func (c *VerifierChannel) InQueryPhase() bool { return c.inQueryPhase }

// Remaining reports how many unread proof bytes are left.
func (c *VerifierChannel) Remaining() int { return len(c.proof) - c.pos }
