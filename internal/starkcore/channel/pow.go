package channel

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/blake2s"
)

// magic is mixed into the Proof-of-Work initial hash as a fixed domain
// separator.
const magic uint64 = 0x0123456789ABCDED

// defaultLogChunkSize is the default number of nonces (2^20) each worker
// claims per round of the parallel search.
const defaultLogChunkSize = 20

// minWorkBits and maxWorkBits bound the leading-zero-bit requirement; the
// search and verification both reject values outside this range.
const (
	minWorkBits = 1
	maxWorkBits = 40
)

func powInitHash(seed []byte, workBits uint32) [32]byte {
	buf := make([]byte, 0, 8+len(seed)+1)
	var magicBytes [8]byte
	binary.BigEndian.PutUint64(magicBytes[:], magic)
	buf = append(buf, magicBytes[:]...)
	buf = append(buf, seed...)
	buf = append(buf, byte(workBits))
	return blake2s.Sum256(buf)
}

func powFinalHash(init [32]byte, nonce uint64) [32]byte {
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	buf := make([]byte, 0, 40)
	buf = append(buf, init[:]...)
	buf = append(buf, nonceBytes[:]...)
	return blake2s.Sum256(buf)
}

func leadingZeroBits(h [32]byte) uint32 {
	var total uint32
	for _, b := range h {
		if b == 0 {
			total += 8
			continue
		}
		total += uint32(bits.LeadingZeros8(b))
		break
	}
	return total
}

// powProve finds the smallest nonce such that
// H(H(MAGIC||seed||workBits)||nonce) has at least workBits leading zero
// bits, searching chunks of 2^logChunkSize nonces in parallel. workBits==0
// is a no-op (returns nonce 0 without searching): the zero-bits requirement
// is trivially satisfied by every nonce.
func powProve(seed []byte, workBits uint32, logChunkSize uint32) (uint64, error) {
	if workBits == 0 {
		return 0, nil
	}
	if workBits < minWorkBits || workBits > maxWorkBits {
		return 0, fmt.Errorf("channel: proof_of_work_bits %d out of range [%d,%d]", workBits, minWorkBits, maxWorkBits)
	}

	init := powInitHash(seed, workBits)
	chunkSize := uint64(1) << logChunkSize

	var nextChunk atomic.Uint64
	var lowest atomic.Uint64
	lowest.Store(math.MaxUint64)

	numWorkers := max(1, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				// Stop claiming new chunks once no chunk left to search could
				// possibly beat the best nonce found so far.
				if found := lowest.Load(); found != math.MaxUint64 {
					chunkIdx := nextChunk.Load()
					if chunkIdx*chunkSize > found {
						return
					}
				}
				chunkIdx := nextChunk.Add(1) - 1
				start := chunkIdx * chunkSize
				if start >= math.MaxUint64-chunkSize {
					return
				}
				end := start + chunkSize
				for n := start; n < end; n++ {
					h := powFinalHash(init, n)
					if leadingZeroBits(h) >= workBits {
						for {
							cur := lowest.Load()
							if n >= cur {
								break
							}
							if lowest.CompareAndSwap(cur, n) {
								break
							}
						}
						break
					}
				}
			}
		}()
	}
	wg.Wait()

	nonce := lowest.Load()
	if nonce == math.MaxUint64 {
		return 0, fmt.Errorf("channel: proof of work search exhausted without finding a solution")
	}
	return nonce, nil
}

// powVerify reports whether nonce is a valid Proof-of-Work solution for
// (seed, workBits). workBits==0 always verifies.
func powVerify(seed []byte, workBits uint32, nonce uint64) (bool, error) {
	if workBits == 0 {
		return true, nil
	}
	if workBits < minWorkBits || workBits > maxWorkBits {
		return false, fmt.Errorf("channel: proof_of_work_bits %d out of range [%d,%d]", workBits, minWorkBits, maxWorkBits)
	}
	init := powInitHash(seed, workBits)
	h := powFinalHash(init, nonce)
	return leadingZeroBits(h) >= workBits, nil
}
