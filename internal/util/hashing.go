package util

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// HashVector returns a SHA-256 over the length and the exact bit patterns
// of vec, so vectors hash equal only when they are bitwise equal.
func HashVector(vec []float64) [32]byte {
	buffer := GetBytesBuffer()
	defer PutBytesBuffer(buffer)
	defer buffer.Reset()

	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], uint64(len(vec)))
	buffer.Write(scratch[:])
	for i := range vec {
		binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(vec[i]))
		buffer.Write(scratch[:])
	}
	return sha256.Sum256(buffer.Bytes())
}
