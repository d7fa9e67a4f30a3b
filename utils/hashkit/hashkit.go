// Package hashkit computes order-sensitive fingerprints of a sequence of
// strings, used to compare queue contents between runs.
package hashkit

import (
	"errors"
	"hash"

	"github.com/aviddiviner/go-murmur"
)

type Algo string

const (
	Jenkins  Algo = "jenkins"
	Murmur32 Algo = "murmur32"
	Murmur64 Algo = "murmur64"
)

// MurmurSeed is fixed so that fingerprints are stable across processes.
const MurmurSeed uint32 = 0x9747b28c

var ErrUnknownAlgo = errors.New("unknown hash algorithm")

// separator ends every value so that ["ab","c"] and ["a","bc"] differ.
var separator = []byte{0}

// Fingerprint hashes vals in order with algo.
func Fingerprint(algo Algo, vals []string) (uint64, error) {
	var h hash.Hash32
	switch algo {
	case Jenkins:
		h = NewJenkins32()
	case Murmur32:
		h = murmur.New32(MurmurSeed)
	case Murmur64:
		var buf []byte
		for _, v := range vals {
			buf = append(buf, v...)
			buf = append(buf, separator...)
		}
		return Murmur64Sum(buf), nil
	default:
		return 0, ErrUnknownAlgo
	}
	for _, v := range vals {
		h.Write([]byte(v))
		h.Write(separator)
	}
	return uint64(h.Sum32()), nil
}

// jenkins is the one-at-a-time hash. Its finalization runs on every Write,
// so a value written in pieces hashes differently from the same bytes
// written at once.
type jenkins uint32

func NewJenkins32() hash.Hash32 {
	var s jenkins
	return &s
}

func (s *jenkins) BlockSize() int { return 1 }
func (s *jenkins) Reset()         { *s = 0 }
func (s *jenkins) Size() int      { return 4 }
func (s *jenkins) Sum32() uint32  { return uint32(*s) }

func (s *jenkins) Sum(in []byte) []byte {
	v := uint32(*s)
	return append(in, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func (s *jenkins) Write(data []byte) (int, error) {
	h := uint32(*s)
	for _, b := range data {
		h += uint32(b)
		h += h << 10
		h ^= h >> 6
	}
	h += h << 3
	h ^= h >> 11
	h += h << 15
	*s = jenkins(h)
	return len(data), nil
}

const (
	mul uint64 = 0xc6a4a7935bd1e995
	rtt uint32 = 47
)

// Murmur64Sum is MurmurHash64A with a fixed seed.
func Murmur64Sum(data []byte) uint64 {
	length := uint64(len(data))
	h := 19780211 ^ (length * mul)

	for ; len(data) >= 8; data = data[8:] {
		k := uint64(data[0]) | uint64(data[1])<<8 | uint64(data[2])<<16 | uint64(data[3])<<24 |
			uint64(data[4])<<32 | uint64(data[5])<<40 | uint64(data[6])<<48 | uint64(data[7])<<56
		k *= mul
		k ^= k >> rtt
		k *= mul
		h *= mul
		h ^= k
	}
	if len(data) > 0 {
		for i := len(data) - 1; i >= 0; i-- {
			h ^= uint64(data[i]) << (8 * uint(i))
		}
		h *= mul
	}
	h ^= h >> rtt
	h *= mul
	h ^= h >> rtt
	return h
}
