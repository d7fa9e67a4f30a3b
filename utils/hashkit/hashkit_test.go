package hashkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintOrderSensitive(t *testing.T) {
	for _, algo := range []Algo{Jenkins, Murmur32, Murmur64} {
		t.Run(string(algo), func(t *testing.T) {
			abc, err := Fingerprint(algo, []string{"a", "b", "c"})
			require.NoError(t, err)
			cba, err := Fingerprint(algo, []string{"c", "b", "a"})
			require.NoError(t, err)
			assert.NotEqual(t, abc, cba)

			again, err := Fingerprint(algo, []string{"a", "b", "c"})
			require.NoError(t, err)
			assert.Equal(t, abc, again)

			split, err := Fingerprint(algo, []string{"ab", "c"})
			require.NoError(t, err)
			joined, err := Fingerprint(algo, []string{"a", "bc"})
			require.NoError(t, err)
			assert.NotEqual(t, split, joined)
		})
	}
}

func TestFingerprintUnknown(t *testing.T) {
	_, err := Fingerprint("crc", nil)
	assert.ErrorIs(t, err, ErrUnknownAlgo)
}

func TestJenkinsKnownValue(t *testing.T) {
	h := NewJenkins32()
	h.Write([]byte("a"))
	// one-at-a-time("a") == 0xca2e9442
	assert.Equal(t, uint32(0xca2e9442), h.Sum32())
	assert.Equal(t, []byte{0xca, 0x2e, 0x94, 0x42}, h.Sum(nil))
	h.Reset()
	assert.Equal(t, uint32(0), h.Sum32())
}
