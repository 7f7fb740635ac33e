package output

import (
	"fmt"

	"github.com/dchest/siphash"
)

// Fixed keys keep fingerprints stable across runs and machines.
const (
	fingerprintK0 = 0x6e6f746963652d62
	fingerprintK1 = 0x75696c6465722d31
)

// Fingerprint returns a short stable hash of a rendered notice. It is not a
// security checksum.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", siphash.Hash(fingerprintK0, fingerprintK1, data))
}
