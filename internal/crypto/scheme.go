// Package crypto wraps the pairing-friendly curve backend used by the rest
// of this module behind a small, explicitly parameterized Scheme value, so
// that no package below it ever reaches for ambient/global curve state.
package crypto

import (
	"crypto/cipher"

	"github.com/drand/kyber"
	bls "github.com/drand/kyber-bls12381"
	"github.com/drand/kyber/sign"
	"github.com/drand/kyber/sign/tbls"
	"github.com/drand/kyber/util/random"
)

// Domain-separation tags for hash-to-curve. Every node signing under the same
// deployment must construct Scheme with these same tags, or partial
// signatures from different nodes won't combine (spec §4.1).
const (
	g1DST = "TBLS_REBOOT_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_"
	g2DST = "TBLS_REBOOT_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_"
)

// Scheme bundles the groups and threshold signature scheme this module signs
// and verifies over. Public keys live on G2 (96 bytes), signatures on G1 (48
// bytes) — the short-signature layout, following crypto.NewPedersenBLSUnchainedG1
// in drand.
type Scheme struct {
	KeyGroup        kyber.Group          // G2: public keys
	SigGroup        kyber.Group          // G1: signatures, hash-to-curve target
	ThresholdScheme sign.ThresholdScheme // tbls over G1
}

// New constructs the Scheme every node in a deployment must agree on.
func New() *Scheme {
	suite := bls.NewBLS12381SuiteWithDST([]byte(g1DST), []byte(g2DST))
	return &Scheme{
		KeyGroup:        suite.G2(),
		SigGroup:        suite.G1(),
		ThresholdScheme: tbls.NewThresholdSchemeOnG1(suite),
	}
}

// RandomScalar draws a uniformly random element of Fr: the master secret x,
// or a Shamir polynomial coefficient a_1..a_t.
func (s *Scheme) RandomScalar() kyber.Scalar {
	return s.KeyGroup.Scalar().Pick(random.New())
}

// RandomStream returns the cipher.Stream backing this scheme's randomness,
// for internal/shamir's polynomial generation which needs to draw many
// coefficients from the same source.
func (s *Scheme) RandomStream() cipher.Stream {
	return random.New()
}
