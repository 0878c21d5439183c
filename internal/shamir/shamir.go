// Package shamir generates and recovers Shamir secret shares in the exponent,
// over the scalar field of a crypto.Scheme's key group. It is a thin,
// domain-specific wrapper around kyber/share, grounded on the PriShare/
// PubShare/RecoverCommit shapes used by kyber/sign/tbls.Recover.
package shamir

import (
	"fmt"

	"github.com/drand/kyber"
	"github.com/drand/kyber/share"

	"github.com/dedis/tbls-reboot/internal/crypto"
)

// Share is one node's evaluation of the dealer's secret polynomial, x_i =
// f(i) for node index i in 1..n. Index 0 is reserved for the secret itself
// and is never handed to a node.
type Share struct {
	Index int
	Value kyber.Scalar
}

// Polynomial holds the dealer's secret-sharing polynomial together with its
// public commitment, so the dealer can hand out both private shares and
// public key shares without re-deriving either.
type Polynomial struct {
	scheme *crypto.Scheme
	priv   *share.PriPoly
	pub    *share.PubPoly
}

// Generate builds a degree-t secret-sharing polynomial f with f(0) = secret
// (coefficients a_1..a_t drawn at random), following bls.py's gen_shares: any
// t+1 of the n evaluations f(1)..f(n) recover secret via Lagrange
// interpolation. It panics if t >= n — a dealer misconfiguration, not a
// runtime fault a caller could recover from.
func Generate(scheme *crypto.Scheme, n, t int, secret kyber.Scalar) *Polynomial {
	if t >= n {
		panic(fmt.Sprintf("shamir: threshold %d must be less than node count %d", t, n))
	}
	priv := share.NewPriPoly(scheme.KeyGroup, t+1, secret, scheme.RandomStream())
	return &Polynomial{
		scheme: scheme,
		priv:   priv,
		pub:    priv.Commit(scheme.KeyGroup.Point().Base()),
	}
}

// Shares evaluates the polynomial at 1..n, returning one Share per node.
func (p *Polynomial) Shares(n int) []Share {
	priShares := p.priv.Shares(n)
	out := make([]Share, 0, len(priShares))
	for _, ps := range priShares {
		if ps == nil {
			continue
		}
		out = append(out, Share{Index: ps.I, Value: ps.V})
	}
	return out
}

// PublicKey returns the group public key X = f(0)'s commitment, i.e. g^secret.
func (p *Polynomial) PublicKey() kyber.Point {
	return p.pub.Commit()
}

// PublicShare returns node i's public key share X_i = g^f(i), which any
// verifier can use to check node i's partial signature without learning x_i.
func (p *Polynomial) PublicShare(i int) kyber.Point {
	return p.pub.Eval(i).V
}

// PubPoly exposes the underlying public commitment polynomial for callers
// (internal/tbls) that need to pass it straight into kyber/sign/tbls.
func (p *Polynomial) PubPoly() *share.PubPoly {
	return p.pub
}

// RecoverSecret reconstructs the polynomial's constant term from t+1 shares,
// used only in tests to check Generate/Shares round-trip correctly — the
// live signing path never reconstructs the secret itself, only signatures
// (see internal/tbls.Aggregate).
func RecoverSecret(scheme *crypto.Scheme, shares []Share, t, n int) (kyber.Scalar, error) {
	priShares := make([]*share.PriShare, 0, len(shares))
	for _, s := range shares {
		s := s
		priShares = append(priShares, &share.PriShare{I: s.Index, V: s.Value})
	}
	return share.RecoverSecret(scheme.KeyGroup, priShares, t+1, n)
}
