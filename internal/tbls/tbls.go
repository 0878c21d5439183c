// Package tbls wraps kyber/sign/tbls's threshold BLS operations behind this
// repo's own Share/PartialSignature shapes, fixing aggregation at exactly
// t+1 partials as spec.md §4.2/§9 requires.
package tbls

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/drand/kyber"
	"github.com/drand/kyber/share"

	"github.com/dedis/tbls-reboot/internal/crypto"
	"github.com/dedis/tbls-reboot/internal/shamir"
)

// PartialSignature is one node's contribution toward a full signature: its
// share index and the marshaled G1 point. encodeSigShare/decodeSigShare
// convert it to and from the threshold scheme's i||v framing
// (kyber/sign/tbls.SigShare).
type PartialSignature struct {
	Index int
	Value []byte
}

// Sign produces node share.Index's partial signature over msg.
func Sign(scheme *crypto.Scheme, s shamir.Share, msg []byte) (PartialSignature, error) {
	raw, err := scheme.ThresholdScheme.Sign(&share.PriShare{I: s.Index, V: s.Value}, msg)
	if err != nil {
		return PartialSignature{}, fmt.Errorf("tbls: sign: %w", err)
	}
	return decodeSigShare(raw)
}

// VerifyPartial checks a single partial signature against the dealer's
// public commitment polynomial. The dealer's round bookkeeping does not call
// it; partials are admitted by sequence number and index alone.
func VerifyPartial(scheme *crypto.Scheme, pub *share.PubPoly, msg []byte, p PartialSignature) error {
	return scheme.ThresholdScheme.VerifyPartial(pub, msg, encodeSigShare(p))
}

// Aggregate reconstructs the full BLS signature from exactly t+1 partial
// signatures (callers must pass exactly t+1 — the dealer enforces this by
// never accumulating more, per spec.md's fixed-aggregation-size decision;
// see internal/dealer).
func Aggregate(scheme *crypto.Scheme, pub *share.PubPoly, msg []byte, partials []PartialSignature, t, n int) ([]byte, error) {
	if len(partials) != t+1 {
		return nil, fmt.Errorf("tbls: aggregate requires exactly t+1=%d partials, got %d", t+1, len(partials))
	}
	raw := make([][]byte, len(partials))
	for i, p := range partials {
		raw[i] = encodeSigShare(p)
	}
	return scheme.ThresholdScheme.Recover(pub, msg, raw, t+1, n)
}

// Verify checks a recovered full signature against the group public key.
func Verify(scheme *crypto.Scheme, pub kyber.Point, msg, sig []byte) error {
	return scheme.ThresholdScheme.VerifyRecovered(pub, msg, sig)
}

// encodeSigShare/decodeSigShare reproduce kyber/sign/tbls.SigShare's i||v
// framing (a 2-byte big-endian index followed by the point's bytes), so a
// PartialSignature round-trips through the exact wire shape
// scheme.ThresholdScheme expects.
func encodeSigShare(p PartialSignature) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, uint16(p.Index))
	buf.Write(p.Value)
	return buf.Bytes()
}

func decodeSigShare(raw []byte) (PartialSignature, error) {
	if len(raw) < 2 {
		return PartialSignature{}, fmt.Errorf("tbls: signature share too short")
	}
	var index uint16
	if err := binary.Read(bytes.NewReader(raw[:2]), binary.BigEndian, &index); err != nil {
		return PartialSignature{}, fmt.Errorf("tbls: decode index: %w", err)
	}
	return PartialSignature{Index: int(index), Value: raw[2:]}, nil
}
