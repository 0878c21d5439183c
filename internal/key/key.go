// Package key persists a responder's Shamir key share to disk as a small
// TOML envelope, following the Tomler (TOML/FromTOML/TOMLValue) pattern used
// throughout drand's common/key package, trimmed to the single
// index+scalar this protocol's dealer-split share needs (no distributed
// public polynomial — the dealer, not a DKG, holds the commitments).
package key

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/drand/kyber"

	"github.com/BurntSushi/toml"

	"github.com/dedis/tbls-reboot/internal/crypto"
	"github.com/dedis/tbls-reboot/internal/shamir"
)

// shareTOML is the on-disk shape of a shamir.Share: index plus a
// hex-encoded scalar, mirroring common/key/keys.go's ShareTOML minus its
// Commits/SchemeName fields.
type shareTOML struct {
	Index int
	Value string
}

func scalarToString(s kyber.Scalar) string {
	buf, _ := s.MarshalBinary()
	return hex.EncodeToString(buf)
}

// Save writes share to path as a TOML envelope. It fails if path already
// exists: spec.md requires a node's share.key to be written exactly once,
// never silently overwritten by a later run of the same binary.
func Save(path string, s shamir.Share) error {
	fd, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("key: %s already holds a share, refusing to overwrite: %w", path, err)
	}
	defer fd.Close()

	t := shareTOML{Index: s.Index, Value: scalarToString(s.Value)}
	return toml.NewEncoder(fd).Encode(t)
}

// Exists reports whether a share is already persisted at path, the
// responder's "key share exists; loading from file" branch in its Starting
// state (spec.md §4.4, supplemented from the original server.py).
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load reads back a share previously written by Save.
func Load(scheme *crypto.Scheme, path string) (shamir.Share, error) {
	var t shareTOML
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return shamir.Share{}, fmt.Errorf("key: decode %s: %w", path, err)
	}
	v, err := stringToScalar(scheme.KeyGroup, t.Value)
	if err != nil {
		return shamir.Share{}, fmt.Errorf("key: %s: share value corrupted: %w", path, err)
	}
	if t.Index <= 0 {
		return shamir.Share{}, errors.New("key: share index must be positive")
	}
	return shamir.Share{Index: t.Index, Value: v}, nil
}

func stringToScalar(g kyber.Group, s string) (kyber.Scalar, error) {
	buf, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	sc := g.Scalar()
	return sc, sc.UnmarshalBinary(buf)
}
