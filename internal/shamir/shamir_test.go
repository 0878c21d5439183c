package shamir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dedis/tbls-reboot/internal/crypto"
	"github.com/dedis/tbls-reboot/internal/shamir"
)

func TestGenerateRecoverSecret(t *testing.T) {
	scheme := crypto.New()
	secret := scheme.RandomScalar()

	n, thr := 5, 2
	poly := shamir.Generate(scheme, n, thr, secret)
	shares := poly.Shares(n)
	require.Len(t, shares, n)

	got, err := shamir.RecoverSecret(scheme, shares[:thr+1], thr, n)
	require.NoError(t, err)
	require.True(t, got.Equal(secret))
}

func TestGeneratePanicsOnBadThreshold(t *testing.T) {
	scheme := crypto.New()
	secret := scheme.RandomScalar()

	require.Panics(t, func() {
		shamir.Generate(scheme, 3, 3, secret)
	})
}

func TestPublicShareMatchesPrivateShare(t *testing.T) {
	scheme := crypto.New()
	secret := scheme.RandomScalar()

	n, thr := 4, 1
	poly := shamir.Generate(scheme, n, thr, secret)
	for _, s := range poly.Shares(n) {
		want := scheme.KeyGroup.Point().Mul(s.Value, nil)
		require.True(t, want.Equal(poly.PublicShare(s.Index)))
	}
}
