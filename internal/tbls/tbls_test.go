package tbls_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dedis/tbls-reboot/internal/crypto"
	"github.com/dedis/tbls-reboot/internal/shamir"
	"github.com/dedis/tbls-reboot/internal/tbls"
)

func TestSignVerifyAggregate(t *testing.T) {
	scheme := crypto.New()
	secret := scheme.RandomScalar()

	n, thr := 5, 2
	poly := shamir.Generate(scheme, n, thr, secret)
	shares := poly.Shares(n)

	msg := []byte("reboot me")
	partials := make([]tbls.PartialSignature, 0, thr+1)
	for _, s := range shares[:thr+1] {
		ps, err := tbls.Sign(scheme, s, msg)
		require.NoError(t, err)
		require.NoError(t, tbls.VerifyPartial(scheme, poly.PubPoly(), msg, ps))
		partials = append(partials, ps)
	}

	sig, err := tbls.Aggregate(scheme, poly.PubPoly(), msg, partials, thr, n)
	require.NoError(t, err)
	require.NoError(t, tbls.Verify(scheme, poly.PublicKey(), msg, sig))
}

func TestAggregateRejectsWrongCount(t *testing.T) {
	scheme := crypto.New()
	secret := scheme.RandomScalar()

	n, thr := 4, 1
	poly := shamir.Generate(scheme, n, thr, secret)
	shares := poly.Shares(n)

	msg := []byte("reboot me")
	ps, err := tbls.Sign(scheme, shares[0], msg)
	require.NoError(t, err)

	_, err = tbls.Aggregate(scheme, poly.PubPoly(), msg, []tbls.PartialSignature{ps}, thr, n)
	require.Error(t, err)
}

func TestVerifyPartialRejectsTamperedShare(t *testing.T) {
	scheme := crypto.New()
	secret := scheme.RandomScalar()

	n, thr := 4, 1
	poly := shamir.Generate(scheme, n, thr, secret)
	shares := poly.Shares(n)

	msg := []byte("reboot me")
	ps, err := tbls.Sign(scheme, shares[0], msg)
	require.NoError(t, err)

	tampered := ps
	tampered.Index = shares[1].Index
	require.Error(t, tbls.VerifyPartial(scheme, poly.PubPoly(), msg, tampered))
}
