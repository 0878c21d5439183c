package responder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dedis/tbls-reboot/internal/crypto"
	"github.com/dedis/tbls-reboot/internal/responder"
	"github.com/dedis/tbls-reboot/internal/shamir"
	"github.com/dedis/tbls-reboot/internal/tbls"
	"github.com/dedis/tbls-reboot/internal/wire"
)

func TestHandleShutdownAll(t *testing.T) {
	scheme := crypto.New()
	poly := shamir.Generate(scheme, 3, 1, scheme.RandomScalar())
	share := poly.Shares(3)[0]

	resp, exit, err := responder.Handle(scheme, share, []byte{wire.ShutdownAll})
	require.NoError(t, err)
	require.True(t, exit)
	require.Nil(t, resp)
}

func TestHandleSigningRequestProducesVerifiablePartial(t *testing.T) {
	scheme := crypto.New()
	secret := scheme.RandomScalar()
	poly := shamir.Generate(scheme, 3, 1, secret)
	shares := poly.Shares(3)

	msg := []byte("hello reboot")
	req := wire.EncodeSigningRequest(7, msg)

	resp, exit, err := responder.Handle(scheme, shares[0], req)
	require.NoError(t, err)
	require.False(t, exit)

	seq, sigma, err := wire.DecodeSigningResponse(resp)
	require.NoError(t, err)
	require.Equal(t, byte(7), seq)

	partial := tbls.PartialSignature{Index: shares[0].Index, Value: sigma}
	require.NoError(t, tbls.VerifyPartial(scheme, poly.PubPoly(), msg, partial))
}

func TestHandleRejectsEmptyDatagram(t *testing.T) {
	scheme := crypto.New()
	poly := shamir.Generate(scheme, 3, 1, scheme.RandomScalar())
	share := poly.Shares(3)[0]

	_, _, err := responder.Handle(scheme, share, nil)
	require.Error(t, err)
}
