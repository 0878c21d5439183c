package dealer

import "testing"

import "github.com/stretchr/testify/require"

func messagesOf(msgs ...string) func(int) []byte {
	return func(i int) []byte { return []byte(msgs[i]) }
}

func TestRoundAdvanceCycles(t *testing.T) {
	r := NewRound(1, 3)
	msgs := messagesOf("a", "b", "c")

	require.False(t, r.WasShort()) // no round has run yet, so nothing counts as an abort

	seq, m := r.Advance(3, msgs)
	require.Equal(t, byte(0), seq)
	require.Equal(t, []byte("a"), m)

	seq, m = r.Advance(3, msgs)
	require.Equal(t, byte(1), seq)
	require.Equal(t, []byte("b"), m)
}

func TestRoundAddPartialRejectsWrongSeq(t *testing.T) {
	r := NewRound(1, 3)
	r.Advance(3, messagesOf("a", "b", "c"))
	require.False(t, r.AddPartial(99, 1, []byte("x")))
	require.Equal(t, 0, r.Count())
}

func TestRoundAddPartialRejectsDuplicateIndex(t *testing.T) {
	r := NewRound(1, 3)
	seq, _ := r.Advance(3, messagesOf("a", "b", "c"))
	require.False(t, r.AddPartial(seq, 1, []byte("x")))
	require.False(t, r.AddPartial(seq, 1, []byte("y")))
	require.Equal(t, 1, r.Count())
}

func TestRoundReadyAtExactlyTPlusOne(t *testing.T) {
	r := NewRound(2, 5) // needs exactly 3 partials
	seq, _ := r.Advance(1, messagesOf("only"))

	require.False(t, r.AddPartial(seq, 1, []byte("s1")))
	require.False(t, r.AddPartial(seq, 2, []byte("s2")))
	require.True(t, r.AddPartial(seq, 3, []byte("s3")))
	require.True(t, r.Ready())

	// A fourth partial must not be admitted once the round is ready.
	require.False(t, r.AddPartial(seq, 4, []byte("s4")))
	require.Equal(t, 3, r.Count())
}

func TestRoundWasShortReflectsPriorRound(t *testing.T) {
	r := NewRound(2, 5)
	seq, _ := r.Advance(2, messagesOf("a", "b"))
	require.NoError(t, addAll(r, seq, 1, 2)) // only 2 of the required 3

	// WasShort must be checked before the next Advance clears signs — this
	// is the order dealer.go's event loop follows (spec.md §4.5 step 1).
	require.True(t, r.WasShort())
	r.Advance(2, messagesOf("a", "b"))
}

func addAll(r *Round, seq byte, indices ...int) error {
	for _, i := range indices {
		r.AddPartial(seq, i, []byte{byte(i)})
	}
	return nil
}
