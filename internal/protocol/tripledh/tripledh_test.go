package tripledh_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securechat/internal/crypto"
	"securechat/internal/domain"
	"securechat/internal/protocol/tripledh"
)

func primitives() []domain.DHPrimitive {
	return []domain.DHPrimitive{crypto.NewX25519(), crypto.NewMODP2048()}
}

// makePair creates a fresh key pair in the given group.
func makePair(t *testing.T, prim domain.DHPrimitive) domain.KeyPair {
	t.Helper()
	kp, err := prim.GenerateKeyPair()
	require.NoError(t, err, "GenerateKeyPair")
	return kp
}

func TestCombine_ListenerAndConnectorAgree(t *testing.T) {
	for _, prim := range primitives() {
		t.Run(prim.Name(), func(t *testing.T) {
			listenerLT, connectorLT := makePair(t, prim), makePair(t, prim)
			listenerEph, connectorEph := makePair(t, prim), makePair(t, prim)

			fromListener, err := prim.CombineTriple(listenerLT, listenerEph, connectorLT.Public, connectorEph.Public, domain.SharedSecretSize)
			require.NoError(t, err)
			fromConnector, err := prim.CombineTriple(connectorLT, connectorEph, listenerLT.Public, listenerEph.Public, domain.SharedSecretSize)
			require.NoError(t, err)

			assert.Len(t, fromListener, domain.SharedSecretSize)
			assert.Equal(t, fromListener, fromConnector, "both endpoints must derive the same secret")
		})
	}
}

func TestCombine_ManyRunsAgree(t *testing.T) {
	prim := crypto.NewX25519()
	for i := 0; i < 50; i++ {
		a, b := makePair(t, prim), makePair(t, prim)
		x, y := makePair(t, prim), makePair(t, prim)

		s1, err := prim.CombineTriple(a, x, b.Public, y.Public, 64)
		require.NoError(t, err)
		s2, err := prim.CombineTriple(b, y, a.Public, x.Public, 64)
		require.NoError(t, err)
		require.Equal(t, s1, s2, "run %d", i)
	}
}

func TestCombine_SameLongTermBothSides(t *testing.T) {
	// One identity used at both ends still agrees; the ephemeral values break the tie.
	prim := crypto.NewX25519()
	lt := makePair(t, prim)
	x, y := makePair(t, prim), makePair(t, prim)

	s1, err := prim.CombineTriple(lt, x, lt.Public, y.Public, 32)
	require.NoError(t, err)
	s2, err := prim.CombineTriple(lt, y, lt.Public, x.Public, 32)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
}

func TestCombine_WrongPeerIdentityDisagrees(t *testing.T) {
	prim := crypto.NewX25519()
	a, b, mallory := makePair(t, prim), makePair(t, prim), makePair(t, prim)
	x, y := makePair(t, prim), makePair(t, prim)

	// a believes it talks to mallory, b really is on the other end.
	s1, err := prim.CombineTriple(a, x, mallory.Public, y.Public, 32)
	require.NoError(t, err)
	s2, err := prim.CombineTriple(b, y, a.Public, x.Public, 32)
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)
}

func TestCombine_RejectsReflection(t *testing.T) {
	prim := crypto.NewX25519()
	lt, eph := makePair(t, prim), makePair(t, prim)

	_, err := prim.CombineTriple(lt, eph, lt.Public, eph.Public, 32)
	require.ErrorIs(t, err, domain.ErrReflection)

	other := makePair(t, prim)
	_, err = prim.CombineTriple(lt, eph, other.Public, eph.Public, 32)
	require.ErrorIs(t, err, domain.ErrReflection, "echoed ephemeral")
}

func TestCombine_OutputLengthBounds(t *testing.T) {
	prim := crypto.NewX25519()
	a, b := makePair(t, prim), makePair(t, prim)
	x, y := makePair(t, prim), makePair(t, prim)

	_, err := prim.CombineTriple(a, x, b.Public, y.Public, 0)
	assert.Error(t, err)
	_, err = prim.CombineTriple(a, x, b.Public, y.Public, 255*64+1)
	assert.Error(t, err)

	out, err := prim.CombineTriple(a, x, b.Public, y.Public, 255*64)
	require.NoError(t, err)
	assert.Len(t, out, 255*64)
}

func TestCombine_GroupsUseDistinctLabels(t *testing.T) {
	agree := func(priv domain.PrivateScalar, pub domain.PublicValue) ([]byte, error) {
		return bytes.Repeat([]byte{7}, 32), nil
	}
	in := tripledh.Inputs{
		MyLongTerm:    domain.KeyPair{Public: domain.PublicValue{1}},
		MyEphemeral:   domain.KeyPair{Public: domain.PublicValue{2}},
		PeerLongTerm:  domain.PublicValue{3},
		PeerEphemeral: domain.PublicValue{4},
	}
	s1, err := tripledh.Combine("one", agree, in, 32)
	require.NoError(t, err)
	s2, err := tripledh.Combine("two", agree, in, 32)
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)
}

func TestPublic_WireRoundTrip(t *testing.T) {
	for _, prim := range primitives() {
		t.Run(prim.Name(), func(t *testing.T) {
			kp := makePair(t, prim)
			var buf bytes.Buffer
			require.NoError(t, tripledh.WritePublic(&buf, prim, kp.Public))

			wire := buf.Bytes()
			assert.Equal(t, uint32(len(kp.Public)), binary.LittleEndian.Uint32(wire[:4]))

			got, err := tripledh.ReadPublic(&buf, prim)
			require.NoError(t, err)
			assert.Equal(t, kp.Public, got)
			assert.Zero(t, buf.Len(), "reader must not consume past the value")
		})
	}
}

func TestReadPublic_Truncated(t *testing.T) {
	prim := crypto.NewX25519()
	kp := makePair(t, prim)
	var buf bytes.Buffer
	require.NoError(t, tripledh.WritePublic(&buf, prim, kp.Public))

	wire := buf.Bytes()
	for _, cut := range []int{0, 3, 4, len(wire) - 1} {
		_, err := tripledh.ReadPublic(bytes.NewReader(wire[:cut]), prim)
		assert.Error(t, err, "cut at %d", cut)
	}
}

func TestReadPublic_RejectsBadLengths(t *testing.T) {
	prim := crypto.NewX25519()
	for _, n := range []uint32{0, tripledh.MaxPublicSize + 1, 1 << 31} {
		var hdr [4]byte
		binary.LittleEndian.PutUint32(hdr[:], n)
		_, err := tripledh.ReadPublic(bytes.NewReader(hdr[:]), prim)
		assert.ErrorIs(t, err, domain.ErrInvalidPublic, "length %d", n)
	}

	// Well-formed frame, wrong size for the group.
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(31))
	buf.Write(bytes.Repeat([]byte{9}, 31))
	_, err := tripledh.ReadPublic(&buf, prim)
	assert.ErrorIs(t, err, domain.ErrInvalidPublic)
}
