package session_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securechat/internal/crypto"
	"securechat/internal/domain"
	"securechat/internal/services/identity"
	"securechat/internal/services/session"
	"securechat/internal/store"
)

type endpoints struct {
	listener  *session.Establisher
	connector *session.Establisher
}

// newEndpoints prepares both identities in one home so each side finds the
// other's public file.
func newEndpoints(t *testing.T, prim domain.DHPrimitive, timeout time.Duration) endpoints {
	t.Helper()
	ks := store.NewFileStore(t.TempDir(), prim.Name(), "")
	ids := identity.New(prim, ks, "serverKey", "clientKey")
	_, err := ids.EnsureIdentity(domain.RoleListener)
	require.NoError(t, err)
	_, err = ids.EnsureIdentity(domain.RoleConnector)
	require.NoError(t, err)

	return endpoints{
		listener:  session.New(prim, ids, domain.RoleListener, "clientKey", timeout),
		connector: session.New(prim, ids, domain.RoleConnector, "serverKey", timeout),
	}
}

type result struct {
	sess *domain.Session
	err  error
}

func run(ctx context.Context, e *session.Establisher, stream domain.Stream) <-chan result {
	ch := make(chan result, 1)
	go func() {
		s, err := e.Establish(ctx, stream)
		ch <- result{s, err}
	}()
	return ch
}

func TestEstablish_SecretsMatch(t *testing.T) {
	for _, prim := range []domain.DHPrimitive{crypto.NewX25519(), crypto.NewMODP2048()} {
		t.Run(prim.Name(), func(t *testing.T) {
			ep := newEndpoints(t, prim, 5*time.Second)
			a, b := net.Pipe()
			defer a.Close()
			defer b.Close()

			ctx := context.Background()
			lc := run(ctx, ep.listener, a)
			cc := run(ctx, ep.connector, b)
			l, c := <-lc, <-cc
			require.NoError(t, l.err)
			require.NoError(t, c.err)

			assert.Len(t, l.sess.Secret, domain.SharedSecretSize)
			assert.Equal(t, l.sess.Secret, c.sess.Secret)
			assert.Equal(t, domain.RoleListener, l.sess.Role)
			assert.Equal(t, domain.RoleConnector, c.sess.Role)
			assert.Equal(t, domain.KeyName("clientKey"), l.sess.Peer)
			assert.NotEmpty(t, l.sess.ID)
			assert.NotEqual(t, l.sess.ID, c.sess.ID)

			assert.Equal(t, session.StateKeyed, ep.listener.State())
			assert.Equal(t, session.StateKeyed, ep.connector.State())
		})
	}
}

func TestEstablish_FreshSecretPerSession(t *testing.T) {
	ep := newEndpoints(t, crypto.NewX25519(), time.Second)
	secrets := make([][]byte, 0, 2)
	for i := 0; i < 2; i++ {
		a, b := net.Pipe()
		lc := run(context.Background(), ep.listener, a)
		cc := run(context.Background(), ep.connector, b)
		l, c := <-lc, <-cc
		require.NoError(t, l.err)
		require.NoError(t, c.err)
		secrets = append(secrets, l.sess.Secret)
		a.Close()
		b.Close()
	}
	assert.NotEqual(t, secrets[0], secrets[1], "ephemeral keys must make every session distinct")
}

func TestEstablish_MissingPeerFailsBeforeWire(t *testing.T) {
	prim := crypto.NewX25519()
	ks := store.NewFileStore(t.TempDir(), prim.Name(), "")
	ids := identity.New(prim, ks, "serverKey", "clientKey")
	e := session.New(prim, ids, domain.RoleListener, "ghost", time.Second)

	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	_, err := e.Establish(context.Background(), a)
	require.ErrorIs(t, err, domain.ErrPeerUnknown)
	assert.Equal(t, session.StateFailed, e.State())
}

func TestEstablish_PeerHangsUp(t *testing.T) {
	ep := newEndpoints(t, crypto.NewX25519(), time.Second)
	a, b := net.Pipe()
	defer a.Close()
	require.NoError(t, b.Close())

	_, err := ep.connector.Establish(context.Background(), a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "START")
	assert.Equal(t, session.StateFailed, ep.connector.State())
}

func TestEstablish_TimesOut(t *testing.T) {
	ep := newEndpoints(t, crypto.NewX25519(), 50*time.Millisecond)
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	// Nobody reads b, so the listener's first write never completes.
	start := time.Now()
	_, err := ep.listener.Establish(context.Background(), a)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestEstablish_ContextCancel(t *testing.T) {
	ep := newEndpoints(t, crypto.NewX25519(), 0)
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	rc := run(ctx, ep.connector, a)
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case r := <-rc:
		require.ErrorIs(t, r.err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Establish did not return after cancel")
	}
}

func TestEstablish_WrongPeerKeyGivesDifferentSecrets(t *testing.T) {
	prim := crypto.NewX25519()
	ks := store.NewFileStore(t.TempDir(), prim.Name(), "")
	ids := identity.New(prim, ks, "serverKey", "clientKey")
	_, err := ids.EnsureIdentity(domain.RoleListener)
	require.NoError(t, err)
	_, err = ids.EnsureIdentity(domain.RoleConnector)
	require.NoError(t, err)

	// The listener has a stale copy of the connector's key.
	stale, err := prim.GenerateKeyPair()
	require.NoError(t, err)
	require.NoError(t, ks.SavePublic("stale", stale.Public))

	listener := session.New(prim, ids, domain.RoleListener, "stale", time.Second)
	connector := session.New(prim, ids, domain.RoleConnector, "serverKey", time.Second)

	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	lc := run(context.Background(), listener, a)
	cc := run(context.Background(), connector, b)
	l, c := <-lc, <-cc
	require.NoError(t, l.err)
	require.NoError(t, c.err)

	assert.NotEqual(t, l.sess.Secret, c.sess.Secret)
	assert.NotEqual(t, crypto.SessionFingerprint(l.sess.Secret), crypto.SessionFingerprint(c.sess.Secret))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "SENT_EPHEMERAL", session.StateSentEphemeral.String())
	assert.Equal(t, "RECEIVED_PEER_EPHEMERAL", session.StateReceivedPeerEphemeral.String())
}
