package netio

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenListenAndSendRoundTrip(t *testing.T) {
	listener, err := Open("", "0", ModeListen)
	require.NoError(t, err)
	defer listener.Close()

	addr := listener.conn.LocalAddr().String()
	_, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	sender, err := Open("::1", port, ModeSend)
	require.NoError(t, err)
	defer sender.Close()

	n, err := sender.SendText("put deadbeef ::1")
	require.NoError(t, err)
	assert.Equal(t, len("put deadbeef ::1"), n)

	require.NoError(t, listener.SetDeadline(time.Now().Add(2*time.Second)))
	length, replyHandle, err := listener.Receive()
	require.NoError(t, err)
	require.NotNil(t, replyHandle)
	assert.Equal(t, "put deadbeef ::1", string(listener.Payload(length)))
}

func TestReceiveDerivedSenderSharesListenerSocket(t *testing.T) {
	listener, err := Open("", "0", ModeListen)
	require.NoError(t, err)
	defer listener.Close()
	require.NoError(t, listener.SetDeadline(time.Now().Add(2*time.Second)))

	_, port, err := net.SplitHostPort(listener.conn.LocalAddr().String())
	require.NoError(t, err)

	client, err := Open("::1", port, ModeSend)
	require.NoError(t, err)
	defer client.Close()

	// First round trip: receive, reply through the derived sender, then
	// close it. Closing a receive-derived sender must not close the
	// shared listening socket.
	_, err = client.SendText("get deadbeef")
	require.NoError(t, err)

	n, reply, err := listener.Receive()
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, "get deadbeef", string(listener.Payload(n)))

	_, err = reply.Send([]byte("(null)"))
	require.NoError(t, err)
	require.NoError(t, reply.Close())

	// Second round trip: the listener must still be usable.
	_, err = client.SendText("get cafebabe")
	require.NoError(t, err)

	n, reply2, err := listener.Receive()
	require.NoError(t, err)
	require.NotNil(t, reply2)
	assert.Equal(t, "get cafebabe", string(listener.Payload(n)))
}

func TestOpenBadPortFails(t *testing.T) {
	_, err := Open("::1", "not-a-port", ModeSend)
	assert.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	h, err := Open("", "0", ModeListen)
	require.NoError(t, err)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
}

func TestJoinMulticastDoesNotPanic(t *testing.T) {
	h, err := Open("", "0", ModeListen)
	require.NoError(t, err)
	defer h.Close()

	// Best-effort and may fail; the important contract is "never panics".
	_ = h.JoinMulticast()
}
