// Package netio implements the UDP/IPv6 datagram endpoint (the reference
// system's nethandle/netopen/netlisten/netsend family in
// original_source/src/net.c), adapted to Go's net package and error
// values instead of errno-style return codes.
package netio

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jroosing/dhtnode/internal/pool"
	"golang.org/x/sys/unix"
)

// BUFF_SIZE is the size of a listening handle's reusable receive buffer,
// matching the reference system's hardcoded allocation.
const BUFF_SIZE = 131072

var (
	ErrResolveFailed        = errors.New("netio: address resolution returned no candidates")
	ErrNoUsableAddress      = errors.New("netio: no resolved address accepted socket()/bind()")
	ErrSendFailed           = errors.New("netio: send failed")
	ErrRecvFailed           = errors.New("netio: receive failed")
	ErrSocketClosed         = errors.New("netio: socket closed")
	ErrMulticastUnavailable = errors.New("netio: multicast join unavailable")
	ErrNonIPv6Sender        = errors.New("netio: refusing non-IPv6 sender")
)

// Mode selects whether Open binds a listening socket or remembers a
// destination for sending.
type Mode int

const (
	ModeListen Mode = iota
	ModeSend
)

var bufferPool = pool.New(func() []byte {
	return make([]byte, BUFF_SIZE)
})

// Handle is the net-handle of §3: a UDP/IPv6 socket, its resolved peer
// address, and (for listening handles) a reusable receive buffer.
type Handle struct {
	conn *net.UDPConn
	dst  *net.UDPAddr
	buf  []byte
	mode Mode
	// owned is true for handles that opened their own socket (Open's
	// listening and connected-send handles). Receive-derived reply handles
	// share the listening handle's conn and must not close it.
	owned bool
}

// Open resolves host:port for UDP/IPv6 and opens a socket. In ModeListen it
// binds; an empty host passively binds [::]:port. In ModeSend it only
// remembers the destination address.
func Open(host, port string, mode Mode) (*Handle, error) {
	var addrs []net.IPAddr
	if host == "" {
		addrs = []net.IPAddr{{IP: net.IPv6unspecified}}
	} else {
		resolved, err := net.DefaultResolver.LookupIPAddr(context.Background(), host)
		if err != nil || len(resolved) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrResolveFailed, host)
		}
		addrs = resolved
	}

	portNum, perr := parsePort(port)
	if perr != nil {
		return nil, fmt.Errorf("%w: bad port %q", ErrResolveFailed, port)
	}

	var lastErr error
	for _, a := range addrs {
		if a.IP.To4() != nil && a.IP.To16() == nil {
			continue
		}
		udpAddr := &net.UDPAddr{IP: a.IP, Port: portNum, Zone: a.Zone}

		if mode == ModeListen {
			conn, err := net.ListenUDP("udp6", udpAddr)
			if err != nil {
				lastErr = err
				continue
			}
			h := &Handle{conn: conn, mode: mode, owned: true}
			if host != "" {
				h.dst = udpAddr
			}
			return h, nil
		}

		// ModeSend: UDP is connectionless; we dial only to fix the default
		// destination and local routing, mirroring the reference client's
		// netopen(..., 'w').
		conn, err := net.DialUDP("udp6", nil, udpAddr)
		if err != nil {
			lastErr = err
			continue
		}
		return &Handle{conn: conn, dst: udpAddr, mode: mode, owned: true}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoUsableAddress, lastErr)
	}
	return nil, ErrNoUsableAddress
}

// SplitHostPort is a thin wrapper around net.SplitHostPort for callers
// (gossip peer configuration, the server's rate-limit keying) that need to break apart a
// "host:port" string before calling Open.
func SplitHostPort(addr string) (host, port string, err error) {
	return net.SplitHostPort(addr)
}

func parsePort(port string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(port, "%d", &n); err != nil {
		return 0, err
	}
	if n < 0 || n > 65535 {
		return 0, fmt.Errorf("port out of range: %d", n)
	}
	return n, nil
}

// Close is idempotent; it releases the socket and returns the receive
// buffer, if any, to the shared pool. A receive-derived reply handle shares
// its listening handle's socket and is not owned, so Close only forgets the
// reference instead of closing the underlying listening socket.
func (h *Handle) Close() error {
	if h == nil || h.conn == nil {
		return nil
	}
	if h.buf != nil {
		bufferPool.Put(h.buf)
		h.buf = nil
	}
	if !h.owned {
		h.conn = nil
		return nil
	}
	err := h.conn.Close()
	h.conn = nil
	return err
}

// Receive blocks until a datagram arrives, copying up to BUFF_SIZE bytes
// into the handle's reusable buffer. It returns the payload length and a
// send-capable handle addressed back to the sender.
func (h *Handle) Receive() (int, *Handle, error) {
	if h.buf == nil {
		h.buf = bufferPool.Get()
	}

	n, raddr, err := h.conn.ReadFromUDP(h.buf)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrRecvFailed, err)
	}
	if n == 0 {
		return 0, nil, ErrSocketClosed
	}
	if raddr.IP.To4() != nil {
		return 0, nil, ErrNonIPv6Sender
	}

	sender := &Handle{conn: h.conn, dst: raddr, mode: ModeSend}
	return n, sender, nil
}

// Payload returns the bytes most recently read into the handle's buffer.
func (h *Handle) Payload(n int) []byte {
	return h.buf[:n]
}

// Send writes one datagram to the handle's destination. Owned send handles
// (cmd/dhtclient, gossip) hold a connected socket from DialUDP, which
// rejects WriteToUDP with ErrWriteToConnected; receive-derived reply
// handles share the listening socket and must address the datagram with
// WriteToUDP instead.
func (h *Handle) Send(b []byte) (int, error) {
	if h.dst == nil {
		return 0, fmt.Errorf("%w: no destination set", ErrSendFailed)
	}

	var (
		n   int
		err error
	)
	if h.owned {
		n, err = h.conn.Write(b)
	} else {
		n, err = h.conn.WriteToUDP(b, h.dst)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return n, nil
}

// SendText is a convenience wrapper for Send with a string payload.
func (h *Handle) SendText(s string) (int, error) {
	return h.Send([]byte(s))
}

// Addr returns the handle's destination address as text, or "" if unset.
func (h *Handle) Addr() string {
	if h.dst == nil {
		return ""
	}
	return h.dst.String()
}

// LocalAddr returns the text form of the handle's bound local address.
func (h *Handle) LocalAddr() string {
	if h.conn == nil {
		return ""
	}
	return h.conn.LocalAddr().String()
}

// SetDeadline sets the read and write deadline of the handle's socket.
func (h *Handle) SetDeadline(t time.Time) error {
	return h.conn.SetDeadline(t)
}

// JoinMulticast requests IPV6_JOIN_GROUP for a hard-coded group address on
// the loopback interface. The reference implementation documents this
// operation as broken; this port preserves that contract rather than
// silently claiming success. Callers must tolerate ErrMulticastUnavailable.
func (h *Handle) JoinMulticast() error {
	if h.conn == nil {
		return ErrMulticastUnavailable
	}
	rawConn, err := h.conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMulticastUnavailable, err)
	}

	const loopbackInterfaceIndex = 1
	group := net.ParseIP("ff01::1")

	var mreq unix.IPv6Mreq
	copy(mreq.Multiaddr[:], group.To16())
	mreq.Interface = loopbackInterfaceIndex

	var sockErr error
	ctrlErr := rawConn.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptIPv6Mreq(int(fd), unix.IPPROTO_IPV6, unix.IPV6_JOIN_GROUP, &mreq)
	})
	if ctrlErr != nil {
		return fmt.Errorf("%w: %v", ErrMulticastUnavailable, ctrlErr)
	}
	if sockErr != nil {
		return fmt.Errorf("%w: %v", ErrMulticastUnavailable, sockErr)
	}
	return nil
}
