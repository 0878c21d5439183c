package responder

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"

	"github.com/dedis/tbls-reboot/internal/crypto"
	"github.com/dedis/tbls-reboot/internal/key"
	"github.com/dedis/tbls-reboot/internal/log"
	"github.com/dedis/tbls-reboot/internal/shamir"
	"github.com/dedis/tbls-reboot/internal/wire"
)

// multicastTTL is the multicast TTL (32 hops) set on the responder's group
// socket. That socket only receives; partial signatures go back to the
// dealer over a separate unicast socket, which this setting does not touch.
const multicastTTL = 32

// reuseAddrListenConfig sets SO_REUSEADDR on the multicast listen socket so
// a responder that's mid-restart (supervisor killed and relaunched it) can
// rebind the port before the kernel has released the previous process's
// TIME_WAIT hold on it.
var reuseAddrListenConfig = net.ListenConfig{
	Control: func(_, _ string, c syscall.RawConn) error {
		var sockErr error
		if err := c.Control(func(fd uintptr) {
			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		}); err != nil {
			return err
		}
		return sockErr
	},
}

// shareRequestTimeout bounds how long a single request-share datagram is
// given to draw a reply before it is resent.
const shareRequestTimeout = 2 * time.Second

// Node drives one responder through Starting -> AwaitShare -> Serving. Every
// invocation is a single pass: the supervisor (internal/supervisor) restarts
// the process to re-enter Starting, matching the proactive-reboot design
// (spec.md §4.6) where the whole node process, not just its crypto state, is
// recycled.
type Node struct {
	Log     log.Logger
	KeyPath string
	NodeIdx int // 0-based, as in wire.NodeIndexFromHost
}

// Run executes one full lifetime of the node: obtain (or load) a share, then
// serve signing requests until a shutdown-all datagram arrives or the socket
// errors out. It returns nil on an orderly shutdown.
func (node *Node) Run(scheme *crypto.Scheme) error {
	share, err := node.obtainShare(scheme)
	if err != nil {
		return fmt.Errorf("responder: obtain share: %w", err)
	}
	node.Log.Infow("share ready, entering Serving", "index", share.Index)
	return node.serve(scheme, share)
}

// obtainShare implements Starting/AwaitShare: load a persisted share if one
// exists, otherwise request one from the dealer and persist it before
// returning (spec.md §4.4).
func (node *Node) obtainShare(scheme *crypto.Scheme) (shamir.Share, error) {
	if key.Exists(node.KeyPath) {
		node.Log.Infow("loading persisted share", "path", node.KeyPath)
		return key.Load(scheme, node.KeyPath)
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: wire.SharePort})
	if err != nil {
		return shamir.Share{}, fmt.Errorf("listen on share port: %w", err)
	}
	defer conn.Close()

	dealerAddr, err := net.ResolveUDPAddr("udp4", wire.DealerKeyAddr())
	if err != nil {
		return shamir.Share{}, fmt.Errorf("resolve dealer address: %w", err)
	}

	buf := make([]byte, 4096)
	for {
		if _, err := conn.WriteToUDP([]byte{wire.ShareRequest}, dealerAddr); err != nil {
			return shamir.Share{}, fmt.Errorf("send share request: %w", err)
		}
		if err := conn.SetReadDeadline(time.Now().Add(shareRequestTimeout)); err != nil {
			return shamir.Share{}, fmt.Errorf("set read deadline: %w", err)
		}
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				node.Log.Debugw("share request timed out, retrying")
				continue
			}
			return shamir.Share{}, fmt.Errorf("read share response: %w", err)
		}

		v := scheme.KeyGroup.Scalar()
		if err := v.UnmarshalBinary(buf[:n]); err != nil {
			node.Log.Warnw("malformed share response, retrying", "error", err)
			continue
		}
		share := shamir.Share{Index: wire.ShareIndex(node.NodeIdx), Value: v}
		if err := key.Save(node.KeyPath, share); err != nil {
			return shamir.Share{}, fmt.Errorf("persist share: %w", err)
		}
		return share, nil
	}
}

// serve implements the Serving state: join the dealer's multicast group,
// dispatch every datagram through Handle, and unicast responses back to the
// dealer (spec.md §4.4).
func (node *Node) serve(scheme *crypto.Scheme, share shamir.Share) error {
	mcastConn, err := reuseAddrListenConfig.ListenPacket(context.Background(), "udp4", fmt.Sprintf(":%d", wire.MulticastPort))
	if err != nil {
		return fmt.Errorf("listen on multicast port: %w", err)
	}
	defer mcastConn.Close()

	pconn := ipv4.NewPacketConn(mcastConn)
	group := net.ParseIP(wire.MulticastGroup)
	ifaces, err := net.Interfaces()
	if err != nil {
		return fmt.Errorf("list interfaces: %w", err)
	}
	joined := false
	var joinErr error
	for i := range ifaces {
		if err := pconn.JoinGroup(&ifaces[i], &net.UDPAddr{IP: group}); err == nil {
			joined = true
		} else {
			joinErr = err
		}
	}
	if !joined {
		return fmt.Errorf("join multicast group %s on any interface: %w", wire.MulticastGroup, joinErr)
	}
	if err := pconn.SetMulticastLoopback(true); err != nil {
		node.Log.Warnw("could not enable multicast loopback", "error", err)
	}
	if err := pconn.SetMulticastTTL(multicastTTL); err != nil {
		node.Log.Warnw("could not set multicast TTL", "error", err)
	}

	unicast, err := net.Dial("udp4", wire.DealerSigningAddr())
	if err != nil {
		return fmt.Errorf("dial dealer: %w", err)
	}
	defer unicast.Close()

	buf := make([]byte, 4096)
	for {
		n, _, _, err := pconn.ReadFrom(buf)
		if err != nil {
			return fmt.Errorf("read multicast datagram: %w", err)
		}
		d := make([]byte, n)
		copy(d, buf[:n])

		resp, exit, err := Handle(scheme, share, d)
		if err != nil {
			node.Log.Warnw("dropping malformed datagram", "error", err)
			continue
		}
		if exit {
			node.Log.Infow("received shutdown-all, exiting")
			return nil
		}
		if resp != nil {
			if _, err := unicast.Write(resp); err != nil {
				node.Log.Warnw("failed to send partial signature", "error", err)
			}
		}
	}
}
