// Package wire defines the fixed five-message UDP wire format between
// dealer and responders (spec.md §6): ports, addressing, and byte layouts.
// Kept deliberately free of any crypto import — callers supply already-
// marshaled share/signature bytes and this package only frames them.
package wire

import (
	"fmt"
	"net"
)

const (
	// SharePort is where the dealer listens for 0xFF share requests and
	// replies with serialized shares, and where a responder binds while it
	// awaits its share.
	SharePort = 5005

	// MulticastGroup/MulticastPort is where the dealer broadcasts signing
	// requests and the shutdown-all notice, and where every responder
	// listens once it reaches Serving.
	MulticastGroup = "224.1.1.1"
	MulticastPort  = 5006

	// DealerPort is where the dealer listens for partial signatures and
	// restart notices during phase (b).
	DealerPort = 5007

	// DealerHost/responderNet/responderBase implement the addressing
	// assumption: responder k in {0..n-1} is at 10.0.0.{k+responderBase};
	// the dealer is at DealerHost.
	DealerHost    = "10.0.0.254"
	responderNet  = "10.0.0."
	responderBase = 2
)

// ShareRequest is the single byte a responder without a share sends to the
// dealer's SharePort.
const ShareRequest byte = 0xFF

// RestartRequest is the single byte a responder (or any peer) sends to the
// dealer's DealerPort to force a new signing round.
const RestartRequest byte = 0xFE

// ShutdownAll is the single byte the dealer multicasts at shutdown; every
// responder that receives it transitions Serving -> Exiting.
const ShutdownAll byte = 0xFF

// ResponderAddr returns the UDP address of responder k (0-indexed) on the
// given port.
func ResponderAddr(k, port int) string {
	return fmt.Sprintf("%s%d:%d", responderNet, k+responderBase, port)
}

// NodeIndexFromHost parses a responder's dotted-quad IPv4 address into its
// 0-based node index k, the inverse of ResponderAddr's addressing rule:
// k+1 is the Shamir share index; k = last_octet - 2.
func NodeIndexFromHost(host string) (k int, err error) {
	var d int
	n, err := fmt.Sscanf(host, "10.0.0.%d", &d)
	if err != nil || n != 1 {
		return 0, fmt.Errorf("wire: %q is not a 10.0.0.x responder address", host)
	}
	if d < responderBase {
		return 0, fmt.Errorf("wire: %q has last octet below the responder base %d", host, responderBase)
	}
	return d - responderBase, nil
}

// ShareIndex is the Shamir share index for responder k: i = k+1.
func ShareIndex(k int) int { return k + 1 }

// MulticastAddr is the dealer's signing-request / shutdown destination.
func MulticastAddr() string {
	return fmt.Sprintf("%s:%d", MulticastGroup, MulticastPort)
}

// DealerKeyAddr is where a responder sends its share request.
func DealerKeyAddr() string {
	return fmt.Sprintf("%s:%d", DealerHost, SharePort)
}

// DealerSigningAddr is where a responder unicasts its partial signature.
func DealerSigningAddr() string {
	return fmt.Sprintf("%s:%d", DealerHost, DealerPort)
}

// EncodeSigningRequest frames a signing round's request datagram: seq || m.
func EncodeSigningRequest(seq byte, msg []byte) []byte {
	out := make([]byte, 1+len(msg))
	out[0] = seq
	copy(out[1:], msg)
	return out
}

// DecodeSigningRequest splits a signing-request datagram back into seq and
// message. It returns an error if d is empty (wire-malformed per §7).
func DecodeSigningRequest(d []byte) (seq byte, msg []byte, err error) {
	if len(d) < 1 {
		return 0, nil, fmt.Errorf("wire: signing request too short (%d bytes)", len(d))
	}
	return d[0], d[1:], nil
}

// EncodeSigningResponse frames a responder's partial-signature datagram:
// seq || serialize(sigma_i). sigma_i carries no index — the dealer derives
// it from the datagram's source address (ShareIndex(NodeIndexFromHost(...))).
func EncodeSigningResponse(seq byte, sigma []byte) []byte {
	return EncodeSigningRequest(seq, sigma)
}

// DecodeSigningResponse is the same framing as a signing request; kept as a
// distinct name for readability at call sites.
func DecodeSigningResponse(d []byte) (seq byte, sigma []byte, err error) {
	return DecodeSigningRequest(d)
}

// LocalNodeIndex scans the host's network interfaces for a 10.0.0.x address
// matching the responder addressing scheme and returns its 0-based node
// index. Responders and the supervisor both need this to know their own
// identity; nothing on the wire tells a node its own index.
func LocalNodeIndex() (k int, err error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return 0, fmt.Errorf("wire: enumerate interfaces: %w", err)
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip4 := ipNet.IP.To4()
		if ip4 == nil {
			continue
		}
		if k, err := NodeIndexFromHost(ip4.String()); err == nil {
			return k, nil
		}
	}
	return 0, fmt.Errorf("wire: no local interface matches the %s0/24 responder range", responderNet)
}
