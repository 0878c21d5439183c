package dealer

import (
	"fmt"
	"net"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/net/ipv4"

	"github.com/dedis/tbls-reboot/internal/crypto"
	"github.com/dedis/tbls-reboot/internal/log"
	"github.com/dedis/tbls-reboot/internal/metrics"
	"github.com/dedis/tbls-reboot/internal/shamir"
	"github.com/dedis/tbls-reboot/internal/tbls"
	"github.com/dedis/tbls-reboot/internal/wire"
)

// WatchdogTimeout is the single-shot round timer of spec.md §4.5: a round
// that collects no new partials within this window is aborted and replaced.
const WatchdogTimeout = 50 * time.Millisecond

// Messages is the fixed message cycle the dealer signs over, matching the
// three-message scenario of spec.md §8 (E1).
var Messages = []string{"a", "b", "c"}

// Dealer owns the master key, the per-responder shares, and the live signing
// round. It is the C5 counterpart of bls.go's blsBeacon: one struct owning
// round state, driven by a single goroutine's event loop rather than a mutex
// shared across request handlers, since the dealer has exactly one reader.
type Dealer struct {
	scheme *crypto.Scheme
	n, t   int

	poly   *shamir.Polynomial
	shares []shamir.Share // shares[k] is responder k's share, index k+1

	round    *Round
	counters metrics.Counters
	log      log.Logger

	signingStart time.Time
}

// New runs keygen(n, t) (spec.md §4.3) and returns a Dealer ready to
// distribute shares and drive signing rounds.
func New(scheme *crypto.Scheme, n, t int, logger log.Logger) *Dealer {
	poly := shamir.Generate(scheme, n, t, scheme.RandomScalar())
	shares := poly.Shares(n)

	byIndex := make([]shamir.Share, n)
	for _, s := range shares {
		byIndex[s.Index-1] = s
	}

	return &Dealer{
		scheme: scheme,
		n:      n,
		t:      t,
		poly:   poly,
		shares: byIndex,
		round:  NewRound(t, n),
		log:    logger,
	}
}

// Run executes both dealer phases for the given total wall-clock budget:
// key distribution (spec.md §4.5a) bounded by the same deadline, then
// signing rounds (§4.5b) until the deadline elapses, then the shutdown
// sequence. It returns a fatal error per §7 (key-distribution incomplete,
// or an aggregated signature that fails verification); round timeouts and
// malformed datagrams are recovered internally and never returned.
func (d *Dealer) Run(runtime time.Duration) error {
	deadline := time.Now().Add(runtime)

	if err := d.distributeShares(deadline); err != nil {
		return err
	}

	return d.runSigningRounds(deadline)
}

func (d *Dealer) distributeShares(deadline time.Time) error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: wire.SharePort})
	if err != nil {
		return fmt.Errorf("dealer: listen on share port: %w", err)
	}
	defer conn.Close()

	served := make(map[int]bool, d.n)
	buf := make([]byte, 64)

	for len(served) < d.n {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if err := conn.SetReadDeadline(time.Now().Add(remaining)); err != nil {
			return fmt.Errorf("dealer: set read deadline: %w", err)
		}
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				break
			}
			return fmt.Errorf("dealer: read share request: %w", err)
		}
		if n < 1 || buf[0] != wire.ShareRequest {
			continue
		}
		k, err := wire.NodeIndexFromHost(addr.IP.String())
		if err == nil && k >= d.n {
			err = fmt.Errorf("node index %d is outside 0..%d", k, d.n-1)
		}
		if err != nil {
			d.log.Warnw("share request from unrecognized address", "addr", addr, "error", err)
			continue
		}
		if served[k] {
			continue
		}
		raw, err := d.shares[k].Value.MarshalBinary()
		if err != nil {
			return fmt.Errorf("dealer: serialize share %d: %w", k+1, err)
		}
		if _, err := conn.WriteToUDP(raw, addr); err != nil {
			return fmt.Errorf("dealer: send share to %s: %w", addr, err)
		}
		served[k] = true
		d.log.Debugw("got share request", "node", k)
	}

	if len(served) < d.n {
		var missing *multierror.Error
		for k := 0; k < d.n; k++ {
			if !served[k] {
				missing = multierror.Append(missing, fmt.Errorf("no share request received from %s", wire.ResponderAddr(k, wire.SharePort)))
			}
		}
		return fmt.Errorf("dealer: key distribution incomplete: %w", missing.ErrorOrNil())
	}

	d.log.Debugw("all key shares sent!")
	return nil
}

func (d *Dealer) runSigningRounds(deadline time.Time) error {
	inbound, err := net.ListenUDP("udp4", &net.UDPAddr{Port: wire.DealerPort})
	if err != nil {
		return fmt.Errorf("dealer: listen on dealer port: %w", err)
	}
	defer inbound.Close()

	mcastAddr, err := net.ResolveUDPAddr("udp4", wire.MulticastAddr())
	if err != nil {
		return fmt.Errorf("dealer: resolve multicast address: %w", err)
	}
	mcastConn, err := net.DialUDP("udp4", nil, mcastAddr)
	if err != nil {
		return fmt.Errorf("dealer: dial multicast group: %w", err)
	}
	defer mcastConn.Close()
	if err := ipv4.NewPacketConn(mcastConn).SetMulticastTTL(32); err != nil {
		d.log.Warnw("could not set multicast TTL", "error", err)
	}

	d.signingStart = time.Now()

	type datagram struct {
		addr *net.UDPAddr
		data []byte
	}
	datagrams := make(chan datagram, 64)
	readErrs := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		buf := make([]byte, 4096)
		for {
			select {
			case <-done:
				return
			default:
			}
			if err := inbound.SetReadDeadline(time.Now().Add(200 * time.Millisecond)); err != nil {
				readErrs <- fmt.Errorf("dealer: set read deadline: %w", err)
				return
			}
			n, addr, err := inbound.ReadFromUDP(buf)
			if err != nil {
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					continue
				}
				readErrs <- fmt.Errorf("dealer: read partial signature: %w", err)
				return
			}
			payload := make([]byte, n)
			copy(payload, buf[:n])
			datagrams <- datagram{addr: addr, data: payload}
		}
	}()
	defer close(done)

	initiateNew := func() {
		if d.round.WasShort() {
			d.counters.IncAbort()
			d.log.Debugw("round aborted", "seq", d.round.Seq())
		}
		seq, msg := d.round.Advance(len(Messages), func(i int) []byte { return []byte(Messages[i]) })
		if _, err := mcastConn.Write(wire.EncodeSigningRequest(seq, msg)); err != nil {
			d.log.Warnw("failed to multicast signing request", "error", err)
		}
	}

	initiateNew() // first round

	watchdog := time.NewTimer(WatchdogTimeout)
	defer watchdog.Stop()
	stop := time.NewTimer(time.Until(deadline))
	defer stop.Stop()

	for {
		select {
		case <-stop.C:
			return d.shutdown(mcastConn)

		case err := <-readErrs:
			return err

		case <-watchdog.C:
			initiateNew()
			watchdog.Reset(WatchdogTimeout)

		case dg := <-datagrams:
			k, err := wire.NodeIndexFromHost(dg.addr.IP.String())
			if err == nil && k >= d.n {
				err = fmt.Errorf("node index %d is outside 0..%d", k, d.n-1)
			}
			if err != nil {
				d.log.Warnw("datagram from unrecognized address", "addr", dg.addr, "error", err)
				continue
			}
			watchdog.Reset(WatchdogTimeout)

			if len(dg.data) == 1 && dg.data[0] == wire.RestartRequest {
				initiateNew()
				continue
			}
			seq, sigma, err := wire.DecodeSigningResponse(dg.data)
			if err != nil {
				d.log.Warnw("malformed signing response, dropping", "error", err)
				continue
			}
			if !d.round.AddPartial(seq, wire.ShareIndex(k), sigma) {
				continue
			}
			if err := d.aggregateAndVerify(); err != nil {
				return err
			}
			initiateNew()
		}
	}
}

func (d *Dealer) aggregateAndVerify() error {
	indexed := d.round.Partials()
	partials := make([]tbls.PartialSignature, len(indexed))
	for i, p := range indexed {
		partials[i] = tbls.PartialSignature{Index: p.Index, Value: p.Sigma}
	}
	msg := d.round.Message()

	sig, err := tbls.Aggregate(d.scheme, d.poly.PubPoly(), msg, partials, d.t, d.n)
	if err != nil {
		return fmt.Errorf("dealer: aggregate: %w", err)
	}
	if err := tbls.Verify(d.scheme, d.poly.PublicKey(), msg, sig); err != nil {
		return fmt.Errorf("dealer: aggregated signature failed verification: %w", err)
	}
	d.counters.IncSignature()
	d.log.Debugw("signature produced", "seq", d.round.Seq(), "count", d.counters.Signatures())
	return nil
}

func (d *Dealer) shutdown(mcastConn *net.UDPConn) error {
	sigCount := d.counters.Signatures()
	abortCount := d.counters.Aborts()

	elapsed := time.Since(d.signingStart).Seconds()
	fmt.Printf("Completed %d in %.2f seconds.\n", sigCount, elapsed)
	if elapsed > 0 {
		fmt.Printf("Average is %.2f signatures per second\n", float64(sigCount)/elapsed)
	} else {
		fmt.Printf("Average is 0.00 signatures per second\n")
	}
	// sig_count=0 would otherwise divide by zero here (spec.md §9 open question).
	if sigCount == 0 {
		fmt.Printf("There were %d aborts (0.00000%%)\n", abortCount)
	} else {
		fmt.Printf("There were %d aborts (%.5f%%)\n", abortCount, 100*float64(abortCount)/float64(sigCount))
	}

	if _, err := mcastConn.Write([]byte{wire.ShutdownAll}); err != nil {
		return fmt.Errorf("dealer: multicast shutdown-all: %w", err)
	}
	return nil
}
