// Package rpc picks a working JSON-RPC endpoint out of a chain's public list.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/calldecode/internal/chain"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest  Algorithm = "fastest"
	AlgorithmFailover Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
	probeTimeout        = 5 * time.Second
	maxParallelProbes   = 8
)

// ParseAlgorithm validates a configured algorithm name. Empty means fastest.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case "", AlgorithmFastest:
		return AlgorithmFastest, nil
	case AlgorithmFailover:
		return AlgorithmFailover, nil
	default:
		return "", fmt.Errorf("unknown RPC algorithm %q (want %s or %s)", s, AlgorithmFastest, AlgorithmFailover)
	}
}

// Pinger is the probe surface of an RPC client.
type Pinger interface {
	Ping(ctx context.Context) (time.Duration, uint64, error)
}

// Endpoint is one probed RPC URL.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Healthy reports whether the probe succeeded.
func (e Endpoint) Healthy() bool { return e.Err == nil }

// Probe pings every URL in parallel. Results keep the order of urls.
func Probe(ctx context.Context, urls []string, dial func(url string) Pinger) []Endpoint {
	out := make([]Endpoint, len(urls))

	var g errgroup.Group
	g.SetLimit(maxParallelProbes)
	for i, u := range urls {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()
			latency, block, err := dial(u).Ping(pctx)
			out[i] = Endpoint{URL: u, Latency: latency, BlockNumber: block, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Pick chooses an endpoint. Fastest takes the lowest-latency healthy node
// that is not stale; failover takes the first healthy node in list order.
func Pick(endpoints []Endpoint, algo Algorithm) (*Endpoint, error) {
	if algo == AlgorithmFailover {
		for i := range endpoints {
			if endpoints[i].Healthy() {
				return &endpoints[i], nil
			}
		}
		return nil, ErrNoHealthyRPC
	}

	var bestBlock uint64
	for _, e := range endpoints {
		if e.Healthy() && e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}

	var winner *Endpoint
	for i := range endpoints {
		e := &endpoints[i]
		if !e.Healthy() || bestBlock-e.BlockNumber > staleBlockThreshold {
			continue
		}
		if winner == nil || e.Latency < winner.Latency ||
			(e.Latency == winner.Latency && e.BlockNumber > winner.BlockNumber) {
			winner = e
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}
	return winner, nil
}

// SelectBest probes urls and returns the chosen one. A single URL is returned
// without probing.
func SelectBest(ctx context.Context, urls []string, algo Algorithm) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}

	endpoints := Probe(ctx, urls, func(u string) Pinger { return chain.NewEVMClient(u) })
	winner, err := Pick(endpoints, algo)
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
