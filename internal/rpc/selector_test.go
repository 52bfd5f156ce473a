package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	latency time.Duration
	block   uint64
	err     error
}

func (f fakePinger) Ping(context.Context) (time.Duration, uint64, error) {
	return f.latency, f.block, f.err
}

func TestParseAlgorithm(t *testing.T) {
	algo, err := ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmFastest, algo)

	algo, err = ParseAlgorithm("failover")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmFailover, algo)

	_, err = ParseAlgorithm("round-robin")
	assert.Error(t, err)
}

func TestProbeKeepsOrder(t *testing.T) {
	pingers := map[string]fakePinger{
		"a": {latency: 30 * time.Millisecond, block: 100},
		"b": {err: errors.New("connection refused")},
		"c": {latency: 10 * time.Millisecond, block: 101},
	}
	out := Probe(context.Background(), []string{"a", "b", "c"}, func(u string) Pinger { return pingers[u] })

	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].URL)
	assert.True(t, out[0].Healthy())
	assert.Equal(t, "b", out[1].URL)
	assert.False(t, out[1].Healthy())
	assert.Equal(t, uint64(101), out[2].BlockNumber)
}

func TestPickFastestSkipsStaleAndUnhealthy(t *testing.T) {
	endpoints := []Endpoint{
		{URL: "slow", Latency: 200 * time.Millisecond, BlockNumber: 1000},
		{URL: "stale", Latency: 5 * time.Millisecond, BlockNumber: 990},
		{URL: "down", Err: errors.New("timeout")},
		{URL: "fast", Latency: 40 * time.Millisecond, BlockNumber: 999},
	}
	winner, err := Pick(endpoints, AlgorithmFastest)
	require.NoError(t, err)
	assert.Equal(t, "fast", winner.URL)
}

func TestPickFastestTieBreaksOnBlock(t *testing.T) {
	endpoints := []Endpoint{
		{URL: "behind", Latency: 10 * time.Millisecond, BlockNumber: 99},
		{URL: "head", Latency: 10 * time.Millisecond, BlockNumber: 100},
	}
	winner, err := Pick(endpoints, AlgorithmFastest)
	require.NoError(t, err)
	assert.Equal(t, "head", winner.URL)
}

func TestPickFailoverTakesFirstHealthy(t *testing.T) {
	endpoints := []Endpoint{
		{URL: "down", Err: errors.New("refused")},
		{URL: "second", Latency: 300 * time.Millisecond},
		{URL: "third", Latency: time.Millisecond},
	}
	winner, err := Pick(endpoints, AlgorithmFailover)
	require.NoError(t, err)
	assert.Equal(t, "second", winner.URL)
}

func TestPickNoHealthy(t *testing.T) {
	endpoints := []Endpoint{{URL: "x", Err: errors.New("down")}}
	_, err := Pick(endpoints, AlgorithmFastest)
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
	_, err = Pick(endpoints, AlgorithmFailover)
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
	_, err = Pick(nil, AlgorithmFastest)
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
}

func blockServer(t *testing.T, block uint64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  fmt.Sprintf("0x%x", block),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSelectBestAgainstLiveServers(t *testing.T) {
	good := blockServer(t, 500)
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(dead.Close)

	url, err := SelectBest(context.Background(), []string{dead.URL, good.URL}, AlgorithmFailover)
	require.NoError(t, err)
	assert.Equal(t, good.URL, url)
}

func TestSelectBestShortLists(t *testing.T) {
	_, err := SelectBest(context.Background(), nil, AlgorithmFastest)
	assert.ErrorIs(t, err, ErrNoHealthyRPC)

	url, err := SelectBest(context.Background(), []string{"https://only.example"}, AlgorithmFastest)
	require.NoError(t, err)
	assert.Equal(t, "https://only.example", url)
}
