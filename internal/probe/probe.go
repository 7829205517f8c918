// Package probe executes a single timed HTTP(S) attempt against a check's
// endpoint. Three completion sources race for each attempt — the response,
// a transport error, and the timeout — and a single-resolution latch
// guarantees exactly one of them produces the attempt's outcome.
package probe

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"upcheck/internal/model"
)

// Outcome is the resolved result of one probe attempt.
type Outcome struct {
	Err          bool
	Timeout      bool
	ResponseCode int
}

// resolver is a one-shot outcome slot. The first resolve wins; the channel
// is buffered so the winner never blocks and late losers are simply dropped.
type resolver struct {
	resolved atomic.Bool
	ch       chan Outcome
}

func newResolver() *resolver {
	return &resolver{ch: make(chan Outcome, 1)}
}

// resolve latches the outcome if no other completion source got there first.
// It reports whether this call won.
func (r *resolver) resolve(o Outcome) bool {
	if !r.resolved.CompareAndSwap(false, true) {
		return false
	}
	r.ch <- o
	return true
}

// Executor issues probe attempts. The zero value is not usable; call New.
type Executor struct {
	client *http.Client
}

// New creates an executor. client may be nil, in which case a client with no
// global timeout is used — per-attempt timeouts come from each check's own
// TimeoutSeconds.
func New(client *http.Client) *Executor {
	if client == nil {
		client = &http.Client{}
	}
	return &Executor{client: client}
}

// Execute performs one attempt for a validated check and returns its single
// outcome. There are no retries; the next sweep cycle is the only retry
// mechanism. A completion arriving after the timeout has already resolved
// the attempt is discarded.
func (e *Executor) Execute(ctx context.Context, chk model.Check) Outcome {
	target, err := url.Parse(chk.Protocol + "://" + chk.URL)
	if err != nil {
		return Outcome{Err: true}
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(chk.Method), target.String(), nil)
	if err != nil {
		return Outcome{Err: true}
	}

	res := newResolver()
	go func() {
		resp, err := e.client.Do(req)
		if err != nil {
			res.resolve(Outcome{Err: true})
			return
		}
		code := resp.StatusCode
		_ = resp.Body.Close()
		res.resolve(Outcome{ResponseCode: code})
	}()

	timer := time.NewTimer(time.Duration(chk.TimeoutSeconds) * time.Second)
	defer timer.Stop()

	select {
	case o := <-res.ch:
		return o
	case <-timer.C:
		// The request goroutine may resolve concurrently; whichever side
		// wins the latch supplies the outcome already sitting in the channel.
		res.resolve(Outcome{Err: true, Timeout: true})
		return <-res.ch
	}
}
