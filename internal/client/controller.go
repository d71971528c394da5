package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"core/internal/model"
)

// Searcher executes one search; *Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error)
}

// Result is one completed search delivered to the controller's callback.
type Result struct {
	Request  model.SearchRequest
	Response *model.SearchResponse
	Err      error
}

// Controller coalesces rapid filter changes into one search and
// guarantees that only the newest search's result is ever delivered.
// Each dispatched search carries a sequence number; a response whose
// number is no longer the latest is dropped, so a slow early response
// can never overwrite a fast later one.
type Controller struct {
	searcher Searcher
	debounce time.Duration
	onResult func(Result)

	mu      sync.Mutex
	timer   *time.Timer
	pending model.SearchRequest
	cancel  context.CancelFunc
	seq     uint64
	closed  bool
}

// NewController creates a controller delivering results to onResult.
// The callback runs on the controller's goroutine; keep it cheap.
func NewController(searcher Searcher, debounce time.Duration, onResult func(Result)) *Controller {
	return &Controller{
		searcher: searcher,
		debounce: debounce,
		onResult: onResult,
	}
}

// Request records the desired search and (re)starts the debounce
// window. Calls arriving within the window replace the pending request
// so only the final state is searched.
func (c *Controller) Request(req model.SearchRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.pending = req
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.fire)
}

// fire dispatches the pending request, cancelling any in-flight search
// it supersedes.
func (c *Controller) fire() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	req := c.pending
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	go func() {
		resp, err := c.searcher.Search(ctx, req)

		c.mu.Lock()
		stale := c.seq != seq || c.closed
		c.mu.Unlock()
		if stale || errors.Is(err, context.Canceled) {
			return
		}

		c.onResult(Result{Request: req, Response: resp, Err: err})
	}()
}

// Close stops the debounce timer and cancels any in-flight search.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.cancel != nil {
		c.cancel()
	}
}
