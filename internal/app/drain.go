package app

import (
	"context"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// answerBeforeEOF wraps a transport so that end of input is reported only
// after every call read from the peer has been answered. A client that writes
// a request and closes stdin right away still receives the response.
type answerBeforeEOF struct {
	inner mcp.Transport
}

// Connect implements mcp.Transport.
func (t answerBeforeEOF) Connect(ctx context.Context) (mcp.Connection, error) {
	conn, err := t.inner.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return newHoldingConn(conn), nil
}

// holdingConn counts calls that are read but not yet answered.
type holdingConn struct {
	mcp.Connection

	mu          sync.Mutex
	outstanding map[jsonrpc.ID]struct{}
	answered    chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

func newHoldingConn(conn mcp.Connection) *holdingConn {
	return &holdingConn{
		Connection:  conn,
		outstanding: map[jsonrpc.ID]struct{}{},
		answered:    make(chan struct{}, 1),
		closed:      make(chan struct{}),
	}
}

// Read holds back a read error until no call is outstanding or the
// connection is closed.
func (c *holdingConn) Read(ctx context.Context) (jsonrpc.Message, error) {
	msg, err := c.Connection.Read(ctx)
	if err != nil {
		c.waitAnswered(ctx)
		return nil, err
	}
	if req, ok := msg.(*jsonrpc.Request); ok && req.ID.IsValid() {
		c.mu.Lock()
		c.outstanding[req.ID] = struct{}{}
		c.mu.Unlock()
	}
	return msg, nil
}

// Write marks a call answered once its response has been handed to the peer.
func (c *holdingConn) Write(ctx context.Context, msg jsonrpc.Message) error {
	err := c.Connection.Write(ctx, msg)
	if resp, ok := msg.(*jsonrpc.Response); ok {
		c.mu.Lock()
		delete(c.outstanding, resp.ID)
		c.mu.Unlock()
		select {
		case c.answered <- struct{}{}:
		default:
		}
	}
	return err
}

// Close unblocks a held Read.
func (c *holdingConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return c.Connection.Close()
}

// Outstanding returns the number of unanswered calls.
func (c *holdingConn) Outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.outstanding)
}

func (c *holdingConn) waitAnswered(ctx context.Context) {
	for c.Outstanding() > 0 {
		select {
		case <-c.answered:
		case <-c.closed:
			return
		case <-ctx.Done():
			return
		}
	}
}
