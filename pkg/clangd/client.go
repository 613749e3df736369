// Package clangd speaks the language server protocol to clangd and serves
// its textDocument/ast extension as a syntax.Service.
//
// Positions on the wire are zero-based lines and UTF-16 code units, the same
// as document.Position, so ranges pass through unchanged.
package clangd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/astnav/internal/logging"
	"github.com/yaklabco/astnav/pkg/syntax"
)

var errClosed = errors.New("connection closed")

// Client is a connection to one language server.
type Client struct {
	conn   *conn
	closer io.Closer
	cmd    *exec.Cmd
	logger *log.Logger

	// readers runs the reply loop and, for a started process, the stderr
	// drain. Both end when the server closes its side of the pipes.
	readers errgroup.Group

	nextID  atomic.Int64
	closed  atomic.Bool
	done    chan struct{}
	mu      sync.Mutex
	pending map[int64]chan result
	readErr error
}

type result struct {
	raw json.RawMessage
	err error
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger for protocol traffic and server stderr.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient speaks the protocol over r and w. Closing the client closes w.
func NewClient(r io.Reader, w io.WriteCloser, opts ...Option) *Client {
	c := &Client{
		conn:    newConn(r, w),
		closer:  w,
		logger:  logging.Discard(),
		done:    make(chan struct{}),
		pending: make(map[int64]chan result),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.readers.Go(c.readLoop)
	return c
}

// Start launches a server process and connects to its stdio. The caller
// must Initialize the client before using it.
func Start(ctx context.Context, command string, args []string, opts ...Option) (*Client, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		return nil, &syntax.ServiceError{Kind: syntax.Unreachable, Op: "start " + command, Err: err}
	}

	c := NewClient(stdout, stdin, opts...)
	c.cmd = cmd
	c.readers.Go(func() error { return c.drain(command, stderr) })
	c.logger.Debug("started language server", logging.FieldServer, command, "pid", cmd.Process.Pid)
	return c, nil
}

func (c *Client) drain(command string, stderr io.Reader) error {
	sc := bufio.NewScanner(stderr)
	for sc.Scan() {
		c.logger.Debug(sc.Text(), logging.FieldServer, command)
	}
	return sc.Err()
}

// Initialize performs the initialize handshake.
func (c *Client) Initialize(ctx context.Context, rootURI string) error {
	params := initializeParams{
		ProcessID:    os.Getpid(),
		RootURI:      rootURI,
		Capabilities: map[string]any{},
	}
	if err := c.call(ctx, methodInitialize, params, nil); err != nil {
		return err
	}
	return c.notify(methodInitialized, struct{}{})
}

// AST implements syntax.Service. clangd answers for the text it was last
// sent, so the request version is not on the wire.
func (c *Client) AST(ctx context.Context, req syntax.Request) (*syntax.RawNode, error) {
	var node *astNode
	params := astParams{TextDocument: textDocumentIdentifier{URI: req.URI}, Range: req.Range}
	if err := c.call(ctx, methodAST, params, &node); err != nil {
		return nil, err
	}
	return node.raw(), nil
}

// DidOpen implements syntax.DocumentSyncer.
func (c *Client) DidOpen(_ context.Context, uri, languageID string, version int, text string) error {
	return c.notify(methodDidOpen, didOpenParams{TextDocument: textDocumentItem{
		URI:        uri,
		LanguageID: languageID,
		Version:    version,
		Text:       text,
	}})
}

// DidChange implements syntax.DocumentSyncer with a full-text change.
func (c *Client) DidChange(_ context.Context, uri string, version int, text string) error {
	return c.notify(methodDidChange, didChangeParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: uri, Version: version},
		ContentChanges: []contentChange{{Text: text}},
	})
}

// DidClose implements syntax.DocumentSyncer.
func (c *Client) DidClose(_ context.Context, uri string) error {
	return c.notify(methodDidClose, didCloseParams{TextDocument: textDocumentIdentifier{URI: uri}})
}

// Shutdown asks the server to shut down and exit.
func (c *Client) Shutdown(ctx context.Context) error {
	if err := c.call(ctx, methodShutdown, nil, nil); err != nil {
		return err
	}
	return c.notify(methodExit, nil)
}

// Close drops the connection. For a started server it then waits for the
// pipe readers to finish and for the process to exit.
func (c *Client) Close() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := c.closer.Close()
	if c.cmd == nil {
		return err
	}
	if rerr := c.readers.Wait(); rerr != nil {
		c.logger.Debug("server stderr", logging.FieldError, rerr)
	}
	return errors.Join(err, c.cmd.Wait())
}

// Done is closed when the server side of the connection goes away.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) call(ctx context.Context, method string, params, out any) error {
	if c.closed.Load() {
		return unreachable(method, errClosed)
	}

	id := c.nextID.Add(1)
	ch := make(chan result, 1)
	c.mu.Lock()
	if c.pending == nil {
		err := c.readErr
		c.mu.Unlock()
		return unreachable(method, err)
	}
	c.pending[id] = ch
	c.mu.Unlock()
	defer c.forget(id)

	c.logger.Debug("request", logging.FieldMethod, method, "id", id)
	if err := c.conn.write(request{JSONRPC: "2.0", ID: id, Method: method, Params: params}); err != nil {
		return unreachable(method, err)
	}

	select {
	case res, ok := <-ch:
		if !ok {
			return unreachable(method, c.err())
		}
		var rerr *rpcError
		if errors.As(res.err, &rerr) {
			return &syntax.ServiceError{Kind: syntax.Protocol, Op: method, Code: rerr.Code, Err: rerr}
		}
		if out == nil || len(res.raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(res.raw, out); err != nil {
			return &syntax.ServiceError{Kind: syntax.Protocol, Op: method, Err: fmt.Errorf("decode result: %w", err)}
		}
		return nil
	case <-ctx.Done():
		if err := c.notify(methodCancel, cancelParams{ID: id}); err != nil {
			c.logger.Debug("cancel not sent", logging.FieldMethod, method, logging.FieldError, err)
		}
		return fmt.Errorf("%s: %w", method, ctx.Err())
	}
}

func (c *Client) notify(method string, params any) error {
	if c.closed.Load() {
		return unreachable(method, errClosed)
	}
	if err := c.conn.write(notification{JSONRPC: "2.0", Method: method, Params: params}); err != nil {
		return unreachable(method, err)
	}
	return nil
}

func (c *Client) forget(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

func (c *Client) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr == nil {
		return errClosed
	}
	return c.readErr
}

// readLoop dispatches server messages until the connection fails. The
// failure is handed to pending calls rather than returned.
func (c *Client) readLoop() error {
	var err error
	defer func() { c.fail(err) }()

	for {
		var msg message
		msg, err = c.conn.read()
		if err != nil {
			return nil
		}

		switch {
		case msg.Method != "" && len(msg.ID) > 0:
			// Nothing is advertised, so any server request gets a null result.
			c.logger.Debug("server request", logging.FieldMethod, msg.Method)
			if err = c.conn.write(response{JSONRPC: "2.0", ID: msg.ID}); err != nil {
				return nil
			}
		case msg.Method != "":
			c.logger.Debug("server notification", logging.FieldMethod, msg.Method)
		case len(msg.ID) > 0:
			c.deliver(msg)
		}
	}
}

func (c *Client) deliver(msg message) {
	id, err := strconv.ParseInt(string(msg.ID), 10, 64)
	if err != nil {
		c.logger.Debug("reply with foreign id", "id", string(msg.ID))
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()
	if !ok {
		// The caller gave up on it.
		return
	}

	if msg.Error != nil {
		ch <- result{err: msg.Error}
	} else {
		ch <- result{raw: msg.Result}
	}
	close(ch)
}

func (c *Client) fail(err error) {
	if errors.Is(err, io.EOF) || err == nil {
		err = errClosed
	}

	c.mu.Lock()
	c.readErr = err
	for _, ch := range c.pending {
		close(ch)
	}
	c.pending = nil
	c.mu.Unlock()

	close(c.done)
	if !c.closed.Load() {
		c.logger.Warn("language server connection lost", logging.FieldError, err)
	}
}

func unreachable(op string, err error) error {
	if err == nil {
		err = errClosed
	}
	return &syntax.ServiceError{Kind: syntax.Unreachable, Op: op, Err: err}
}
