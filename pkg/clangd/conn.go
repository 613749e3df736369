package clangd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

const headerContentLength = "content-length:"

var errNoContentLength = errors.New("missing content-length header")

// conn frames JSON-RPC messages with LSP base-protocol headers.
type conn struct {
	r *bufio.Reader

	mu sync.Mutex
	w  io.Writer
}

func newConn(r io.Reader, w io.Writer) *conn {
	return &conn{r: bufio.NewReader(r), w: w}
}

// read returns the next message. Headers other than Content-Length are
// ignored.
func (c *conn) read() (message, error) {
	length := -1
	for {
		line, err := c.r.ReadString('\n')
		if err != nil {
			return message{}, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		lower := strings.ToLower(line)
		if !strings.HasPrefix(lower, headerContentLength) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(lower[len(headerContentLength):]))
		if err != nil || n < 0 {
			return message{}, fmt.Errorf("invalid content-length %q", line)
		}
		length = n
	}
	if length < 0 {
		return message{}, errNoContentLength
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(c.r, body); err != nil {
		return message{}, fmt.Errorf("read body: %w", err)
	}

	var msg message
	if err := json.Unmarshal(body, &msg); err != nil {
		return message{}, fmt.Errorf("decode message: %w", err)
	}
	return msg, nil
}

// write sends v as one frame. Frames from concurrent writers never
// interleave.
func (c *conn) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	_, err = c.w.Write(data)
	return err
}
