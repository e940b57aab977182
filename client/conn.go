// Package client implements the wire connection to a server under test.
// The protocol is deliberately minimal: a version handshake followed by
// length-prefixed JSON query frames, one outstanding query at a time.
package client

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/rqlconform/rqlconform/value"
)

// Sentinel errors
var (
	ErrHandshakeRejected = errors.New("server rejected protocol handshake")
	ErrTokenMismatch     = errors.New("response token does not match query token")
	ErrBadResponse       = errors.New("malformed server response")
	ErrFrameTooLarge     = errors.New("response frame exceeds size limit")
)

// protocolMagic is the version word sent on connect.
const protocolMagic uint32 = 0x3f61ba36

// queryStart opens a new query in a frame body.
const queryStart = 1

// Response types.
const (
	responseAtom         = 1
	responseClientError  = 16
	responseCompileError = 17
	responseRuntimeError = 18
)

// maxFrameSize bounds a single response body.
const maxFrameSize = 64 << 20

// ServerError is an error the server returned for a query. Error returns
// only the message so it can be compared against expected messages; the
// kind name travels separately.
type ServerError struct {
	Kind    string
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// ErrorKind returns the query-language error kind name, for example
// "RqlRuntimeError".
func (e *ServerError) ErrorKind() string {
	return e.Kind
}

// Conn is one open connection to a server under test. It is created once
// at process start and used strictly sequentially for the whole run; a
// failed query does not close or recreate it.
type Conn struct {
	conn  net.Conn
	r     *bufio.Reader
	token uint64
}

// Connect dials the server and performs the protocol handshake. The
// context bounds dialing only; queries themselves have no timeout at this
// layer.
func Connect(ctx context.Context, host string, port int) (*Conn, error) {
	var d net.Dialer

	addr := net.JoinHostPort(host, strconv.Itoa(port))

	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	c := &Conn{conn: nc, r: bufio.NewReader(nc)}

	if err := c.handshake(); err != nil {
		nc.Close()
		return nil, err
	}

	return c, nil
}

func (c *Conn) handshake() error {
	var magic [4]byte

	binary.LittleEndian.PutUint32(magic[:], protocolMagic)

	if _, err := c.conn.Write(magic[:]); err != nil {
		return fmt.Errorf("handshake write failed: %w", err)
	}

	reply, err := c.r.ReadString(0)
	if err != nil {
		return fmt.Errorf("handshake read failed: %w", err)
	}

	if reply != "SUCCESS\x00" {
		return fmt.Errorf("%w: %q", ErrHandshakeRejected, reply)
	}

	return nil
}

// Run sends one query term and blocks until the server responds. A
// successful response yields the result value; an error response yields a
// *ServerError carrying the server's error kind and message.
func (c *Conn) Run(ctx context.Context, term value.Value) (value.Value, error) {
	if err := ctx.Err(); err != nil {
		return value.Value{}, err
	}

	c.token++

	body, err := json.Marshal([2]any{queryStart, term})
	if err != nil {
		return value.Value{}, fmt.Errorf("failed to encode query: %w", err)
	}

	header := make([]byte, 12)
	binary.LittleEndian.PutUint64(header[0:8], c.token)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(body)))

	if _, err := c.conn.Write(append(header, body...)); err != nil {
		return value.Value{}, fmt.Errorf("failed to send query: %w", err)
	}

	return c.readResponse()
}

func (c *Conn) readResponse() (value.Value, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(c.r, header); err != nil {
		return value.Value{}, fmt.Errorf("failed to read response header: %w", err)
	}

	token := binary.LittleEndian.Uint64(header[0:8])
	if token != c.token {
		return value.Value{}, fmt.Errorf("%w: sent %d, received %d", ErrTokenMismatch, c.token, token)
	}

	length := binary.LittleEndian.Uint32(header[8:12])
	if length > maxFrameSize {
		return value.Value{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(c.r, body); err != nil {
		return value.Value{}, fmt.Errorf("failed to read response body: %w", err)
	}

	var resp struct {
		Type   int               `json:"t"`
		Result []json.RawMessage `json:"r"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return value.Value{}, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}

	switch resp.Type {
	case responseAtom:
		if len(resp.Result) != 1 {
			return value.Value{}, fmt.Errorf("%w: atom response carries %d results", ErrBadResponse, len(resp.Result))
		}

		return value.DecodeJSON(resp.Result[0])
	case responseClientError, responseCompileError, responseRuntimeError:
		return value.Value{}, decodeServerError(resp.Type, resp.Result)
	default:
		return value.Value{}, fmt.Errorf("%w: unknown response type %d", ErrBadResponse, resp.Type)
	}
}

func decodeServerError(typ int, result []json.RawMessage) error {
	message := ""

	if len(result) > 0 {
		var s string
		if err := json.Unmarshal(result[0], &s); err == nil {
			message = s
		}
	}

	kind := "RqlRuntimeError"

	switch typ {
	case responseClientError:
		kind = "RqlClientError"
	case responseCompileError:
		kind = "RqlCompileError"
	}

	return &ServerError{Kind: kind, Message: message}
}

// Close shuts the connection down at the end of the run.
func (c *Conn) Close() error {
	return c.conn.Close()
}
