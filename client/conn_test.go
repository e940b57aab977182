package client

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"net"
	"strconv"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/rqlconform/rqlconform/value"
)

// stubServer speaks just enough of the wire protocol to answer queries
// from a canned response function.
type stubServer struct {
	ln      net.Listener
	respond func(query []byte) []byte
}

func startStubServer(t *testing.T, respond func(query []byte) []byte) (host string, port int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, err)

	s := &stubServer{ln: ln, respond: respond}

	go s.serve()

	t.Cleanup(func() { ln.Close() })

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	assert.NoError(t, err)

	port, err = strconv.Atoi(portStr)
	assert.NoError(t, err)

	return host, port
}

func (s *stubServer) serve() {
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	// Handshake: consume the magic word, acknowledge.
	magic := make([]byte, 4)
	if _, err := io.ReadFull(conn, magic); err != nil {
		return
	}

	if _, err := conn.Write([]byte("SUCCESS\x00")); err != nil {
		return
	}

	for {
		header := make([]byte, 12)
		if _, err := io.ReadFull(conn, header); err != nil {
			return
		}

		length := binary.LittleEndian.Uint32(header[8:12])

		body := make([]byte, length)
		if _, err := io.ReadFull(conn, body); err != nil {
			return
		}

		resp := s.respond(body)

		out := make([]byte, 12+len(resp))
		copy(out[0:8], header[0:8]) // echo the token
		binary.LittleEndian.PutUint32(out[8:12], uint32(len(resp)))
		copy(out[12:], resp)

		if _, err := conn.Write(out); err != nil {
			return
		}
	}
}

func TestConnectAndRunAtom(t *testing.T) {
	host, port := startStubServer(t, func(query []byte) []byte {
		// Echo the query datum back as an atom.
		var frame []json.RawMessage
		if err := json.Unmarshal(query, &frame); err != nil || len(frame) != 2 {
			return []byte(`{"t": 16, "r": ["bad frame"]}`)
		}

		resp, _ := json.Marshal(map[string]any{
			"t": responseAtom,
			"r": []json.RawMessage{frame[1]},
		})

		return resp
	})

	conn, err := Connect(context.Background(), host, port)
	assert.NoError(t, err)

	defer conn.Close()

	term := value.FromList([]value.Value{value.FromInt(1), value.FromString("two")})

	got, err := conn.Run(context.Background(), term)
	assert.NoError(t, err)
	assert.True(t, got.Equal(term))

	// The connection is reused for subsequent queries.
	got, err = conn.Run(context.Background(), value.FromInt(6))
	assert.NoError(t, err)
	assert.True(t, got.Equal(value.FromInt(6)))
}

func TestRunServerError(t *testing.T) {
	host, port := startStubServer(t, func([]byte) []byte {
		return []byte(`{"t": 18, "r": ["Expected type X but found type Y:\ndetails"]}`)
	})

	conn, err := Connect(context.Background(), host, port)
	assert.NoError(t, err)

	defer conn.Close()

	_, err = conn.Run(context.Background(), value.FromInt(1))
	assert.Error(t, err)

	srvErr, ok := err.(*ServerError)
	assert.True(t, ok)
	assert.Equal(t, "RqlRuntimeError", srvErr.ErrorKind())
	assert.Equal(t, "Expected type X but found type Y:\ndetails", srvErr.Error())
}

func TestRunCompileError(t *testing.T) {
	host, port := startStubServer(t, func([]byte) []byte {
		return []byte(`{"t": 17, "r": ["bad term"]}`)
	})

	conn, err := Connect(context.Background(), host, port)
	assert.NoError(t, err)

	defer conn.Close()

	_, err = conn.Run(context.Background(), value.FromInt(1))

	srvErr, ok := err.(*ServerError)
	assert.True(t, ok)
	assert.Equal(t, "RqlCompileError", srvErr.ErrorKind())
}

func TestHandshakeRejected(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, err)

	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		magic := make([]byte, 4)
		if _, err := io.ReadFull(conn, magic); err != nil {
			return
		}

		conn.Write([]byte("ERROR: unsupported version\x00"))
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	assert.NoError(t, err)

	port, err := strconv.Atoi(portStr)
	assert.NoError(t, err)

	_, err = Connect(context.Background(), host, port)
	assert.IsError(t, err, ErrHandshakeRejected)
}

func TestRunUnwireableTerm(t *testing.T) {
	host, port := startStubServer(t, func([]byte) []byte {
		return []byte(`{"t": 1, "r": [null]}`)
	})

	conn, err := Connect(context.Background(), host, port)
	assert.NoError(t, err)

	defer conn.Close()

	_, err = conn.Run(context.Background(), value.FromError("RqlRuntimeError", "not a datum"))
	assert.Error(t, err)
}
