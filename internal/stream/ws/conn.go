package ws

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Conn is a push-only server-side WebSocket connection over a hijacked
// TCP stream. Writes frame payloads as final unmasked text frames;
// reads are only drained to notice the peer going away.
type Conn struct {
	raw net.Conn

	writeMu      sync.Mutex
	WriteTimeout time.Duration
}

// HandshakeError reports an invalid upgrade request. It is always
// returned before the connection is hijacked, so the caller can still
// write a plain HTTP error response. Any other error from Upgrade
// means the hijack was attempted or completed and the ResponseWriter
// must not be written to; the caller should only log it.
type HandshakeError struct {
	Reason string
}

func (e *HandshakeError) Error() string { return e.Reason }

// Upgrade validates the client's upgrade request, hijacks the
// underlying connection, and completes the RFC 6455 handshake by hand.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	if !headerContainsToken(r.Header, "Connection", "upgrade") {
		return nil, &HandshakeError{Reason: "missing Connection: Upgrade header"}
	}
	if !strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return nil, &HandshakeError{Reason: "not a websocket upgrade request"}
	}
	key := r.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		return nil, &HandshakeError{Reason: "missing Sec-WebSocket-Key header"}
	}

	hj, ok := w.(http.Hijacker)
	if !ok {
		return nil, fmt.Errorf("response writer does not support hijacking")
	}
	raw, rw, err := hj.Hijack()
	if err != nil {
		return nil, fmt.Errorf("hijack: %w", err)
	}

	resp := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + AcceptKey(key) + "\r\n" +
		"\r\n"
	if _, err := rw.WriteString(resp); err != nil {
		raw.Close()
		return nil, fmt.Errorf("write handshake response: %w", err)
	}
	if err := rw.Flush(); err != nil {
		raw.Close()
		return nil, fmt.Errorf("flush handshake response: %w", err)
	}

	return &Conn{raw: raw, WriteTimeout: 10 * time.Second}, nil
}

// WriteMessage frames payload as text and writes it. Locked so a
// racing replacement connection cannot interleave header and payload
// bytes on the wire.
func (c *Conn) WriteMessage(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.WriteTimeout > 0 {
		c.raw.SetWriteDeadline(time.Now().Add(c.WriteTimeout))
	}
	if _, err := c.raw.Write(EncodeTextFrame(payload)); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// WaitClose blocks until the peer closes the connection or the
// transport errors. Inbound bytes are discarded unparsed.
func (c *Conn) WaitClose() {
	buf := make([]byte, 512)
	for {
		if _, err := c.raw.Read(buf); err != nil {
			return
		}
	}
}

// Close tears down the underlying TCP connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// headerContainsToken reports whether a comma-separated header value
// contains the given token, case-insensitively. Browsers send
// "Connection: keep-alive, Upgrade".
func headerContainsToken(h http.Header, name, token string) bool {
	for _, value := range h.Values(name) {
		for _, part := range strings.Split(value, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}
