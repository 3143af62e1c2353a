package exchange

import (
	"context"
	"net"
)

// Exchange binds one net.Conn to the five components a single HTTP/1.x
// request/response cycle needs: BufferedConnection for I/O,
// HeadAccumulator and RequestParser (headaccum.go, parser.go) to read a
// request, BodyReader to stream its body, and ResponseEmitter to answer
// it. It is the unit the teacher's Connection.Serve loop drives one
// iteration of, generalized here into an explicit type an application
// controls directly instead of a callback-driven loop.
type Exchange struct {
	conn *BufferedConnection
	head *HeadAccumulator
	req  *Request
	body *BodyReader
	resp *ResponseEmitter

	headBuf    []byte
	trailerBuf []byte

	pool *ExchangePool
}

// NewExchange allocates a standalone Exchange bound to conn, not backed
// by a pool. Applications that don't need pooling can use this
// directly; server.Server normally obtains Exchanges from an
// ExchangePool instead (pool.go).
func NewExchange(conn net.Conn, pool *ExchangePool) *Exchange {
	headBuf := make([]byte, DefaultClientHeaderBuffer)
	trailerBuf := make([]byte, MinClientHeaderBuffer)
	bc := NewBufferedConnection(conn, DefaultConnBuffer)
	req := newRequest()
	e := &Exchange{
		conn:       bc,
		head:       NewHeadAccumulator(headBuf),
		req:        req,
		resp:       NewResponseEmitter(bc),
		headBuf:    headBuf,
		trailerBuf: trailerBuf,
	}
	e.body = NewBodyReader(bc, req, trailerBuf)
	return e
}

// rebind repoints a pooled Exchange at a freshly accepted connection.
func (e *Exchange) rebind(conn net.Conn, pool *ExchangePool) {
	e.conn.reset(conn)
	e.head.rebind(e.headBuf)
	e.req.reset()
	e.body.rebind(e.conn, e.req)
	e.resp.rebind(e.conn)
	e.pool = pool
}

// Wait blocks until a complete request head has arrived on conn,
// parses it, and returns the Request. On any failure it returns the
// error and, per the wait-failure obligation table in §6, the caller
// should consult Kind.StatusObligation to decide whether to answer with
// a status code (HeadersOversize -> 431, other parse errors -> 400)
// before calling Deinit, or to Deinit without responding (I/O
// failures).
//
// ctx is honored only via conn's deadline machinery if the caller has
// set one; Wait itself does not poll ctx.Done mid-read, matching the
// teacher's synchronous, one-goroutine-per-connection model.
func (e *Exchange) Wait(ctx context.Context) (*Request, error) {
	if dl, ok := ctx.Deadline(); ok {
		_ = e.conn.conn.SetReadDeadline(dl)
	}
	for !e.head.complete() {
		p := e.conn.peek()
		if len(p) == 0 {
			if err := e.conn.fill(); err != nil {
				if k, ok := err.(*Error); ok && k.Kind != EndOfStream {
					globalCounters.requestErrors.Add(1)
				}
				return nil, err
			}
			continue
		}
		n, err := e.head.checkCompleteHead(p)
		e.conn.drop(n)
		if err != nil {
			globalCounters.requestErrors.Add(1)
			// Let the caller Send the obligated status; the connection
			// is closed afterwards.
			e.resp.state, e.resp.closing = emitWaited, true
			return nil, err
		}
	}
	if err := parseHead(e.req, e.head.get()); err != nil {
		globalCounters.requestErrors.Add(1)
		e.resp.state, e.resp.closing = emitWaited, true
		return nil, err
	}
	if err := e.resp.wait(e.req); err != nil {
		return nil, err
	}
	globalCounters.requests.Add(1)
	return e.req, nil
}

// Send writes the response status line and headers. Set response
// headers via Exchange.ResponseHeaders before calling Send.
func (e *Exchange) Send(status int, reason string) error {
	return e.resp.send(status, reason)
}

// ResponseHeaders returns the header multi-map to populate before
// calling Send.
func (e *Exchange) ResponseHeaders() *Header { return &e.resp.Headers }

// Read streams decoded request body bytes into p, returning (0, nil)
// once the body (and any trailers) has been fully consumed.
func (e *Exchange) Read(p []byte) (int, error) {
	n, err := e.body.Read(p)
	if n > 0 {
		globalCounters.bodyBytesRead.Add(uint64(n))
	}
	if err != nil {
		if k, ok := err.(*Error); ok && k.Kind == DecompressionFailure {
			globalCounters.decompressionFailures.Add(1)
		}
	}
	return n, err
}

// ReadAll reads the entire request body into a freshly allocated slice.
// A convenience wrapper supplementing the raw Read, for the common case
// of small, fully-buffered bodies.
func (e *Exchange) ReadAll() ([]byte, error) {
	scratch := getScratch()
	defer putScratch(scratch)
	buf := make([]byte, 4096)
	for {
		n, err := e.Read(buf)
		if n > 0 {
			scratch.Write(buf[:n])
		}
		if err != nil || n == 0 {
			out := make([]byte, scratch.Len())
			copy(out, scratch.Bytes())
			return out, err
		}
	}
}

// Write streams response body bytes, framed per the mode Send fixed.
func (e *Exchange) Write(p []byte) (int, error) {
	n, err := e.resp.write(p)
	if n > 0 {
		globalCounters.responseBytesWritten.Add(uint64(n))
	}
	return n, err
}

// WriteAll writes all of p, looping over ResponseEmitter.write until
// every byte is accepted or an error occurs.
func (e *Exchange) WriteAll(p []byte) error {
	for len(p) > 0 {
		n, err := e.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

// Finish closes out response body framing.
func (e *Exchange) Finish() error {
	return e.resp.finish()
}

// Reset decides whether the underlying connection may be reused for
// another pipelined request. Closing is forced whenever the request
// body was not fully consumed (the stream position would otherwise be
// ambiguous for the next request) or the response framing did not
// complete cleanly.
func (e *Exchange) Reset() (Outcome, error) {
	bodyComplete := e.req.parser.complete
	outcome := e.resp.reset(bodyComplete)
	if outcome == OutcomeReset {
		globalCounters.resetsClean.Add(1)
		e.head.reset()
		e.req.reset()
	} else {
		globalCounters.resetsClosing.Add(1)
	}
	return outcome, nil
}

// Deinit releases the Exchange back to its pool, if any, or is a no-op
// for a standalone Exchange.
func (e *Exchange) Deinit() {
	if e.pool != nil {
		e.pool.putExchange(e)
	}
}

// RemoteAddr returns the underlying connection's remote address.
func (e *Exchange) RemoteAddr() net.Addr { return e.conn.conn.RemoteAddr() }
