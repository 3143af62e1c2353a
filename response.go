package exchange

import "strconv"

// emitterState is the ResponseEmitter lifecycle: First, waiting for a
// request to answer; Waited, once Exchange.Wait has handed back a
// Request; Responded, once send() has written the status line and
// headers; Finished, once finish() has closed out the body framing.
type emitterState int

const (
	emitFirst emitterState = iota
	emitWaited
	emitResponded
	emitFinished
)

// responseBodyMode is the response-side analogue of bodyMode: which of
// the three body shapes send() committed to, fixed by the headers
// present (or defaulted) at send() time.
type responseBodyMode int

const (
	respNone responseBodyMode = iota
	respContentLength
	respChunked
)

// Outcome reports what Exchange.Reset decided about the underlying
// connection: Reset means it is safe to Wait() for another pipelined
// request on the same BufferedConnection; Closing means the connection
// must be torn down instead.
type Outcome int

const (
	OutcomeReset Outcome = iota
	OutcomeClosing
)

// ResponseEmitter drives the write half of an Exchange: status line,
// header synthesis, and body framing, mirroring the teacher's
// ResponseWriter but replacing its buffered-bytes-in-a-slice design
// with direct writes through BufferedConnection, and replacing fixed
// Write/WriteChunked methods with the single write() the framing mode
// dispatches internally, per §4.5.
type ResponseEmitter struct {
	conn *BufferedConnection

	// Headers holds caller-supplied response headers, set before send();
	// after send() runs, they have already been written and further
	// mutation has no effect until reset().
	Headers Header

	state emitterState
	isHead  bool
	version string // request's version, for Connection default behavior

	mode          responseBodyMode
	contentLength uint64
	written       uint64

	// closing latches a decision (explicit Connection: close, an
	// HTTP/1.0 peer without keep-alive, a body-framing mismatch) that
	// the connection must not be reused after this exchange.
	closing bool
}

// NewResponseEmitter binds a ResponseEmitter to conn.
func NewResponseEmitter(conn *BufferedConnection) *ResponseEmitter {
	return &ResponseEmitter{conn: conn, Headers: newHeader()}
}

// rebind repoints an emitter at a new connection, for pooled reuse.
func (e *ResponseEmitter) rebind(conn *BufferedConnection) {
	e.conn = conn
	e.fullReset()
}

// wait transitions First -> Waited once Exchange has a parsed Request
// to answer, recording the facts send() needs: whether the method is
// HEAD (suppresses body regardless of declared length) and whether the
// request itself asked to close the connection.
func (e *ResponseEmitter) wait(req *Request) error {
	if e.state != emitFirst {
		return newErr(NotWriteable, "wait called out of order")
	}
	e.isHead = req.MethodID == MethodHEAD
	e.version = req.Version()
	if req.Close {
		e.closing = true
	}
	e.state = emitWaited
	return nil
}

// send writes the status line and headers, synthesizing Connection,
// Transfer-Encoding, and Content-Length unless the caller already set
// them on e.Headers, per §4.5.
func (e *ResponseEmitter) send(status int, reason string) error {
	if e.state != emitWaited {
		return newErr(NotWriteable, "send called out of order")
	}

	if status == 100 {
		// An interim response to an "Expect: 100-continue" request:
		// the status line goes out now, but the real response (and its
		// header synthesis) is still pending, so the emitter stays in
		// Waited per §4.5.
		if err := e.conn.writeAll(statusLine(100, reason)); err != nil {
			return err
		}
		return e.conn.writeAll(crlf)
	}

	noBody := e.isHead || status == 204 || status == 304 || (status >= 100 && status < 200)
	hasTE := hasToken(e.Headers.Get(hdrTransferEncoding), valChunked)
	if !hasTE && e.Headers.Has(hdrTransferEncoding) {
		return newErr(UnsupportedTransferEncoding, "only chunked Transfer-Encoding is supported")
	}
	hasCL := e.Headers.Has(hdrContentLength)

	switch {
	case hasTE:
		e.mode = respChunked
	case hasCL:
		n, ok := parseUint(e.Headers.Get(hdrContentLength))
		if !ok {
			return newErr(NotWriteable, "invalid Content-Length header")
		}
		e.mode = respContentLength
		e.contentLength = n
	case noBody:
		e.mode = respNone
	case e.version == "HTTP/1.1":
		e.mode = respChunked
	default:
		// HTTP/1.0 with no declared length: the only way to signal body
		// end is closing the connection.
		e.mode = respNone
		e.closing = true
	}

	if !e.Headers.Has(hdrConnection) {
		if e.closing {
			e.Headers.Set(hdrConnection, valClose)
		} else if e.version != "HTTP/1.1" {
			e.Headers.Set(hdrConnection, valKeepAlive)
		}
	} else if hasToken(e.Headers.Get(hdrConnection), valClose) {
		e.closing = true
	}
	if e.mode == respChunked && !hasTE {
		e.Headers.Set(hdrTransferEncoding, valChunked)
	}
	if e.mode == respContentLength && !hasCL {
		e.Headers.Set(hdrContentLength, []byte(strconv.FormatUint(e.contentLength, 10)))
	}

	line := statusLine(status, reason)
	if err := e.conn.writeAll(line); err != nil {
		return err
	}
	var writeErr error
	e.Headers.VisitAll(func(name, value []byte) {
		if writeErr != nil {
			return
		}
		writeErr = e.conn.writeAll(name)
		if writeErr == nil {
			writeErr = e.conn.writeAll(colonSP)
		}
		if writeErr == nil {
			writeErr = e.conn.writeAll(value)
		}
		if writeErr == nil {
			writeErr = e.conn.writeAll(crlf)
		}
	})
	if writeErr != nil {
		return writeErr
	}
	if err := e.conn.writeAll(crlf); err != nil {
		return err
	}

	if e.isHead {
		// No body is ever written for HEAD, regardless of the framing
		// mode declared in the headers above.
		e.mode = respNone
	}
	e.state = emitResponded
	return nil
}

// write streams p as body data, framing it per the mode send() fixed.
func (e *ResponseEmitter) write(p []byte) (int, error) {
	if e.state != emitResponded {
		return 0, newErr(NotWriteable, "write called out of order")
	}
	switch e.mode {
	case respNone:
		return 0, newErr(NotWriteable, "response has no body")

	case respContentLength:
		if e.written+uint64(len(p)) > e.contentLength {
			return 0, newErr(MessageTooLong, "write exceeds declared Content-Length")
		}
		if err := e.conn.writeAll(p); err != nil {
			return 0, err
		}
		e.written += uint64(len(p))
		return len(p), nil

	case respChunked:
		if len(p) == 0 {
			return 0, nil
		}
		header := []byte(strconv.FormatInt(int64(len(p)), 16))
		if err := e.conn.writeAll(header); err != nil {
			return 0, err
		}
		if err := e.conn.writeAll(crlf); err != nil {
			return 0, err
		}
		if err := e.conn.writeAll(p); err != nil {
			return 0, err
		}
		if err := e.conn.writeAll(crlf); err != nil {
			return 0, err
		}
		e.written += uint64(len(p))
		return len(p), nil
	}
	return 0, newErr(NotWriteable, "unreachable response mode")
}

// finish closes out body framing: a terminating 0-chunk for chunked
// responses, or a Content-Length accounting check for fixed-length
// ones.
func (e *ResponseEmitter) finish() error {
	if e.state != emitResponded {
		return newErr(NotWriteable, "finish called out of order")
	}
	switch e.mode {
	case respContentLength:
		if e.written != e.contentLength {
			e.closing = true
			return newErr(MessageNotCompleted, "Content-Length body under-written")
		}
	case respChunked:
		if err := e.conn.writeAll([]byte("0\r\n\r\n")); err != nil {
			return err
		}
	}
	e.state = emitFinished
	return nil
}

// reset decides whether the connection may be reused for another
// pipelined exchange, per §4.5's reset() -> {Reset, Closing}. If the
// emitter is still in its First state (wait() was never even called),
// this is the trivial First -> Start reset the spec calls out
// separately: nothing was read or written, so the connection is always
// reusable.
func (e *ResponseEmitter) reset(bodyComplete bool) Outcome {
	if e.state == emitFirst {
		return OutcomeReset
	}
	forceClose := e.closing || !bodyComplete || e.state != emitFinished
	e.fullReset()
	if forceClose {
		return OutcomeClosing
	}
	return OutcomeReset
}

func (e *ResponseEmitter) fullReset() {
	e.Headers.Reset()
	e.state = emitFirst
	e.isHead = false
	e.version = ""
	e.mode = respNone
	e.contentLength = 0
	e.written = 0
	e.closing = false
}
