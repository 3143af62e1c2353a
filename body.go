package exchange

import "io"

// BodyReader streams a request body off a BufferedConnection according
// to the framing req.parser fixed during head parsing, transparently
// decompressing it if TransferCompression names a coding. It is the
// read() half of an Exchange; ResponseEmitter (response.go) is the
// write half.
type BodyReader struct {
	conn *BufferedConnection
	req  *Request

	// trailerBuf is a buffer distinct from the client header buffer
	// that owns req's zero-copy byte slices: parsing trailers into the
	// same buffer the request line and headers still reference would
	// overwrite data the caller may read after streaming the body, so
	// trailers get their own small accumulator instead. A deliberate
	// refinement of "the accumulator is reused for trailers" beyond
	// the spec's literal reading.
	trailerBuf []byte
	trailerAcc *HeadAccumulator

	decomp *decompressor
}

// NewBodyReader binds a BodyReader to conn and req. trailerBuf must
// outlive every Read call made while req's body is being streamed.
func NewBodyReader(conn *BufferedConnection, req *Request, trailerBuf []byte) *BodyReader {
	return &BodyReader{conn: conn, req: req, trailerBuf: trailerBuf}
}

// rebind repoints an already-allocated BodyReader at a new connection
// and request, for pooled reuse.
func (br *BodyReader) rebind(conn *BufferedConnection, req *Request) {
	br.conn = conn
	br.req = req
	br.decomp = nil
}

// Read fills out with up to len(out) bytes of decoded body data,
// returning (0, nil) once the body is exhausted — callers loop on that
// rather than an io.EOF sentinel, matching §4.4's read(out) -> n
// contract.
func (br *BodyReader) Read(out []byte) (int, error) {
	if len(out) == 0 {
		return 0, nil
	}
	if br.req.TransferCompression == CompressionIdentity {
		return br.readRaw(out)
	}
	if br.decomp == nil {
		d, err := newDecompressor(br.req.TransferCompression, rawBodyReader{br})
		if err != nil {
			return 0, err
		}
		br.decomp = d
	}
	n, err := br.decomp.Read(out)
	if err != nil {
		return n, err
	}
	return n, nil
}

// Complete reports whether the body (and, for chunked bodies, its
// trailer section) has been fully consumed.
func (br *BodyReader) Complete() bool { return br.req.parser.complete }

// rawBodyReader adapts BodyReader.readRaw to io.Reader so decompress.go
// can layer a klauspost/compress decoder over the framed byte stream
// without it knowing about chunking or identity framing at all.
type rawBodyReader struct{ br *BodyReader }

func (r rawBodyReader) Read(p []byte) (int, error) {
	n, err := r.br.readRaw(p)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// readRaw advances req.parser and returns framed (not yet decompressed)
// body bytes: up to ContentLength for an identity body, or the next
// available slice of chunk data for a chunked one. Returns (0, nil)
// once framing reports completion.
func (br *BodyReader) readRaw(out []byte) (int, error) {
	switch br.req.parser.mode {
	case bodyNone:
		return 0, nil

	case bodyIdentity:
		if br.req.parser.remaining == 0 {
			br.req.parser.complete = true
			return 0, nil
		}
		want := uint64(len(out))
		if want > br.req.parser.remaining {
			want = br.req.parser.remaining
		}
		n, err := br.conn.readSome(out[:want])
		if err != nil {
			return n, err
		}
		br.req.parser.remaining -= uint64(n)
		if br.req.parser.remaining == 0 {
			br.req.parser.complete = true
		}
		return n, nil

	case bodyChunked:
		return br.readChunked(out)
	}
	return 0, nil
}

func (br *BodyReader) readChunked(out []byte) (int, error) {
	for {
		switch br.req.parser.chunkState {
		case chunkHeadSize:
			size, err := readChunkSizeLine(br.conn)
			if err != nil {
				return 0, err
			}
			if size == 0 {
				br.req.parser.chunkState = chunkTrailers
				continue
			}
			br.req.parser.remaining = size
			br.req.parser.chunkState = chunkData

		case chunkData:
			if br.req.parser.remaining == 0 {
				br.req.parser.chunkState = chunkDataSuffix
				continue
			}
			want := uint64(len(out))
			if want > br.req.parser.remaining {
				want = br.req.parser.remaining
			}
			n, err := br.conn.readSome(out[:want])
			if err != nil {
				return n, err
			}
			br.req.parser.remaining -= uint64(n)
			if n > 0 {
				return n, nil
			}

		case chunkDataSuffix:
			if err := expectCRLF(br.conn); err != nil {
				return 0, err
			}
			br.req.parser.chunkState = chunkHeadSize

		case chunkTrailers:
			if err := br.readTrailerSection(); err != nil {
				return 0, err
			}
			br.req.parser.complete = true
			return 0, nil
		}
	}
}

// readTrailerSection accumulates the trailer section into trailerBuf
// via a freshly reset HeadAccumulator and parses it into req.Trailers,
// reusing the same head-termination detector the request head used
// (per the design note) but bound to separate storage. The accumulator
// starts as if a CRLF had just been seen, since the zero-size chunk
// line's CRLF has already been consumed: a lone CRLF (no trailers)
// completes the section.
func (br *BodyReader) readTrailerSection() error {
	if br.trailerAcc == nil {
		br.trailerAcc = NewHeadAccumulator(br.trailerBuf)
	} else {
		br.trailerAcc.rebind(br.trailerBuf)
	}
	br.trailerAcc.state = crlfSeenCRLF

	for !br.trailerAcc.complete() {
		p := br.conn.peek()
		if len(p) == 0 {
			if err := br.conn.fill(); err != nil {
				return err
			}
			continue
		}
		consumed, err := br.trailerAcc.checkCompleteHead(p)
		br.conn.drop(consumed)
		if err != nil {
			return wrapErr(InvalidTrailers, err)
		}
	}

	if err := parseTrailers(br.req, br.trailerAcc.get()); err != nil {
		return wrapErr(InvalidTrailers, err)
	}
	return nil
}
