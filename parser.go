package exchange

import "bytes"

// parseRequestLine parses "METHOD SP TARGET SP VERSION" from the first
// line of head (without its trailing CRLF), per the strict grammar:
// method non-empty and ≤ MaxMethodLength bytes of any token, target is
// the substring between the first and last space (so it may itself
// contain spaces), version is exactly "HTTP/1.0" or "HTTP/1.1".
func parseRequestLine(req *Request, line []byte) error {
	if len(line)+2 < MinRequestLineLength {
		return newErr(HttpHeadersInvalid, "request line too short")
	}

	sp := bytes.IndexByte(line, ' ')
	if sp < 0 {
		return newErr(HttpHeadersInvalid, "missing method separator")
	}
	method := line[:sp]
	if !isValidMethod(method) {
		return newErr(UnknownHttpMethod, "invalid method token")
	}

	rest := line[sp+1:]
	lastSP := bytes.LastIndexByte(rest, ' ')
	if lastSP < 0 {
		return newErr(HttpHeadersInvalid, "missing version separator")
	}
	target := rest[:lastSP]
	version := rest[lastSP+1:]
	if len(target) == 0 {
		return newErr(HttpHeadersInvalid, "empty request target")
	}
	if !bytes.Equal(version, http10) && !bytes.Equal(version, http11Lit) {
		return newErr(HttpHeadersInvalid, "unsupported HTTP version")
	}

	req.methodBytes = method
	req.MethodID = classifyMethod(method)
	req.targetBytes = target
	req.versionBytes = version
	if bytes.Equal(version, http11Lit) {
		req.ProtoMajor, req.ProtoMinor = 1, 1
	} else {
		req.ProtoMajor, req.ProtoMinor = 1, 0
	}
	return nil
}

// parseHeaderLines splits buf (the head bytes after the request line,
// or the entirety of a trailer section) on CRLF and adds each
// "name: value" line to h, per the first-colon-only split (Open
// Question 1, resolved literally): everything after the first colon,
// with at most one leading space and any trailing spaces or tabs
// stripped, is the value — so a value containing further colons
// round-trips correctly.
//
// cb, if non-nil, is invoked for every parsed field so the caller can
// track special headers (Content-Length, Transfer-Encoding, ...)
// without a second pass.
func parseHeaderLines(buf []byte, h *Header, cb func(name, value []byte) error) error {
	pos := 0
	for pos < len(buf) {
		lineEnd := bytes.Index(buf[pos:], crlf)
		if lineEnd < 0 {
			return newErr(HttpHeadersInvalid, "unterminated header line")
		}
		lineEnd += pos
		if lineEnd == pos {
			// blank line: end of this head section
			return nil
		}
		line := buf[pos:lineEnd]
		pos = lineEnd + 2

		if line[0] == ' ' || line[0] == '\t' {
			return newErr(HttpHeaderContinuationsUnsupported, "obsolete line folding")
		}

		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			return newErr(HttpHeadersInvalid, "header line missing colon")
		}
		name := line[:colon]
		if bytes.IndexByte(name, ' ') >= 0 || bytes.IndexByte(name, '\t') >= 0 {
			return newErr(HttpHeadersInvalid, "whitespace in header name")
		}
		value := line[colon+1:]
		if len(value) > 0 && value[0] == ' ' {
			value = value[1:]
		}
		value = trimTrailingOWS(value)

		if err := h.Add(name, value); err != nil {
			return err
		}
		if cb != nil {
			if err := cb(name, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func trimTrailingOWS(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}

// codingState tracks the right-to-left Transfer-Encoding
// parse across (possibly repeated) Transfer-Encoding header
// occurrences in the same head.
type codingState struct {
	hasFraming     bool
	hasCompression bool
}

// parseHead parses the full request head (request line plus headers)
// produced by HeadAccumulator into req. Body framing (next_chunk_length
// equivalent, carried on req.parser) is fixed at the end, per §4.3.
func parseHead(req *Request, head []byte) error {
	lineEnd := bytes.Index(head, crlf)
	if lineEnd < 0 {
		return newErr(HttpHeadersInvalid, "missing request line terminator")
	}
	if err := parseRequestLine(req, head[:lineEnd]); err != nil {
		return err
	}

	var cs codingState
	var hasContentLength bool

	err := parseHeaderLines(head[lineEnd+2:], &req.Headers, func(name, value []byte) error {
		switch {
		case equalFold(name, hdrContentLength):
			n, ok := parseUint(value)
			if !ok {
				return newErr(InvalidContentLength, "non-numeric Content-Length")
			}
			if hasContentLength {
				return newErr(HttpHeadersInvalid, "duplicate Content-Length headers")
			}
			hasContentLength = true
			req.HasContentLength = true
			req.ContentLength = n

		case equalFold(name, hdrTransferEncoding):
			return applyTransferEncoding(req, value, &cs)

		case equalFold(name, hdrContentEncoding):
			return applyContentEncoding(req, value, &cs)

		case equalFold(name, hdrConnection):
			if hasToken(value, valClose) {
				req.Close = true
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if req.ProtoMajor == 1 && req.ProtoMinor == 0 && !req.Close {
		if !hasToken(req.Headers.Get(hdrConnection), valKeepAlive) {
			req.Close = true
		}
	}

	switch {
	case req.TransferEncodingMode == TransferChunked:
		req.parser = bodyParserState{mode: bodyChunked, chunkState: chunkHeadSize}
	case req.HasContentLength && req.ContentLength > 0:
		req.parser = bodyParserState{mode: bodyIdentity, remaining: req.ContentLength}
	default:
		req.parser = bodyParserState{mode: bodyNone, complete: true}
	}

	return nil
}

// applyTransferEncoding implements the right-to-left, at-most-two-token
// Transfer-Encoding grammar of §4.3.
func applyTransferEncoding(req *Request, value []byte, cs *codingState) error {
	tokens := splitCSVTrim(value)
	if len(tokens) == 0 || len(tokens) > 2 {
		return newErr(HttpTransferEncodingUnsupported, "too many transfer codings")
	}

	last := tokens[len(tokens)-1]
	if equalFold(last, valChunked) {
		if cs.hasFraming {
			return newErr(HttpHeadersInvalid, "repeated chunked coding")
		}
		cs.hasFraming = true
		req.TransferEncodingMode = TransferChunked

		if len(tokens) == 2 {
			first := tokens[0]
			if equalFold(first, valChunked) {
				return newErr(HttpHeadersInvalid, "repeated chunked coding")
			}
			comp, ok := parseCompressionToken(first)
			if !ok {
				return newErr(HttpTransferEncodingUnsupported, "unknown transfer coding")
			}
			if comp == CompressionCompress || comp == CompressionXCompress {
				return newErr(CompressionNotSupported, "compress coding not supported")
			}
			if cs.hasCompression || req.TransferCompression != CompressionIdentity {
				return newErr(HttpHeadersInvalid, "repeated compression coding")
			}
			cs.hasCompression = true
			req.TransferCompression = comp
		}
		return nil
	}

	if len(tokens) == 2 {
		// Non-chunked last token with two tokens present: the framing
		// coding (if any) must be outermost/last, so this is malformed.
		return newErr(HttpTransferEncodingUnsupported, "chunked must be outermost coding")
	}

	comp, ok := parseCompressionToken(last)
	if !ok {
		return newErr(HttpTransferEncodingUnsupported, "unknown transfer coding")
	}
	if comp == CompressionCompress || comp == CompressionXCompress {
		return newErr(CompressionNotSupported, "compress coding not supported")
	}
	if cs.hasCompression || req.TransferCompression != CompressionIdentity {
		return newErr(HttpHeadersInvalid, "repeated compression coding")
	}
	cs.hasCompression = true
	req.TransferCompression = comp
	return nil
}

// applyContentEncoding implements the single-token Content-Encoding
// grammar, which shares the compression slot with Transfer-Encoding and
// conflicts if already set.
func applyContentEncoding(req *Request, value []byte, cs *codingState) error {
	tokens := splitCSVTrim(value)
	if len(tokens) != 1 {
		return newErr(HttpTransferEncodingUnsupported, "multiple content codings")
	}
	comp, ok := parseCompressionToken(tokens[0])
	if !ok {
		return newErr(HttpTransferEncodingUnsupported, "unknown content coding")
	}
	if comp == CompressionCompress || comp == CompressionXCompress {
		return newErr(CompressionNotSupported, "compress coding not supported")
	}
	if cs.hasCompression || req.TransferCompression != CompressionIdentity {
		return newErr(HttpHeadersInvalid, "compression set by both Transfer-Encoding and Content-Encoding")
	}
	cs.hasCompression = true
	req.TransferCompression = comp
	return nil
}

func parseCompressionToken(tok []byte) (Compression, bool) {
	switch {
	case equalFold(tok, valIdentity):
		return CompressionIdentity, true
	case equalFold(tok, valGzip):
		return CompressionGzip, true
	case equalFold(tok, valXGzip):
		return CompressionXGzip, true
	case equalFold(tok, valDeflate):
		return CompressionDeflate, true
	case equalFold(tok, valZstd):
		return CompressionZstd, true
	case equalFold(tok, valCompress):
		return CompressionCompress, true
	case equalFold(tok, valXCompress):
		return CompressionXCompress, true
	default:
		return CompressionIdentity, false
	}
}

func splitCSVTrim(value []byte) [][]byte {
	var out [][]byte
	for _, part := range bytes.Split(value, []byte(",")) {
		part = bytes.TrimSpace(part)
		if len(part) > 0 {
			out = append(out, part)
		}
	}
	return out
}

func hasToken(value, token []byte) bool {
	if value == nil {
		return false
	}
	return equalFold(bytes.TrimSpace(value), token)
}

func parseUint(b []byte) (uint64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var n uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		d := uint64(c - '0')
		if n > (^uint64(0)-d)/10 {
			return 0, false // overflow
		}
		n = n*10 + d
	}
	return n, true
}

// parseTrailers parses a trailer section (header lines only, no
// request line) into req.Trailers and appends each field to req.Headers
// as well, reusing the same header-line grammar the main head uses —
// per the design note, parsing the trailer portion is the only novel
// work since the main head has already validated.
func parseTrailers(req *Request, buf []byte) error {
	return parseHeaderLines(buf, &req.Trailers, func(name, value []byte) error {
		return req.Headers.Add(name, value)
	})
}
