package exchange

import (
	"bytes"
	"testing"
)

func mustParseHead(t *testing.T, raw string) *Request {
	t.Helper()
	req := newRequest()
	if err := parseHead(req, []byte(raw)); err != nil {
		t.Fatalf("parseHead failed: %v", err)
	}
	return req
}

func TestParseRequestLineBasic(t *testing.T) {
	req := mustParseHead(t, "GET /path HTTP/1.1\r\nHost: example.com\r\n\r\n")
	if req.Method() != "GET" {
		t.Fatalf("Method = %q", req.Method())
	}
	if req.Target() != "/path" {
		t.Fatalf("Target = %q", req.Target())
	}
	if req.Version() != "HTTP/1.1" {
		t.Fatalf("Version = %q", req.Version())
	}
}

func TestParseRequestTargetWithEmbeddedSpaces(t *testing.T) {
	// Target is the substring between the first and last space, so it
	// may itself contain spaces.
	req := mustParseHead(t, "GET /a b c HTTP/1.1\r\nHost: x\r\n\r\n")
	if req.Target() != "/a b c" {
		t.Fatalf("Target = %q", req.Target())
	}
}

func TestParseHeaderFirstColonOnlySplit(t *testing.T) {
	req := mustParseHead(t, "GET / HTTP/1.1\r\nHost: x\r\nX-Time: 10:20:30\r\n\r\n")
	if got := req.GetHeader("X-Time"); string(got) != "10:20:30" {
		t.Fatalf("X-Time = %q, want full value preserved past first colon", got)
	}
}

func TestParseRejectsFoldedHeaderLine(t *testing.T) {
	req := newRequest()
	raw := "GET / HTTP/1.1\r\nHost: x\r\nX-Folded: a\r\n b\r\n\r\n"
	err := parseHead(req, []byte(raw))
	if err == nil {
		t.Fatal("expected folded header line to be rejected")
	}
	if e, ok := err.(*Error); !ok || e.Kind != HttpHeaderContinuationsUnsupported {
		t.Fatalf("expected HttpHeaderContinuationsUnsupported, got %v", err)
	}
}

func TestParseDuplicateConflictingContentLength(t *testing.T) {
	req := newRequest()
	raw := "POST / HTTP/1.1\r\nHost: x\r\nContent-Length: 4\r\nContent-Length: 5\r\n\r\n"
	err := parseHead(req, []byte(raw))
	if err == nil {
		t.Fatal("expected conflicting Content-Length headers to be rejected")
	}
}

func TestParseInvalidContentLength(t *testing.T) {
	req := newRequest()
	raw := "POST / HTTP/1.1\r\nHost: x\r\nContent-Length: abc\r\n\r\n"
	err := parseHead(req, []byte(raw))
	if e, ok := err.(*Error); !ok || e.Kind != InvalidContentLength {
		t.Fatalf("expected InvalidContentLength, got %v", err)
	}
}

func TestParseHostHeaderNotRequired(t *testing.T) {
	// Host is not part of this parser's grammar (spec §8 scenario 1 sends
	// a chunked POST with no Host header at all and must parse cleanly).
	req := mustParseHead(t, "GET / HTTP/1.1\r\n\r\n")
	if req.Method() != "GET" {
		t.Fatalf("Method = %q", req.Method())
	}
}

func TestParseChunkedTransferEncoding(t *testing.T) {
	req := mustParseHead(t, "POST / HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: chunked\r\n\r\n")
	if req.TransferEncodingMode != TransferChunked {
		t.Fatalf("expected chunked framing, got %v", req.TransferEncodingMode)
	}
	if req.parser.mode != bodyChunked {
		t.Fatalf("expected bodyChunked parser mode, got %v", req.parser.mode)
	}
}

func TestParseGzipThenChunkedTransferEncoding(t *testing.T) {
	req := mustParseHead(t, "POST / HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: gzip, chunked\r\n\r\n")
	if req.TransferEncodingMode != TransferChunked {
		t.Fatalf("expected chunked framing")
	}
	if req.TransferCompression != CompressionGzip {
		t.Fatalf("expected gzip compression, got %v", req.TransferCompression)
	}
}

func TestParseChunkedThenGzipRejected(t *testing.T) {
	// chunked must be the outermost/last coding.
	req := newRequest()
	raw := "POST / HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: chunked, gzip\r\n\r\n"
	if err := parseHead(req, []byte(raw)); err == nil {
		t.Fatal("expected chunked-before-gzip ordering to be rejected")
	}
}

func TestParseDoubleCompressionRejected(t *testing.T) {
	// Transfer-Encoding: gzip, chunked plus Content-Encoding: gzip sets
	// the compression slot twice.
	req := newRequest()
	raw := "POST / HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: gzip, chunked\r\nContent-Encoding: gzip\r\n\r\n"
	err := parseHead(req, []byte(raw))
	if err == nil {
		t.Fatal("expected double compression coding to be rejected")
	}
}

func TestParseCompressCodingUnsupported(t *testing.T) {
	req := newRequest()
	raw := "POST / HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: compress\r\n\r\n"
	err := parseHead(req, []byte(raw))
	if err == nil {
		t.Fatal("expected compress coding to be rejected")
	}
}

func TestParseHeadersInvalidShortRequestLine(t *testing.T) {
	req := newRequest()
	if err := parseHead(req, []byte("GE /\r\n\r\n")); err == nil {
		t.Fatal("expected too-short request line to be rejected")
	}
}

func TestParseContentLengthFraming(t *testing.T) {
	req := mustParseHead(t, "POST / HTTP/1.1\r\nHost: x\r\nContent-Length: 4\r\n\r\n")
	if req.parser.mode != bodyIdentity || req.parser.remaining != 4 {
		t.Fatalf("unexpected parser state: %+v", req.parser)
	}
}

func TestParseNoBodyFraming(t *testing.T) {
	req := mustParseHead(t, "GET / HTTP/1.1\r\nHost: x\r\n\r\n")
	if req.parser.mode != bodyNone || !req.parser.complete {
		t.Fatalf("unexpected parser state: %+v", req.parser)
	}
}

func TestHasTokenHelper(t *testing.T) {
	if !hasToken([]byte(" close "), valClose) {
		t.Fatal("expected trimmed token match")
	}
	if hasToken(nil, valClose) {
		t.Fatal("expected nil value to not match")
	}
}

func TestSplitCSVTrim(t *testing.T) {
	got := splitCSVTrim([]byte(" gzip ,  chunked "))
	if len(got) != 2 || !bytes.Equal(got[0], []byte("gzip")) || !bytes.Equal(got[1], []byte("chunked")) {
		t.Fatalf("unexpected split result: %q", got)
	}
}
