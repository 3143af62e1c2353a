package exchange

import "strconv"

// statusLine returns a pre-compiled "HTTP/1.1 NNN Reason\r\n" line for
// common codes, falling back to building one for anything else. Mirrors
// the teacher's getStatusLine/buildStatusLine split: the hot path for
// ordinary responses touches no allocator.
func statusLine(code int, reason string) []byte {
	if reason == "" {
		if pre, ok := precompiledStatusLines[code]; ok {
			return pre
		}
		reason = statusText(code)
	}
	return []byte("HTTP/1.1 " + strconv.Itoa(code) + " " + reason + "\r\n")
}

var precompiledStatusLines = map[int][]byte{
	100: []byte("HTTP/1.1 100 Continue\r\n"),
	101: []byte("HTTP/1.1 101 Switching Protocols\r\n"),
	200: []byte("HTTP/1.1 200 OK\r\n"),
	201: []byte("HTTP/1.1 201 Created\r\n"),
	202: []byte("HTTP/1.1 202 Accepted\r\n"),
	204: []byte("HTTP/1.1 204 No Content\r\n"),
	206: []byte("HTTP/1.1 206 Partial Content\r\n"),
	301: []byte("HTTP/1.1 301 Moved Permanently\r\n"),
	302: []byte("HTTP/1.1 302 Found\r\n"),
	304: []byte("HTTP/1.1 304 Not Modified\r\n"),
	400: []byte("HTTP/1.1 400 Bad Request\r\n"),
	401: []byte("HTTP/1.1 401 Unauthorized\r\n"),
	403: []byte("HTTP/1.1 403 Forbidden\r\n"),
	404: []byte("HTTP/1.1 404 Not Found\r\n"),
	405: []byte("HTTP/1.1 405 Method Not Allowed\r\n"),
	408: []byte("HTTP/1.1 408 Request Timeout\r\n"),
	411: []byte("HTTP/1.1 411 Length Required\r\n"),
	413: []byte("HTTP/1.1 413 Payload Too Large\r\n"),
	414: []byte("HTTP/1.1 414 URI Too Long\r\n"),
	417: []byte("HTTP/1.1 417 Expectation Failed\r\n"),
	431: []byte("HTTP/1.1 431 Request Header Fields Too Large\r\n"),
	500: []byte("HTTP/1.1 500 Internal Server Error\r\n"),
	501: []byte("HTTP/1.1 501 Not Implemented\r\n"),
	502: []byte("HTTP/1.1 502 Bad Gateway\r\n"),
	503: []byte("HTTP/1.1 503 Service Unavailable\r\n"),
	504: []byte("HTTP/1.1 504 Gateway Timeout\r\n"),
}

func statusText(code int) string {
	switch code {
	case 100:
		return "Continue"
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 202:
		return "Accepted"
	case 204:
		return "No Content"
	case 301:
		return "Moved Permanently"
	case 302:
		return "Found"
	case 304:
		return "Not Modified"
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 411:
		return "Length Required"
	case 413:
		return "Payload Too Large"
	case 414:
		return "URI Too Long"
	case 417:
		return "Expectation Failed"
	case 431:
		return "Request Header Fields Too Large"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	case 502:
		return "Bad Gateway"
	case 503:
		return "Service Unavailable"
	case 504:
		return "Gateway Timeout"
	default:
		return "Unknown"
	}
}
