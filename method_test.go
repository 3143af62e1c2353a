package exchange

import "testing"

func TestIsValidMethod(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"GET", true},
		{"POST", true},
		{"PROPFIND", true}, // any token, not just the well-known set
		{"", false},
		{"GE T", false},
		{"G\x01ET", false},
		{"012345678901234567890123X", false}, // 25 bytes, over MaxMethodLength
	}
	for _, c := range cases {
		if got := isValidMethod([]byte(c.in)); got != c.want {
			t.Errorf("isValidMethod(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestClassifyMethodUnknownIsOther(t *testing.T) {
	if classifyMethod([]byte("PROPFIND")) != MethodOther {
		t.Fatal("expected unrecognised-but-valid token to classify as MethodOther")
	}
	if classifyMethod([]byte("GET")) != MethodGET {
		t.Fatal("expected GET to classify as MethodGET")
	}
}
