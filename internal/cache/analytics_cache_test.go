package cache

import (
	"strings"
	"testing"
)

func TestFilterFingerprint(t *testing.T) {
	identity := FilterFingerprint(nil)
	if got := FilterFingerprint(map[string]string{"q1": ""}); got != identity {
		t.Fatalf("inactive entry changed fingerprint: %x vs %x", got, identity)
	}

	a := FilterFingerprint(map[string]string{"q1": "Yes", "q2": "4"})
	b := FilterFingerprint(map[string]string{"q2": "4", "q1": "Yes", "q3": ""})
	if a != b {
		t.Fatalf("fingerprint depends on map order or inactive entries: %x vs %x", a, b)
	}
	if a == identity {
		t.Fatal("active filter hashed like identity")
	}
	if FilterFingerprint(map[string]string{"q1": "Yes"}) == FilterFingerprint(map[string]string{"q1": "No"}) {
		t.Fatal("different values share a fingerprint")
	}
	// key/value boundaries must not be ambiguous
	if FilterFingerprint(map[string]string{"a": "b=c"}) == FilterFingerprint(map[string]string{"a=b": "c"}) {
		t.Fatal("boundary collision")
	}
}

func TestSummaryKey(t *testing.T) {
	k := SummaryKey{FormID: "f1", SchemaVersion: 42, ResponseCount: 7}
	s := k.String()
	if !strings.HasPrefix(s, "form:f1:analytics:v42:n7:f") {
		t.Fatalf("unexpected key %q", s)
	}
	k2 := k
	k2.ResponseCount = 8
	if k2.String() == s {
		t.Fatal("new submission must change the key")
	}
}
