package wire

import "testing"

func TestNewNameRoot(t *testing.T) {
	for _, s := range []string{"", "."} {
		n, err := NewName(s)
		if err != nil {
			t.Fatalf("NewName(%q): %v", s, err)
		}
		if !n.IsRoot() {
			t.Fatalf("NewName(%q) = %v, want root", s, n)
		}
	}
}

func TestNewNameRejectsEmptyLabel(t *testing.T) {
	if _, err := NewName("foo..bar"); err == nil {
		t.Fatal("expected error for consecutive dots")
	}
}

func TestNewNameRejectsOverlongLabel(t *testing.T) {
	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := NewName(string(long) + ".com"); err == nil {
		t.Fatal("expected error for label over 63 bytes")
	}
}

func TestNameEqualCaseInsensitive(t *testing.T) {
	a := MustName("Example.COM")
	b := MustName("example.com")
	if !a.Equal(b) {
		t.Fatalf("%v and %v should be equal ignoring case", a, b)
	}
}

func TestNameEqualDistinctBytesOutsideASCII(t *testing.T) {
	a := Name{Labels: [][]byte{{0xC3, 0xA9}}} // "é" in UTF-8, not ASCII letters
	b := Name{Labels: [][]byte{{0xC3, 0x89}}} // different byte, not an ASCII-range fold
	if a.Equal(b) {
		t.Fatal("non-ASCII bytes should compare literally, not fold")
	}
}

func TestNameKeyIsLowercase(t *testing.T) {
	n := MustName("Router.LAN")
	if got, want := n.Key(), "router.lan."; got != want {
		t.Fatalf("Key() = %q, want %q", got, want)
	}
}

func TestIsSubdomainOf(t *testing.T) {
	child := MustName("a.b.example.com")
	parent := MustName("example.com")
	if !child.IsSubdomainOf(parent) {
		t.Fatalf("%v should be a subdomain of %v", child, parent)
	}
	if parent.IsSubdomainOf(child) {
		t.Fatalf("%v should not be a subdomain of %v", parent, child)
	}
	if !child.IsSubdomainOf(child) {
		t.Fatal("a name is a subdomain of itself")
	}
	if !Root.IsSubdomainOf(Root) {
		t.Fatal("root is a subdomain of root")
	}
	if !child.IsSubdomainOf(Root) {
		t.Fatal("every name is a subdomain of root")
	}
}

func TestParent(t *testing.T) {
	n := MustName("a.b.example.com")
	p, ok := n.Parent()
	if !ok || p.String() != "b.example.com." {
		t.Fatalf("Parent() = %v, %v, want b.example.com.", p, ok)
	}
	if _, ok := Root.Parent(); ok {
		t.Fatal("root has no parent")
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"router.lan.", "example.com.", "."} {
		n, err := NewName(s)
		if err != nil {
			t.Fatalf("NewName(%q): %v", s, err)
		}
		if got := n.String(); got != s {
			t.Fatalf("String() = %q, want %q", got, s)
		}
	}
}

func TestParseNameCompressionPointer(t *testing.T) {
	// "example.com." written literally at offset 0, followed by a bare
	// compression pointer back at it.
	enc := NewEncoder(64)
	if err := enc.writeName(MustName("example.com"), true); err != nil {
		t.Fatalf("writeName: %v", err)
	}
	baseLen := len(enc.Bytes())

	msg := enc.Bytes()
	// Append a pointer back to offset 0.
	msg = append(msg, 0xC0, 0x00)

	name, next, err := ParseName(msg, baseLen)
	if err != nil {
		t.Fatalf("ParseName: %v", err)
	}
	if !name.Equal(MustName("example.com")) {
		t.Fatalf("ParseName via pointer = %v, want example.com.", name)
	}
	if next != baseLen+2 {
		t.Fatalf("next offset = %d, want %d (end of pointer, not jump target)", next, baseLen+2)
	}
}

func TestParseNameRejectsForwardPointer(t *testing.T) {
	// A pointer at offset 0 pointing to offset 2, i.e. forward, which
	// RFC 1035 §4.1.4 requires this decoder to reject.
	msg := []byte{0xC0, 0x02, 0x00}
	if _, _, err := ParseName(msg, 0); err == nil {
		t.Fatal("expected error for forward-pointing compression pointer")
	}
}

func TestParseNameRejectsTruncatedLabel(t *testing.T) {
	msg := []byte{5, 'a', 'b'} // claims a 5-byte label but only 2 bytes follow
	if _, _, err := ParseName(msg, 0); err == nil {
		t.Fatal("expected error for truncated label")
	}
}

func TestParseNameRejectsOverlongTotal(t *testing.T) {
	// Build a chain of maximum-length labels until the cumulative wire
	// length exceeds 255 bytes.
	var msg []byte
	label := make([]byte, 63)
	for i := range label {
		label[i] = 'a'
	}
	for i := 0; i < 5; i++ { // 5 * 64 = 320 > 255
		msg = append(msg, byte(len(label)))
		msg = append(msg, label...)
	}
	msg = append(msg, 0)
	if _, _, err := ParseName(msg, 0); err == nil {
		t.Fatal("expected error for name exceeding 255 wire bytes")
	}
}
