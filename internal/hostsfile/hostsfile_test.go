package hostsfile

import (
	"net"
	"strings"
	"testing"

	"github.com/hearthdns/hearth/internal/protocol"
	"github.com/hearthdns/hearth/internal/wire"
)

func TestParseSingleHostname(t *testing.T) {
	result := Parse(strings.NewReader("10.0.0.5 nas.lan\n"))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(result.Records))
	}
	rr := result.Records[0]
	if rr.Type != protocol.TypeA || !rr.Name.Equal(wire.MustName("nas.lan")) {
		t.Fatalf("rr = %+v", rr)
	}
	if !rr.Record.(wire.ARecord).Addr.Equal(net.IPv4(10, 0, 0, 5)) {
		t.Fatalf("address = %v, want 10.0.0.5", rr.Record.(wire.ARecord).Addr)
	}
	if len(rr.Data) == 0 {
		t.Fatal("RR.Data must be populated so cache/zone dedup compares real RDATA bytes")
	}
}

func TestParseMultipleHostnamesOneLine(t *testing.T) {
	result := Parse(strings.NewReader("10.0.0.5 nas.lan nas nas.local\n"))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(result.Records))
	}
}

func TestParseIPv6ProducesAAAA(t *testing.T) {
	result := Parse(strings.NewReader("fe80::1 router.lan\n"))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Records) != 1 || result.Records[0].Type != protocol.TypeAAAA {
		t.Fatalf("records = %+v, want one AAAA record", result.Records)
	}
}

func TestParseIgnoresCommentsAndBlankLines(t *testing.T) {
	text := "# this is a comment\n\n10.0.0.1 a.lan  # trailing comment\n   \n"
	result := Parse(strings.NewReader(text))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(result.Records))
	}
}

func TestParseRejectsLineWithNoHostname(t *testing.T) {
	result := Parse(strings.NewReader("10.0.0.1\n"))
	if result.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", result.Failed)
	}
}

func TestParseRejectsInvalidAddressButContinues(t *testing.T) {
	text := "not-an-ip broken.lan\n10.0.0.2 good.lan\n"
	result := Parse(strings.NewReader(text))
	if result.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", result.Failed)
	}
	if len(result.Records) != 1 || !result.Records[0].Name.Equal(wire.MustName("good.lan")) {
		t.Fatalf("records = %+v, want only good.lan to have loaded", result.Records)
	}
}

func TestParseRejectsInvalidHostnameButKeepsSiblings(t *testing.T) {
	result := Parse(strings.NewReader("10.0.0.1 good.lan ..bad..\n"))
	if result.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", result.Failed)
	}
	if len(result.Records) != 1 || !result.Records[0].Name.Equal(wire.MustName("good.lan")) {
		t.Fatalf("records = %+v, want only good.lan to have loaded", result.Records)
	}
}

func TestParseDistinctAddressesForSameHostDedupeByRDATA(t *testing.T) {
	result := Parse(strings.NewReader("10.0.0.1 dual.lan\n10.0.0.2 dual.lan\n"))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Records) != 2 {
		t.Fatalf("records = %d, want 2 distinct RRs for dual.lan", len(result.Records))
	}
	if string(result.Records[0].Data) == string(result.Records[1].Data) {
		t.Fatal("distinct addresses must produce distinct RDATA bytes")
	}
}
