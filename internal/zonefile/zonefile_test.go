package zonefile

import (
	"net"
	"testing"

	"github.com/hearthdns/hearth/internal/protocol"
	"github.com/hearthdns/hearth/internal/wire"
	"github.com/hearthdns/hearth/internal/zone"
)

func TestParseBasicARecord(t *testing.T) {
	result := Parse("www.example.lan. 300 IN A 10.0.0.5\n", wire.MustName("example.lan"))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	rrs, res := result.Zone.Lookup(wire.MustName("www.example.lan"), protocol.TypeA)
	if res != zone.ResultHit || len(rrs) != 1 {
		t.Fatalf("rrs = %+v res = %v, want one hit", rrs, res)
	}
	got := rrs[0].Record.(wire.ARecord).Addr
	if !got.Equal(net.IPv4(10, 0, 0, 5)) {
		t.Fatalf("address = %v, want 10.0.0.5", got)
	}
}

func TestParseOwnerInheritance(t *testing.T) {
	text := "www.example.lan. 300 IN A 10.0.0.5\n" +
		"          IN A 10.0.0.6\n"
	result := Parse(text, wire.MustName("example.lan"))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	rrs, res := result.Zone.Lookup(wire.MustName("www.example.lan"), protocol.TypeA)
	if res != zone.ResultHit {
		t.Fatalf("lookup result = %v, want hit", res)
	}
	if len(rrs) != 2 {
		t.Fatalf("rrs = %d, want 2 (one owner-inherited)", len(rrs))
	}
}

func TestParseTTLInheritance(t *testing.T) {
	text := "a.example.lan. 600 IN A 10.0.0.1\n" +
		"b.example.lan. IN A 10.0.0.2\n"
	result := Parse(text, wire.MustName("example.lan"))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	rrs, _ := result.Zone.Lookup(wire.MustName("b.example.lan"), protocol.TypeA)
	if len(rrs) != 1 || rrs[0].TTL != 600 {
		t.Fatalf("rrs = %+v, want inherited TTL 600", rrs)
	}
}

func TestParseOriginDirective(t *testing.T) {
	text := "$ORIGIN sub.example.lan.\n" +
		"www 300 IN A 10.0.0.9\n"
	result := Parse(text, wire.MustName("example.lan"))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	rrs, res := result.Zone.Lookup(wire.MustName("www.sub.example.lan"), protocol.TypeA)
	if res != zone.ResultHit || len(rrs) != 1 {
		t.Fatalf("rrs = %+v res = %v, want one A record under the new origin", rrs, res)
	}
}

func TestParseAtSignIsOrigin(t *testing.T) {
	text := "@ 3600 IN SOA ns1.example.lan. hostmaster.example.lan. 1 3600 600 604800 300\n"
	result := Parse(text, wire.MustName("example.lan"))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if !result.Zone.Authoritative() {
		t.Fatal("expected @ to resolve to the zone apex and install an SOA")
	}
}

func TestParseParenthesizedGroupSpansLines(t *testing.T) {
	text := "@ 3600 IN SOA ns1.example.lan. hostmaster.example.lan. (\n" +
		"    1       ; serial\n" +
		"    3600    ; refresh\n" +
		"    600     ; retry\n" +
		"    604800  ; expire\n" +
		"    300 )   ; minimum\n"
	result := Parse(text, wire.MustName("example.lan"))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	rr, ok := result.Zone.SOA()
	if !ok {
		t.Fatal("expected an SOA to have been parsed from the parenthesized group")
	}
	soa := rr.Record.(wire.SOARecord)
	if soa.Serial != 1 || soa.Minimum != 300 {
		t.Fatalf("soa = %+v, want serial 1 minimum 300", soa)
	}
}

func TestParseTXTRecordWithQuotedEscapes(t *testing.T) {
	text := `info.example.lan. 300 IN TXT "hello \"world\""` + "\n"
	result := Parse(text, wire.MustName("example.lan"))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	rrs, _ := result.Zone.Lookup(wire.MustName("info.example.lan"), protocol.TypeTXT)
	if len(rrs) != 1 {
		t.Fatalf("rrs = %+v, want one TXT record", rrs)
	}
	txt := rrs[0].Record.(wire.OpaqueRecord).Bytes
	if len(txt) == 0 || int(txt[0]) != len(txt)-1 {
		t.Fatalf("TXT length-prefix byte mismatch: %v", txt)
	}
}

func TestParseRejectsIncludeDirective(t *testing.T) {
	result := Parse("$INCLUDE other.zone\n", wire.MustName("example.lan"))
	if result.Failed == 0 {
		t.Fatal("expected $INCLUDE to be rejected")
	}
}

func TestParseRejectsTTLDirective(t *testing.T) {
	result := Parse("$TTL 3600\n", wire.MustName("example.lan"))
	if result.Failed == 0 {
		t.Fatal("expected $TTL to be rejected")
	}
}

func TestParseSkipsMalformedLineButContinues(t *testing.T) {
	text := "bad.example.lan. 300 IN A not-an-ip\n" +
		"good.example.lan. 300 IN A 10.0.0.1\n"
	result := Parse(text, wire.MustName("example.lan"))
	if result.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", result.Failed)
	}
	rrs, res := result.Zone.Lookup(wire.MustName("good.example.lan"), protocol.TypeA)
	if res != zone.ResultHit || len(rrs) != 1 {
		t.Fatalf("good record should still have loaded: rrs=%+v res=%v", rrs, res)
	}
}

func TestParseAAAARecord(t *testing.T) {
	result := Parse("host.example.lan. 300 IN AAAA fe80::1\n", wire.MustName("example.lan"))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	rrs, _ := result.Zone.Lookup(wire.MustName("host.example.lan"), protocol.TypeAAAA)
	if len(rrs) != 1 {
		t.Fatalf("rrs = %+v, want one AAAA record", rrs)
	}
	got := rrs[0].Record.(wire.AAAARecord).Addr
	if !got.Equal(net.ParseIP("fe80::1")) {
		t.Fatalf("address = %v, want fe80::1", got)
	}
}

func TestParseMXRecord(t *testing.T) {
	result := Parse("example.lan. 300 IN MX 10 mail.example.lan.\n", wire.MustName("example.lan"))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	rrs, _ := result.Zone.Lookup(wire.MustName("example.lan"), protocol.TypeMX)
	if len(rrs) != 1 {
		t.Fatalf("rrs = %+v, want one MX record", rrs)
	}
	mx := rrs[0].Record.(wire.MXRecord)
	if mx.Preference != 10 || !mx.Exchange.Equal(wire.MustName("mail.example.lan")) {
		t.Fatalf("mx = %+v", mx)
	}
}

func TestParseCNAMERelativeTarget(t *testing.T) {
	result := Parse("alias.example.lan. 300 IN CNAME www\n", wire.MustName("example.lan"))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	rrs, res := result.Zone.Lookup(wire.MustName("alias.example.lan"), protocol.TypeA)
	if res != zone.ResultCNAME {
		t.Fatalf("lookup result = %v, want ResultCNAME", res)
	}
	target := rrs[0].Record.(wire.NameRecord).Target
	if !target.Equal(wire.MustName("www.example.lan")) {
		t.Fatalf("CNAME target = %v, want www.example.lan. (relative names resolve against the current origin)", target)
	}
}

func TestParseDistinctAddressesCoexist(t *testing.T) {
	text := "www.example.lan. 300 IN A 10.0.0.1\n" +
		"www.example.lan. 300 IN A 10.0.0.2\n"
	result := Parse(text, wire.MustName("example.lan"))
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	rrs, _ := result.Zone.Lookup(wire.MustName("www.example.lan"), protocol.TypeA)
	if len(rrs) != 2 {
		t.Fatalf("rrs = %d, want 2 distinct A records", len(rrs))
	}
}
