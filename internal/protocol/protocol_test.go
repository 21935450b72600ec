package protocol

import "testing"

func TestTypeString(t *testing.T) {
	cases := map[Type]string{
		TypeA:     "A",
		TypeNS:    "NS",
		TypeCNAME: "CNAME",
		TypeSOA:   "SOA",
		TypeAAAA:  "AAAA",
		TypeSRV:   "SRV",
		TypeALL:   "ANY",
		Type(9999): "TYPE9999",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("Type(%d).String() = %q, want %q", typ, got, want)
		}
	}
}

func TestIsDomainNameOnly(t *testing.T) {
	for _, typ := range []Type{TypeNS, TypeCNAME, TypePTR, TypeMB, TypeMD, TypeMF, TypeMG, TypeMR} {
		if !typ.IsDomainNameOnly() {
			t.Errorf("%v should be domain-name-only", typ)
		}
	}
	for _, typ := range []Type{TypeA, TypeAAAA, TypeMX, TypeSOA, TypeSRV, TypeTXT} {
		if typ.IsDomainNameOnly() {
			t.Errorf("%v should not be domain-name-only", typ)
		}
	}
}

func TestIsOpaque(t *testing.T) {
	for _, typ := range []Type{TypeTXT, TypeHINFO, TypeNULL, TypeWKS} {
		if !typ.IsOpaque() {
			t.Errorf("%v should be opaque", typ)
		}
	}
	if TypeA.IsOpaque() {
		t.Error("A should not be opaque")
	}
}

func TestHeaderFlagBitsDoNotOverlap(t *testing.T) {
	flags := []uint16{FlagQR, FlagAA, FlagTC, FlagRD, FlagRA}
	var seen uint16
	for _, f := range flags {
		if seen&f != 0 {
			t.Fatalf("flag %016b overlaps already-seen bits %016b", f, seen)
		}
		seen |= f
	}
}

func TestClassString(t *testing.T) {
	if ClassIN.String() != "IN" {
		t.Errorf("ClassIN.String() = %q, want IN", ClassIN.String())
	}
	if got := Class(999).String(); got != "CLASS999" {
		t.Errorf("Class(999).String() = %q, want CLASS999", got)
	}
}
