package transport

import "testing"

func TestGetBufferSize(t *testing.T) {
	buf := GetBuffer()
	defer PutBuffer(buf)
	if len(*buf) != receiveBufferSize {
		t.Fatalf("len = %d, want %d", len(*buf), receiveBufferSize)
	}
}

func TestPutBufferZeroesContent(t *testing.T) {
	buf := GetBuffer()
	(*buf)[0] = 0xFF
	(*buf)[len(*buf)-1] = 0xFF
	PutBuffer(buf)

	again := GetBuffer()
	defer PutBuffer(again)
	for i, b := range *again {
		if b != 0 {
			t.Fatalf("byte %d = %x, want zeroed after PutBuffer", i, b)
		}
	}
}
