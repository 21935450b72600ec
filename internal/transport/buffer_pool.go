package transport

import "sync"

// receiveBufferSize is large enough for any UDP DNS datagram this
// resolver will see; plain DNS is capped at 512 bytes but a generous
// buffer keeps the pool useful if EDNS0 is ever added.
const receiveBufferSize = 4096

var bufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, receiveBufferSize)
		return &buf
	},
}

// GetBuffer returns a pointer to a receiveBufferSize buffer. The caller
// must return it with PutBuffer.
func GetBuffer() *[]byte {
	return bufferPool.Get().(*[]byte)
}

// PutBuffer zeroes and returns a buffer obtained from GetBuffer to the
// pool. The caller must not use bufPtr again afterward.
func PutBuffer(bufPtr *[]byte) {
	buf := *bufPtr
	for i := range buf {
		buf[i] = 0
	}
	bufferPool.Put(bufPtr)
}
