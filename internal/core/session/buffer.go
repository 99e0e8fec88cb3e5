// If you are AI: This file implements the owned encoded-byte buffer held by a decode session.
// The buffer is move-only by convention: one session owns it and Release is idempotent.

package session

// OwnedBuffer is a private copy of encoded image bytes.
// Allocation: one copy at construction, released by dropping the reference.
type OwnedBuffer struct {
	data     []byte
	released bool
}

// NewOwnedBuffer copies src into a freshly allocated buffer.
func NewOwnedBuffer(src []byte) *OwnedBuffer {
	data := make([]byte, len(src))
	copy(data, src)
	return &OwnedBuffer{data: data}
}

// Bytes returns the buffer contents, or nil once released.
func (b *OwnedBuffer) Bytes() []byte {
	if b == nil || b.released {
		return nil
	}
	return b.data
}

// Len returns the buffer size in bytes, 0 once released.
func (b *OwnedBuffer) Len() int {
	return len(b.Bytes())
}

// Release drops the buffer contents. Returns true only on the first call.
func (b *OwnedBuffer) Release() bool {
	if b == nil || b.released {
		return false
	}
	b.released = true
	b.data = nil
	return true
}

// Released reports whether Release has been called.
func (b *OwnedBuffer) Released() bool {
	return b == nil || b.released
}
