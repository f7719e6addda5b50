package audio

import "fmt"

// Size is the set of integer types a RingBuffer may use for its cursors.
type Size interface {
	~int | ~int16 | ~int32 | ~int64 | ~uint | ~uint16 | ~uint32 | ~uint64
}

// RingBuffer is a fixed-capacity FIFO of T. Counts are in elements, so for
// interleaved audio they are total samples rather than samples per channel.
//
// Invariant: 0 <= read <= write <= capacity. Unread data lives in
// storage[read:write]. Calls that violate a documented precondition panic.
type RingBuffer[T any, S Size] struct {
	storage []T
	read    S
	write   S
}

// NewRingBuffer allocates a buffer holding capacity elements.
func NewRingBuffer[T any, S Size](capacity S) *RingBuffer[T, S] {
	if capacity <= 0 {
		panic(fmt.Sprintf("audio: ring buffer capacity must be positive, got %v", capacity))
	}
	return &RingBuffer[T, S]{storage: make([]T, int(capacity))}
}

// Cap returns the fixed capacity.
func (b *RingBuffer[T, S]) Cap() S {
	return S(len(b.storage))
}

// WriteCapacity returns how many elements can be written before a read.
func (b *RingBuffer[T, S]) WriteCapacity() S {
	return b.Cap() - b.write + b.read
}

// ReadCapacity returns how many unread elements are buffered.
func (b *RingBuffer[T, S]) ReadCapacity() S {
	return b.write - b.read
}

// WriteDest reserves n elements and returns the slice to fill. n must not
// exceed WriteCapacity. If the reservation would run past the end of storage,
// the unread region is first moved to the front.
func (b *RingBuffer[T, S]) WriteDest(n S) []T {
	if n < 0 || n > b.WriteCapacity() {
		panic(fmt.Sprintf("audio: write of %v exceeds capacity %v", n, b.WriteCapacity()))
	}
	if b.write+n > b.Cap() {
		if b.read < b.Cap() {
			copy(b.storage, b.storage[b.read:b.write])
			b.write -= b.read
		} else {
			// Fully drained at the end of storage.
			b.write = 0
		}
		b.read = 0
	}
	dest := b.storage[b.write : b.write+n]
	b.write += n
	return dest
}

// Write copies src into the buffer. len(src) must not exceed WriteCapacity.
func (b *RingBuffer[T, S]) Write(src []T) {
	copy(b.WriteDest(S(len(src))), src)
}

// RewindWrite gives back the last n reserved elements, for when a producer
// reserved more room than it ended up filling.
func (b *RingBuffer[T, S]) RewindWrite(n S) {
	if n < 0 || n > b.write-b.read {
		panic(fmt.Sprintf("audio: rewind of %v past read cursor", n))
	}
	b.write -= n
}

// ReadInto copies up to len(dst) unread elements into dst and returns the
// number copied, which may be zero.
func (b *RingBuffer[T, S]) ReadInto(dst []T) S {
	n := min(b.ReadCapacity(), S(len(dst)))
	if n > 0 {
		copy(dst, b.storage[b.read:b.read+n])
		b.read += n
	}
	return n
}

// ReadSource consumes n elements and returns them in place. n must not exceed
// ReadCapacity. The slice is only valid until the next write.
func (b *RingBuffer[T, S]) ReadSource(n S) []T {
	if n < 0 || n > b.ReadCapacity() {
		panic(fmt.Sprintf("audio: read of %v exceeds buffered %v", n, b.ReadCapacity()))
	}
	src := b.storage[b.read : b.read+n]
	b.read += n
	return src
}
