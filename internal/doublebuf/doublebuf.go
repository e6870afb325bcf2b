// Package doublebuf provides a generic ping-pong container.
//
// A [Buffer] owns two instances of a value. One is the read generation,
// authoritative for anything that consumes state; the other is the write
// generation, the staging target for the update in progress. [Buffer.Swap]
// exchanges the roles once the write generation is fully populated.
//
//	buf := doublebuf.New(func() Grid { return NewGrid(w, h) })
//	update(buf.Read(), buf.Write())
//	buf.Swap()
//
// # Thread Safety
//
// Buffer does no locking. Concurrent readers of Read and writers of Write
// are fine as long as they touch disjoint data, but Swap must be sequenced
// strictly between update rounds by the owner.
package doublebuf

// Role says which of the two instances is currently the read generation.
type Role uint8

const (
	UseA Role = iota
	UseB
)

func (r Role) String() string {
	if r == UseB {
		return "B"
	}
	return "A"
}

// Buffer double-buffers any kind of value.
//
// UseA: read a, write b. UseB: read b, write a.
type Buffer[T any] struct {
	role Role
	a    T
	b    T
}

// New builds both generations by calling build twice. The two results must
// not share storage; build is expected to allocate fresh state on each call.
func New[T any](build func() T) *Buffer[T] {
	return &Buffer[T]{
		role: UseA,
		a:    build(),
		b:    build(),
	}
}

func (d *Buffer[T]) Read() *T {
	if d.role == UseA {
		return &d.a
	}
	return &d.b
}

func (d *Buffer[T]) Write() *T {
	if d.role == UseA {
		return &d.b
	}
	return &d.a
}

// Swap promotes the write generation to read. Callers must have populated
// Write completely before calling it.
func (d *Buffer[T]) Swap() {
	if d.role == UseA {
		d.role = UseB
	} else {
		d.role = UseA
	}
}

func (d *Buffer[T]) Role() Role { return d.role }
