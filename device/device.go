// Package device provides the resource factory threaded through prepare calls
package device

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/YishiMichael/morphing-sub001/core"
)

// Usage tags what a buffer feeds in the render step
type Usage uint8

const (
	UsageVertex Usage = iota
	UsageUniform
)

func (u Usage) String() string {
	switch u {
	case UsageVertex:
		return "vertex"
	case UsageUniform:
		return "uniform"
	default:
		return fmt.Sprintf("usage(%d)", uint8(u))
	}
}

// Device creates and updates GPU-resident buffers
type Device interface {
	CreateBuffer(label string, usage Usage, data []byte) (*Buffer, error)
	WriteBuffer(buf *Buffer, data []byte) error
}

// Buffer is a fixed-size device allocation
type Buffer struct {
	id    uint64
	label string
	usage Usage
	data  []byte
}

// ID returns the allocation identity
func (b *Buffer) ID() uint64 { return b.id }

// Label returns the debug label
func (b *Buffer) Label() string { return b.label }

// Usage returns the buffer usage
func (b *Buffer) Usage() Usage { return b.usage }

// Size returns the allocation size in bytes
func (b *Buffer) Size() int { return len(b.data) }

// Bytes returns the buffer contents; read-only outside prepare
func (b *Buffer) Bytes() []byte { return b.data }

// Memory is an in-process device; allocations are host slices
type Memory struct {
	mu      sync.Mutex
	nextID  uint64
	created atomic.Int64
	writes  atomic.Int64
	bytes   atomic.Int64
}

// NewMemory creates an empty in-memory device
func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

// CreateBuffer allocates a buffer sized to data
func (m *Memory) CreateBuffer(label string, usage Usage, data []byte) (*Buffer, error) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.mu.Unlock()

	buf := &Buffer{id: id, label: label, usage: usage, data: make([]byte, len(data))}
	copy(buf.data, data)
	m.created.Add(1)
	m.bytes.Add(int64(len(data)))
	return buf, nil
}

// WriteBuffer overwrites buf in place; a size mismatch is a ReuseFailure
// and leaves the buffer untouched
func (m *Memory) WriteBuffer(buf *Buffer, data []byte) error {
	if len(data) != len(buf.data) {
		return core.NewReuseFailure("%s buffer %q holds %d bytes, write has %d", buf.usage, buf.label, len(buf.data), len(data))
	}
	copy(buf.data, data)
	m.writes.Add(1)
	return nil
}

// Stats reports allocation counters
func (m *Memory) Stats() (created, writes, bytes int64) {
	return m.created.Load(), m.writes.Load(), m.bytes.Load()
}
