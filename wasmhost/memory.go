package wasmhost

import (
	"encoding/binary"
	"errors"

	"github.com/bytecodealliance/wasmtime-go"
)

var errMemoryBounds = errors.New("address out of guest memory bounds")

// memory wraps the guest's exported linear memory with bounds-checked reads
// and writes. The underlying slice is only valid while the instance lives and
// may move on memory growth, so it is re-fetched on every access.
type memory struct {
	mem   *wasmtime.Memory
	store wasmtime.Storelike
}

func (m *memory) Data() []byte {
	return m.mem.UnsafeData(m.store)
}

// ReadAt copies len(p) bytes from guest memory at off into p.
func (m *memory) ReadAt(p []byte, off int64) (int, error) {
	data := m.Data()
	if off < 0 || off+int64(len(p)) > int64(len(data)) {
		return 0, errMemoryBounds
	}
	return copy(p, data[off:]), nil
}

// WriteAt copies p into guest memory at off.
func (m *memory) WriteAt(p []byte, off int64) (int, error) {
	data := m.Data()
	if off < 0 || off+int64(len(p)) > int64(len(data)) {
		return 0, errMemoryBounds
	}
	return copy(data[off:], p), nil
}

// PutUint32 writes v little-endian at off, the layout wasm expects for the
// out-pointer parameters the ABI uses.
func (m *memory) PutUint32(v uint32, off int64) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := m.WriteAt(buf[:], off)
	return err
}

// ReadString reads size bytes at addr as a string.
func (m *memory) ReadString(addr, size int32) (string, error) {
	if size < 0 {
		return "", errMemoryBounds
	}
	buf := make([]byte, size)
	if _, err := m.ReadAt(buf, int64(addr)); err != nil {
		return "", err
	}
	return string(buf), nil
}
