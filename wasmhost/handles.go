package wasmhost

import (
	"bytes"
	"io"
	"net/http"
	"sync"

	"github.com/edgekit/bindlike"
)

// fetcherHandles maps handle ids to resolved fetch capability handles. A
// handle only ever exists for a binding that passed resolution and type
// verification; the guest cannot mint one.
type fetcherHandles struct {
	handles []*bindlike.Fetcher
}

// Get returns the fetcher identified by id or nil if one does not exist.
func (fhs *fetcherHandles) Get(id int) *bindlike.Fetcher {
	if id < 0 || id >= len(fhs.handles) {
		return nil
	}
	return fhs.handles[id]
}

// Put registers a resolved fetcher and returns its handle id.
func (fhs *fetcherHandles) Put(f *bindlike.Fetcher) int {
	fhs.handles = append(fhs.handles, f)
	return len(fhs.handles) - 1
}

// requestHandle is a request under construction by the guest. The body, if
// any, is attached as a body handle at send time.
type requestHandle struct {
	method string
	uri    string
	header http.Header
}

// requestHandles is a slice of requestHandle with functions to get and create.
type requestHandles struct {
	handles []*requestHandle
}

// Get returns the requestHandle identified by id or nil if one does not exist.
func (rhs *requestHandles) Get(id int) *requestHandle {
	if id < 0 || id >= len(rhs.handles) {
		return nil
	}
	return rhs.handles[id]
}

// New creates a new requestHandle and returns its handle id and the handle itself.
func (rhs *requestHandles) New() (int, *requestHandle) {
	rh := &requestHandle{method: http.MethodGet, header: http.Header{}}
	rhs.handles = append(rhs.handles, rh)
	return len(rhs.handles) - 1, rh
}

// responseHandles maps handle ids to raw host responses awaiting guest reads.
type responseHandles struct {
	handles []*bindlike.HostResponse
}

// Get returns the response identified by id or nil if one does not exist.
func (rhs *responseHandles) Get(id int) *bindlike.HostResponse {
	if id < 0 || id >= len(rhs.handles) {
		return nil
	}
	return rhs.handles[id]
}

// Put registers a response and returns its handle id.
func (rhs *responseHandles) Put(resp *bindlike.HostResponse) int {
	rhs.handles = append(rhs.handles, resp)
	return len(rhs.handles) - 1
}

// bodyHandle represents a body. It could be readable or writable, but not
// both. Response bodies wrap the host's stream directly; guest-created bodies
// are buffer backed.
type bodyHandle struct {
	reader io.Reader
	writer io.Writer
	closer io.Closer

	// buf holds the contents of guest-created bodies; reader/writer wrap it.
	buf *bytes.Buffer

	length int64
}

// Close implements io.Closer for a bodyHandle.
func (b *bodyHandle) Close() error {
	if b.closer != nil {
		return b.closer.Close()
	}
	return nil
}

// Read implements io.Reader for a bodyHandle.
func (b *bodyHandle) Read(p []byte) (int, error) {
	if b.reader == nil {
		return 0, io.EOF
	}
	return b.reader.Read(p)
}

// Write implements io.Writer for a bodyHandle.
func (b *bodyHandle) Write(p []byte) (int, error) {
	if b.writer == nil {
		return 0, io.ErrClosedPipe
	}
	n, e := b.writer.Write(p)
	b.length += int64(n)
	return n, e
}

// bodyHandles is a map of bodyHandle with methods to get and create. Unlike
// the other handle tables it is mutex guarded, because response body reads
// and guest writes can interleave with closes.
type bodyHandles struct {
	lock         sync.RWMutex
	nextHandleID int
	handles      map[int]*bodyHandle
}

func newBodyHandles() *bodyHandles {
	return &bodyHandles{handles: make(map[int]*bodyHandle)}
}

func (bhs *bodyHandles) add(bh *bodyHandle) (int, *bodyHandle) {
	bhs.lock.Lock()
	defer bhs.lock.Unlock()

	id := bhs.nextHandleID
	bhs.nextHandleID++
	bhs.handles[id] = bh
	return id, bh
}

// Get returns the bodyHandle identified by id or nil if one does not exist.
func (bhs *bodyHandles) Get(id int) *bodyHandle {
	bhs.lock.RLock()
	defer bhs.lock.RUnlock()
	return bhs.handles[id]
}

// NewBuffer creates a bodyHandle backed by a buffer which can be read from or
// written to.
func (bhs *bodyHandles) NewBuffer() (int, *bodyHandle) {
	bh := &bodyHandle{buf: new(bytes.Buffer)}
	bh.reader = bh.buf
	bh.writer = bh.buf
	return bhs.add(bh)
}

// NewReader creates a bodyHandle whose reader and closer are connected to the
// supplied ReadCloser.
func (bhs *bodyHandles) NewReader(rdr io.ReadCloser) (int, *bodyHandle) {
	bh := &bodyHandle{reader: rdr, closer: rdr}
	return bhs.add(bh)
}

// Close removes and closes the bodyHandle identified by id.
func (bhs *bodyHandles) Close(id int) error {
	bhs.lock.Lock()
	defer bhs.lock.Unlock()

	// Not Get(), that would deadlock on the RWMutex.
	bh := bhs.handles[id]
	if bh == nil {
		return nil
	}
	delete(bhs.handles, id)
	return bh.Close()
}
