// SPDX-License-Identifier: EPL-2.0

package aio

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
)

// FileSystem is what the sound engine loads from: whole-file reads for clips
// and offset reads for streams.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	Open(name string) (File, error)
}

// File issues asynchronous reads at explicit offsets.
type File interface {
	// IssueRead starts reading len(buf) bytes at off into buf. buf must not
	// be touched until the request completed.
	IssueRead(off int64, buf []byte) (Request, error)
	Size() int64
	Close() error
}

// Request is one in-flight read.
type Request interface {
	// Poll reports completion without blocking.
	Poll() bool
	// Wait blocks until completion and returns the byte count. A short
	// read at the end of the file is not an error.
	Wait() (int, error)
	// Discard returns the request slot. It fails while the read is still
	// in flight.
	Discard() error
}

// FS runs reads against an fs.FS on goroutines. The number of requests in
// flight is bounded by the slot count given to New.
type FS struct {
	fsys fs.FS

	mtx  *sync.Mutex
	free []*request
}

// New wraps fsys. slots bounds the number of requests that are issued but
// not yet discarded.
func New(fsys fs.FS, slots int) *FS {
	f := &FS{
		fsys: fsys,
		mtx:  &sync.Mutex{},
		free: make([]*request, 0, slots),
	}
	for range slots {
		f.free = append(f.free, &request{owner: f})
	}

	return f
}

// NewOS reads from the host file system. Names are used as given.
func NewOS(slots int) *FS {
	return New(osFS{}, slots)
}

func (f *FS) ReadFile(name string) ([]byte, error) {
	data, err := fs.ReadFile(f.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return data, nil
}

func (f *FS) Open(name string) (File, error) {
	h, err := f.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	ra, ok := h.(io.ReaderAt)
	if !ok {
		_ = h.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotReaderAt, name)
	}

	info, err := h.Stat()
	if err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("%w", err)
	}

	return &file{owner: f, h: h, ra: ra, size: info.Size()}, nil
}

// Available reports free request slots.
func (f *FS) Available() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	return len(f.free)
}

func (f *FS) acquire() (*request, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	if len(f.free) == 0 {
		return nil, ErrNoSlots
	}

	r := f.free[len(f.free)-1]
	f.free = f.free[:len(f.free)-1]

	return r, nil
}

func (f *FS) release(r *request) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.free = append(f.free, r)
}

type file struct {
	owner *FS
	h     fs.File
	ra    io.ReaderAt
	size  int64
}

func (f *file) Size() int64 { return f.size }

func (f *file) Close() error {
	if err := f.h.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (f *file) IssueRead(off int64, buf []byte) (Request, error) {
	if off < 0 || off > f.size {
		return nil, ErrOffset
	}

	r, err := f.owner.acquire()
	if err != nil {
		return nil, err
	}

	r.done = make(chan struct{})
	r.n, r.err = 0, nil
	r.inUse = true

	go func() {
		n, err := f.ra.ReadAt(buf, off)
		if err == io.EOF {
			err = nil
		}
		r.n, r.err = n, err
		close(r.done)
	}()

	return r, nil
}

type request struct {
	owner *FS
	done  chan struct{}
	n     int
	err   error
	inUse bool
}

func (r *request) Poll() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func (r *request) Wait() (int, error) {
	<-r.done

	if r.err != nil {
		return r.n, fmt.Errorf("%w", r.err)
	}

	return r.n, nil
}

func (r *request) Discard() error {
	if !r.inUse {
		return ErrDiscarded
	}
	if !r.Poll() {
		return ErrRequestInUse
	}

	r.inUse = false
	r.owner.release(r)

	return nil
}

// osFS opens host paths without the fs.ValidPath restrictions of os.DirFS.
type osFS struct{}

func (osFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

func (osFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}
