// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"fmt"
	"io/fs"
	"sync"

	"github.com/ik5/sndmgr/aio"
)

// IssuedRead records one IssueRead call.
type IssuedRead struct {
	Name string
	Off  int64
	Buf  []byte
}

// FakeFS is an aio.FileSystem whose reads stay pending until the test
// completes them, oldest first.
type FakeFS struct {
	// AutoComplete finishes every read as soon as it is issued.
	AutoComplete bool

	mtx     sync.Mutex
	files   map[string][]byte
	failing map[string]error
	pending []*fakeRequest
	issued  []IssuedRead
	open    int
}

func NewFakeFS(files map[string][]byte) *FakeFS {
	if files == nil {
		files = make(map[string][]byte)
	}

	return &FakeFS{files: files, failing: make(map[string]error)}
}

// Add stores or replaces a file.
func (f *FakeFS) Add(name string, data []byte) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.files[name] = data
}

// Fail makes reads of name that complete from now on return err.
func (f *FakeFS) Fail(name string, err error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.failing[name] = err
}

func (f *FakeFS) ReadFile(name string) ([]byte, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	data, ok := f.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, name)
	}

	return append([]byte(nil), data...), nil
}

func (f *FakeFS) Open(name string) (aio.File, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	data, ok := f.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, name)
	}
	f.open++

	return &fakeFile{fs: f, name: name, data: data}, nil
}

// Complete finishes up to n pending reads in issue order and reports how
// many it finished.
func (f *FakeFS) Complete(n int) int {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	done := 0
	for done < n && len(f.pending) > 0 {
		f.pending[0].finish()
		f.pending = f.pending[1:]
		done++
	}

	return done
}

// CompleteAll finishes every pending read.
func (f *FakeFS) CompleteAll() int { return f.Complete(int(^uint(0) >> 1)) }

func (f *FakeFS) Pending() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	return len(f.pending)
}

// Issued returns every read issued so far.
func (f *FakeFS) Issued() []IssuedRead {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	return append([]IssuedRead(nil), f.issued...)
}

// OpenFiles counts files opened and not yet closed.
func (f *FakeFS) OpenFiles() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	return f.open
}

type fakeFile struct {
	fs     *FakeFS
	name   string
	data   []byte
	closed bool
}

func (f *fakeFile) Size() int64 { return int64(len(f.data)) }

func (f *fakeFile) Close() error {
	f.fs.mtx.Lock()
	defer f.fs.mtx.Unlock()

	if !f.closed {
		f.closed = true
		f.fs.open--
	}

	return nil
}

func (f *fakeFile) IssueRead(off int64, buf []byte) (aio.Request, error) {
	if off < 0 || off > int64(len(f.data)) {
		return nil, aio.ErrOffset
	}

	f.fs.mtx.Lock()
	defer f.fs.mtx.Unlock()

	r := &fakeRequest{file: f, off: off, buf: buf}
	f.fs.issued = append(f.fs.issued, IssuedRead{Name: f.name, Off: off, Buf: buf})

	if f.fs.AutoComplete {
		r.finish()
	} else {
		f.fs.pending = append(f.fs.pending, r)
	}

	return r, nil
}

type fakeRequest struct {
	file      *fakeFile
	off       int64
	buf       []byte
	done      bool
	discarded bool
	n         int
	err       error
}

// finish runs with the FakeFS lock held.
func (r *fakeRequest) finish() {
	r.done = true
	if err := r.file.fs.failing[r.file.name]; err != nil {
		r.err = err
		return
	}
	r.n = copy(r.buf, r.file.data[r.off:])
}

func (r *fakeRequest) Poll() bool {
	r.file.fs.mtx.Lock()
	defer r.file.fs.mtx.Unlock()

	return r.done
}

// Wait completes the read on the spot if the test has not done so.
func (r *fakeRequest) Wait() (int, error) {
	r.file.fs.mtx.Lock()
	defer r.file.fs.mtx.Unlock()

	if !r.done {
		for i, p := range r.file.fs.pending {
			if p == r {
				r.file.fs.pending = append(r.file.fs.pending[:i], r.file.fs.pending[i+1:]...)
				break
			}
		}
		r.finish()
	}

	return r.n, r.err
}

func (r *fakeRequest) Discard() error {
	r.file.fs.mtx.Lock()
	defer r.file.fs.mtx.Unlock()

	if r.discarded {
		return aio.ErrDiscarded
	}
	if !r.done {
		return aio.ErrRequestInUse
	}
	r.discarded = true

	return nil
}

var _ aio.FileSystem = (*FakeFS)(nil)
