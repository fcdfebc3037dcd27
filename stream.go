// SPDX-License-Identifier: EPL-2.0

package sndmgr

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/sndmgr/aio"
)

// ioBufferPool suballocates fixed-size read buffers from one allocation.
type ioBufferPool struct {
	mem  []byte
	size int
	free [][]byte
}

func newIOBufferPool(count, size int) *ioBufferPool {
	p := &ioBufferPool{
		mem:  make([]byte, count*size),
		size: size,
		free: make([][]byte, 0, count),
	}
	// pushed in reverse so the first get returns the lowest buffer
	for i := count - 1; i >= 0; i-- {
		lo, hi := i*size, (i+1)*size
		p.free = append(p.free, p.mem[lo:hi:hi])
	}

	return p
}

func (p *ioBufferPool) get() ([]byte, bool) {
	n := len(p.free)
	if n == 0 {
		return nil, false
	}

	b := p.free[n-1]
	p.free = p.free[:n-1]

	return b, true
}

func (p *ioBufferPool) put(b []byte) {
	p.free = append(p.free, b[:p.size:p.size])
}

func (p *ioBufferPool) available() int { return len(p.free) }

// streamSystem is the engine wide state shared by all stream readers.
type streamSystem struct {
	fs           aio.FileSystem
	pool         *ioBufferPool
	maxStreams   int
	iosPerStream int
	open         int
}

func newStreamSystem(fs aio.FileSystem, cfg StreamConfig) *streamSystem {
	return &streamSystem{
		fs:           fs,
		pool:         newIOBufferPool(cfg.MaxStreams*cfg.IOsPerStream, cfg.BufferSize),
		maxStreams:   cfg.MaxStreams,
		iosPerStream: cfg.IOsPerStream,
	}
}

type pendingRead struct {
	req aio.Request
	buf []byte
}

// streamReader keeps up to iosPerStream reads of one file in flight and
// hands them out in file order.
type streamReader struct {
	sys   *streamSystem
	name  string
	file  aio.File
	off   int64
	ios   []pendingRead
	taken bool
}

func (s *streamSystem) openReader(name string) (*streamReader, error) {
	if s.open >= s.maxStreams {
		return nil, ErrStreamLimit
	}

	f, err := s.fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open stream %s: %w", name, err)
	}

	r := &streamReader{
		sys:  s,
		name: name,
		file: f,
		ios:  make([]pendingRead, 0, s.iosPerStream),
	}
	s.open++

	if err := r.fill(); err != nil && len(r.ios) == 0 && !r.exhausted() {
		r.close()
		return nil, err
	}

	return r, nil
}

// fill issues reads until the stream has its full share in flight. It stops
// quietly at end of file.
func (r *streamReader) fill() error {
	for len(r.ios) < r.sys.iosPerStream {
		if err := r.issueNext(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}

	return nil
}

// issueNext starts one more read at the file cursor. It reports io.EOF once
// the whole file has been requested.
func (r *streamReader) issueNext() error {
	if len(r.ios) >= r.sys.iosPerStream {
		return nil
	}

	size := r.file.Size()
	if r.off >= size {
		return io.EOF
	}

	buf, ok := r.sys.pool.get()
	if !ok {
		return ErrNoIOBuffer
	}

	n := int(min(int64(len(buf)), size-r.off))
	req, err := r.file.IssueRead(r.off, buf[:n])
	if err != nil {
		r.sys.pool.put(buf)
		if errors.Is(err, aio.ErrNoSlots) {
			return fmt.Errorf("%w: %w", ErrNoIOBuffer, err)
		}
		return fmt.Errorf("read %s: %w", r.name, err)
	}

	r.ios = append(r.ios, pendingRead{req: req, buf: buf})
	r.off += int64(n)

	return nil
}

// takeBuffer returns the data of the oldest read if it completed. The
// caller must call discardBuffer before taking the next one.
func (r *streamReader) takeBuffer() ([]byte, error) {
	if r.taken {
		return nil, ErrBufferNotDiscarded
	}
	if len(r.ios) == 0 {
		if r.exhausted() {
			return nil, io.EOF
		}
		return nil, ErrNotReady
	}

	head := r.ios[0]
	if !head.req.Poll() {
		return nil, ErrNotReady
	}

	r.taken = true
	n, err := head.req.Wait()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.name, err)
	}

	return head.buf[:n], nil
}

// discardBuffer releases the read returned by takeBuffer.
func (r *streamReader) discardBuffer() error {
	if !r.taken {
		return nil
	}

	head := r.ios[0]
	if err := head.req.Discard(); err != nil {
		return fmt.Errorf("%w", err)
	}
	r.sys.pool.put(head.buf)

	copy(r.ios, r.ios[1:])
	r.ios[len(r.ios)-1] = pendingRead{}
	r.ios = r.ios[:len(r.ios)-1]
	r.taken = false

	return nil
}

// exhausted reports that every byte of the file was read and handed out.
func (r *streamReader) exhausted() bool {
	return r.off >= r.file.Size() && len(r.ios) == 0
}

// drain waits for every in-flight read and gives its buffer back.
func (r *streamReader) drain() {
	if r.taken {
		_ = r.discardBuffer()
	}

	for _, p := range r.ios {
		_, _ = p.req.Wait()
		_ = p.req.Discard()
		r.sys.pool.put(p.buf)
	}
	clear(r.ios)
	r.ios = r.ios[:0]
}

// rewind starts reading the file over from the beginning.
func (r *streamReader) rewind() error {
	r.drain()
	r.off = 0

	return r.fill()
}

func (r *streamReader) close() {
	if r.file == nil {
		return
	}

	r.drain()
	_ = r.file.Close()
	r.file = nil
	r.sys.open--
}
