// SPDX-License-Identifier: EPL-2.0

// Package aio issues file reads that complete in the background.
//
// Streams keep several reads in flight and pick them up in issue order:
//
//	fsys := aio.NewOS(64)
//	f, _ := fsys.Open("music.ogg")
//	req, err := f.IssueRead(0, buf)
//	...
//	if req.Poll() {
//	    n, err := req.Wait()
//	    _ = req.Discard()
//	}
//
// Each request runs on its own goroutine against an io.ReaderAt, so reads
// on one file may complete out of order. Request slots are shared across
// all files opened from the same FS.
package aio
