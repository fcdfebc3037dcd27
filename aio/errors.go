// SPDX-License-Identifier: EPL-2.0

package aio

import "errors"

var (
	ErrNoSlots      = errors.New("no free read request slots")
	ErrRequestInUse = errors.New("read request still in flight")
	ErrDiscarded    = errors.New("read request already discarded")
	ErrNotReaderAt  = errors.New("file does not support offset reads")
	ErrOffset       = errors.New("read offset outside of file")
)
