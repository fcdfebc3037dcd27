// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds test doubles for the sound engine: PCM sources,
// a pass-through decoder, an async file system whose reads complete on
// demand, and a backend that records every call.
package audiotest
