// SPDX-License-Identifier: EPL-2.0

// Package backend defines the device interface the sound engine drives:
// sources with buffer queues, a listener, and device selection.
//
// The soft subpackage implements it with a software mixer on top of
// github.com/ebitengine/oto/v3.
package backend
