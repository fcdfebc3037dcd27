//go:build headless

// SPDX-License-Identifier: EPL-2.0

package soft

// DefaultOutput discards audio in headless builds.
func DefaultOutput() Output { return NullOutput{} }
