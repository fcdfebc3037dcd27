// SPDX-License-Identifier: EPL-2.0

// Package soft is a software implementation of backend.Backend.
//
// Every source owns a queue of PCM buffers that is downmixed to mono,
// resampled to the output rate (which also applies pitch), attenuated with
// the clamped inverse distance model and panned by its position relative to
// the listener. The mix is clipped to [-1.0, 1.0].
//
// By default the mix plays through github.com/ebitengine/oto/v3. Building
// with the headless tag, or passing NullOutput, leaves rendering to the
// caller:
//
//	b := soft.New(soft.Options{Output: soft.NullOutput{}})
//	_ = b.OpenDevice("")
//	...
//	frames := make([]float32, 2*1024)
//	b.Render(frames)
package soft
