// SPDX-License-Identifier: EPL-2.0

package backend

import "github.com/go-gl/mathgl/mgl32"

// MinVoices is the fewest hardware sources the engine runs with.
const MinVoices = 4

// SourceID names a hardware source. Zero is never a valid id.
type SourceID uint32

// BufferID names an uploaded PCM buffer. Zero is never a valid id.
type BufferID uint32

// Backend is the playback device layer. Its queue semantics follow OpenAL:
//
//   - QueueBuffers appends to a source's queue; a playing source consumes
//     the queue in order and each finished buffer becomes processed.
//   - UnqueueBuffers removes processed buffers only, oldest first.
//   - A source that runs out of queued data stops by itself.
//   - Stop marks every queued buffer processed. Play on a stopped source
//     starts from the first buffer still queued; on a playing source it
//     does nothing.
//   - A looping source wraps around its queue and never processes buffers.
//
// Implementations are not required to be safe for concurrent use.
type Backend interface {
	OpenDevice(name string) error
	CloseDevice() error
	// Devices lists playback device names, or ErrEnumUnsupported.
	Devices() ([]string, error)

	NewSource() (SourceID, error)
	DeleteSource(SourceID) error

	// NewBuffer uploads interleaved float32 PCM with 1 or 2 channels.
	NewBuffer(pcm []float32, channels, sampleRate int) (BufferID, error)
	DeleteBuffer(BufferID) error

	QueueBuffers(SourceID, ...BufferID) error
	UnqueueBuffers(src SourceID, n int) ([]BufferID, error)
	BuffersProcessed(SourceID) (int, error)
	BuffersQueued(SourceID) (int, error)

	Play(SourceID) error
	Stop(SourceID) error
	Playing(SourceID) (bool, error)

	SetGain(SourceID, float32) error
	SetPitch(SourceID, float32) error
	SetPosition(SourceID, mgl32.Vec3) error
	SetRelative(SourceID, bool) error
	SetLooping(SourceID, bool) error
	// SetAttenuation sets the inverse distance model parameters.
	SetAttenuation(src SourceID, referenceDistance, rolloff float32) error

	SetListener(pos, dir, up mgl32.Vec3) error
	SetListenerGain(float32) error
}
