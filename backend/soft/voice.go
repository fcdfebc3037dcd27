// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ik5/sndmgr/audio"
	"github.com/ik5/sndmgr/backend"
)

type pcmBuffer struct {
	data       []float32
	channels   int
	sampleRate int
	queued     int // number of queue slots referencing the buffer
}

// queueSource reads a voice's buffer queue as one audio.Source. Entries
// before head are processed.
type queueSource struct {
	ids     []backend.BufferID
	bufs    []*pcmBuffer
	head    int
	pos     int // sample offset into bufs[head]
	looping bool
}

func (q *queueSource) current() *pcmBuffer {
	if q.head < len(q.bufs) {
		return q.bufs[q.head]
	}
	if len(q.bufs) > 0 {
		return q.bufs[len(q.bufs)-1]
	}
	return nil
}

func (q *queueSource) SampleRate() int {
	if b := q.current(); b != nil {
		return b.sampleRate
	}
	return 0
}

func (q *queueSource) Channels() int {
	if b := q.current(); b != nil {
		return b.channels
	}
	return 1
}

func (q *queueSource) BufSize() int { return 4096 }
func (q *queueSource) Close() error { return nil }

func (q *queueSource) ReadSamples(dst []float32) (int, error) {
	n, wraps := 0, 0
	for n < len(dst) {
		if q.head >= len(q.bufs) {
			// a looping queue holding no samples at all ends like any other
			if !q.looping || len(q.bufs) == 0 || (wraps > 0 && n == 0) {
				return n, io.EOF
			}
			q.head = 0
			wraps++
		}

		b := q.bufs[q.head]
		c := copy(dst[n:], b.data[q.pos:])
		n += c
		q.pos += c

		if q.pos >= len(b.data) {
			q.head++
			q.pos = 0
		}
	}

	return n, nil
}

func (q *queueSource) pending() int { return len(q.bufs) - q.head }

type voice struct {
	in      *queueSource
	out     *audio.Resampler
	playing bool

	gain     float32
	pitch    float32
	position mgl32.Vec3
	relative bool
	refDist  float32
	rolloff  float32
}

func newVoice(sampleRate int) *voice {
	in := &queueSource{}

	return &voice{
		in:      in,
		out:     audio.NewResampler(audio.NewMonoMixer(in), sampleRate),
		gain:    1,
		pitch:   1,
		refDist: 1,
		rolloff: 1,
	}
}

func (v *voice) play() {
	if v.playing {
		return
	}

	v.in.head, v.in.pos = 0, 0
	v.out.Reset()
	v.out.SetPitch(float64(v.pitch))
	v.playing = v.in.pending() > 0
}

func (v *voice) stop() {
	v.playing = false
	v.in.head, v.in.pos = len(v.in.bufs), 0
}

// render adds the voice into the stereo frames of out.
func (v *voice) render(out, scratch []float32, l *listener) {
	frames := len(out) / 2

	n, err := v.out.ReadSamples(scratch[:frames])
	if err != nil {
		v.stop()
	}

	left, right := v.stereoGains(l)
	for i := range n {
		out[2*i] += scratch[i] * left
		out[2*i+1] += scratch[i] * right
	}
}

type listener struct {
	pos  mgl32.Vec3
	dir  mgl32.Vec3
	up   mgl32.Vec3
	gain float32
}

// attenuation is the clamped inverse distance model.
func attenuation(dist, ref, rolloff float32) float32 {
	if ref <= 0 {
		return 1
	}

	dist = max(dist, ref)

	return ref / (ref + rolloff*(dist-ref))
}

// pan is -1 for hard left and 1 for hard right.
func pan(rel, dir, up mgl32.Vec3) float32 {
	const eps = 1e-6

	right := dir.Cross(up)
	if right.Len() < eps || rel.Len() < eps {
		return 0
	}

	p := right.Normalize().Dot(rel.Normalize())

	return mgl32.Clamp(p, -1, 1)
}

func (v *voice) stereoGains(l *listener) (float32, float32) {
	rel := v.position
	if !v.relative {
		rel = v.position.Sub(l.pos)
	}

	g := v.gain * l.gain * attenuation(rel.Len(), v.refDist, v.rolloff)
	p := pan(rel, l.dir, l.up)

	left := float32(math.Sqrt(float64((1 - p) / 2)))
	right := float32(math.Sqrt(float64((1 + p) / 2)))

	return g * left, g * right
}
