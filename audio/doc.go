// SPDX-License-Identifier: EPL-2.0

// Package audio defines the decoder contract the sound engine consumes and
// the small DSP pieces its software backend mixes with.
//
// # Decoders
//
// A Decoder turns a complete file into a Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Decoders that can also work on a file that arrives piecewise from disk
// implement StreamingDecoder and hand out a StreamDecoder per stream. A
// StreamDecoder is push-fed with raw container bytes and never blocks: when
// it cannot make progress it returns 0, nil and waits for the next Feed.
//
// Decoders are registered by file extension:
//
//	reg := audio.NewRegistry()
//	reg.Register("ogg", vorbis.Decoder{})
//	dec, ok := reg.ForFile("music/theme.ogg")
//
// # Processing
//
// MonoMixer averages interleaved channels down to mono, and Resampler
// converts sample rates with cubic interpolation. The Resampler's ratio can
// be changed while it streams (SetPitch) and it can be restarted after its
// source ran dry (Reset), which is what a queued playback voice needs:
//
//	mono := audio.NewMonoMixer(queue)
//	rs := audio.NewResampler(mono, 48000)
//	rs.SetPitch(0.8)
//
// All samples are float32 values in [-1.0, 1.0], interleaved by channel.
package audio
