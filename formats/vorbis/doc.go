// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis decoding on top of
// github.com/jfreymuth/oggvorbis.
//
// Decoder.Decode turns a complete file into an audio.Source, which is how
// clips are decoded in one go:
//
//	src, err := vorbis.Decoder{}.Decode(bytes.NewReader(data))
//	pcm, err := audio.ReadAll(src)
//
// Decoder.NewStream returns a push-fed audio.StreamDecoder for files that
// arrive chunk by chunk from asynchronous reads:
//
//	dec := vorbis.Decoder{}.NewStream()
//	dec.Feed(chunk)
//	n, err := dec.Read(pcm) // 0, nil until enough input is buffered
//
// The underlying decoder pulls its input, so the stream decoder only lets it
// run while at least two maximum-size Ogg pages are buffered, or once
// FeedEnd was called. A read past the fed input fails with ErrStarved.
//
// Output is interleaved float32 in [-1.0, 1.0].
package vorbis
