// SPDX-License-Identifier: EPL-2.0

// Package wav writes 16-bit PCM WAV files using github.com/go-audio/wav.
//
// The sound engine never plays WAV input; this package exists to capture
// mixer output to disk, for example from the soft backend:
//
//	f, _ := os.Create("capture.wav")
//	w, err := wav.NewWriter(f, 44100, 2)
//	if err != nil {
//	    // Handle error
//	}
//	_ = w.WriteSamples(frames) // interleaved float32 in [-1.0, 1.0]
//	_ = w.Close()
//	_ = f.Close()
//
// Writer clips samples to [-1.0, 1.0] before scaling them to int16.
package wav
