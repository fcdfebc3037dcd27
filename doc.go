// SPDX-License-Identifier: EPL-2.0

// Package sndmgr is a priority driven sound engine for games and other
// real-time hosts.
//
// An application opens any number of sounds, each a virtual source, while
// the playback device only offers a limited number of voices. Once per frame
// the host calls Update; the engine ranks every playing source by its static
// priority decayed with the distance to the listener, hands voices to the
// highest ranked ones and takes them away from the rest.
//
// # Quick Start
//
//	cfg, err := sndmgr.LoadConfig("sound.ini")
//	if err != nil {
//	    // Handle error
//	}
//	eng, err := sndmgr.New(cfg)
//	if err != nil {
//	    // Handle error
//	}
//	defer eng.Shutdown()
//
//	h, err := eng.Open("sfx/explosion.ogg", false)
//	_ = eng.SetPosition(h, mgl32.Vec3{10, 0, -5}, false)
//	_ = eng.Play(h, 1)
//
//	for running {
//	    _ = eng.Update(camPos, camDir, camUp)
//	}
//
// # Clips and Streams
//
// Opening with stream set to false decodes the whole file into one backend
// buffer. Clips are cached by file name and shared between sources. A stream
// reads its file with several asynchronous reads in flight, decodes chunk by
// chunk and is never shared. Both must be Ogg Vorbis files; any other
// extension fails Open.
//
// Names ending in ".txt" are definition files holding a sound file name,
// relative to the definition file, and a gain in percent:
//
//	footstep.ogg 80
//
// # Voices
//
// When a source drops out of the ranked set it loses its voice. Looping
// sources wait for a voice to come back, non-looping ones are closed. A
// source also closes itself when it played to the end or when a fade to
// gain 0 completed.
//
// # Failures
//
// Running out of voices or stream buffers is not an error: the sound waits
// for a later Update or is skipped. Invalid arguments are rejected with the
// errors declared in this package. If the device cannot be opened, the host
// may call Disable, after which every call succeeds without producing sound.
//
// # Backends
//
// The default backend mixes in software and plays through
// github.com/ebitengine/oto/v3. Any backend.Backend can be passed with
// WithBackend.
package sndmgr
