// Package audio decodes synthesized Ogg Vorbis into PCM and plays units in
// order through the system audio device using the oto/v3 library.
package audio
