// Package audioio reads sample sources and writes rendered notes as mono
// float64 PCM. WAV goes through beep's wav codec, FLAC through mewkiz/flac.
package audioio
