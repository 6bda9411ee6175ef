// Package cache reads and writes analyzed frame sequences in the LLSM2 binary
// cache format.
//
// Layout (little-endian, no padding; ints are int32, reals are float64):
//
//	"LLSM2" | version | frameCount | sampleRate | bitDepth
//	hop | maxHarmonics | maxNoiseHarmonics | psdBins | channels
//	len(channelFreqs) | channelFreqs... | lipRadius | f0Refine
//	harmonicMethod | windowRatio
//	frame * frameCount
//
// where each frame is
//
//	f0 | nhar | ampl... | phase... | npsd | psd... | nchannel
//	(edc | nhar | ampl... | phase...) * nchannel
//
// Only base-layer fields are stored. A file is either read completely and
// validated or rejected; there is no recovery of partial or older files.
package cache
