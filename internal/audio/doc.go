// Package audio handles capture buffering, normalization, and format conversion.
// It implements raw chunk accumulation, decoding and resampling of captured blobs
// through a platform decoder, and encoding to canonical mono PCM WAV containers.
package audio
