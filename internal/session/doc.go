// Package session implements the recording session lifecycle: permission
// acquisition, chunked capture with a hard duration ceiling, and finalization
// through the normalization pipeline into a reviewable recording.
package session
