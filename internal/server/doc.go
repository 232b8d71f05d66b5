// Package server implements the HTTP API for the recording platform. It
// exposes the recording session lifecycle, passage delivery, the review
// workflow, and monitoring/management endpoints.
package server
