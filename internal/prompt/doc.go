// Package prompt supplies the ordered, deduplicated stream of text passages
// a recorder reads aloud. It handles paginated loading from the paragraph
// source, cursor navigation with wraparound, and prefetching near the end of
// the available list.
package prompt
