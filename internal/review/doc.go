// Package review implements the accept/reject workflow over submitted
// recordings and owns all writes to a user's transcript exclusion sets.
package review
