// Package acquire orchestrates repository content acquisition.
//
// One Acquire call runs four strictly sequential phases: resolve the
// branch, discover candidate files (trying strategies in priority order
// and accepting the first non-empty list), deduplicate, then fetch each
// file and aggregate the formatted blocks into a single text artifact.
//
// The central correctness property is that nothing past the package
// boundary ever sees an acquisition-level failure: per-file errors
// degrade to placeholders, dead strategies fall through to the next
// one, and a repository yielding nothing at all still produces a
// well-formed result with an explanatory message. The only error
// Acquire returns is the caller's own context cancellation.
package acquire
