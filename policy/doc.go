// Package policy holds the destination table: which roles may enter each
// screen, which URL path it lives at, and which navigation links each role
// sees.
//
// A [Table] is immutable once built. Access rules and link visibility are
// separate data; [New] checks that every link shown to a role leads somewhere
// that role may enter.
//
// [Reference] returns the built-in dashboard table. [Load] and [LoadFile] read
// the same structure from YAML.
package policy
