// Package preslist builds per-member presentation lists. It links free-text
// author references to people and contacts, filters presentations by status
// and type, normalizes dates and institution/department references, and hands
// the sorted entries to a Renderer and a Compiler.
//
// The package never mutates the documents it is given: every (member,
// presentation) pair gets its own Entry, so members can be built in parallel
// from one Snapshot.
package preslist
