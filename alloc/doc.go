// Package alloc implements the polyphonic voice allocator: it maps note on
// and note off events to a fixed pool of polyvoice.MaxVoices voice slots and
// decides which slot is started, released, reused or stolen.
//
// All methods of Allocator are meant to be called from the audio thread only.
// They run in a bounded number of steps over at most MaxVoices slots, never
// block and never allocate. The returned event slices alias an internal
// buffer and stay valid only until the next call that returns events.
//
// A unison group has no object of its own: the slots that were started by
// the same note on share the same note number, and that shared note number is
// what identifies the group. Retriggering, releasing and stealing always act
// on every slot holding the note.
//
// The Monitor returned by Allocator.Monitor can be read from any goroutine.
package alloc
