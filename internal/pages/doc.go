// Package pages keeps a JSON manifest of page marker files in sync with a
// directory tree.
//
// Generator performs one scan-and-write cycle. Coordinator runs cycles on a
// single goroutine in response to watch events, collapsing bursts with a
// debounce. Plugin wires both into the build lifecycle: BuildStart runs one
// cycle immediately and then arms the watch.
package pages
