// Package watch turns filesystem notifications under a pages root into
// add, change and remove events for marker files.
//
// Source is the seam the coordinator depends on; FSWatcher implements it on
// top of fsnotify, adding directories recursively as they appear.
package watch
