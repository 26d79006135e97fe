// Package watch reruns the analysis pipeline whenever the watched
// artifacts change on disk. Events are debounced so that build tools
// rewriting many class files in a burst trigger a single rerun.
package watch
