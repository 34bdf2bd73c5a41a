// Package player runs VLC as the feedback collaborator and turns playback
// state into classification outcomes.
//
// Each candidate gets its own VLC process with the HTTP interface enabled
// on a random localhost port behind a one-shot password. The session polls
// status.json: the user stopping playback means Positive, pausing means
// Negative, and a vanished or unresponsive player means Skipped. Skipped is
// never a decision; the session moves on without recording anything.
//
// The process is always reaped. Close kills and waits on every exit path,
// including errors and cancellation.
package player
