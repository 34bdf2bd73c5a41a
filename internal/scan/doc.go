// Package scan discovers candidate media files under the configured scan
// roots.
//
// Directories fan out across goroutines the way the rest of bootstrap
// parallelizes, with one sender channel collecting results. Per-entry
// failures (unreadable directories, missing metadata) are logged and
// counted but never abort the walk; the caller decides what an elevated
// skip count means.
package scan
