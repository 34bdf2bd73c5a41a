// Package config loads, normalizes, and validates classicine configuration.
//
// Configuration comes from a TOML file merged over repository defaults.
// Load resolves the file location (explicit flag, then
// ~/.config/classicine/config.toml, then ./classicine.toml), expands tilde
// paths, and rejects unusable values with actionable messages. Metric
// classifiers are opt-in: a classifier participates only when its bias is
// set, and a set bias must have magnitude greater than one.
package config
