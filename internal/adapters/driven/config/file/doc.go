// Package file persists rostra configuration as a TOML file under the
// user's home directory. Nested TOML tables are flattened onto the
// dot-separated keys the rest of the application uses.
package file
