// Package app contains the core application logic: loading a definition,
// building its graph and running it. It is decoupled from any specific
// entrypoint like a CLI.
package app
