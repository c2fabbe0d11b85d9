// Package cli turns command-line arguments into an app.Config. It validates
// flag values and reports bad usage as an ExitError carrying exit code 2.
package cli
