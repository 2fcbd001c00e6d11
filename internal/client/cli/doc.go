// Package cli provides the interactive mediashare command-line client.
//
// It wires configuration, the encrypted token store, the REST client and the
// services, then runs a REPL over them. Typical flow: restore the previous
// session from the stored token, start the background feed refresher, and
// execute user commands.
//
// Key features:
//   - Register / Login / Logout / Profile
//   - Feed, own files and item details with likes and comments
//   - Upload, edit and delete media
//   - Like toggling and commenting
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
