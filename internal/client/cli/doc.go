// Package cli provides the interactive GophJournal command-line client.
//
// It wires configuration, the local session database, the gRPC client, the
// journal coordinator and a REPL. On start the previous session is restored
// from the local database when possible; otherwise the user registers or
// logs in.
//
// Key features:
//   - Register / Login / Logout / WhoAmI
//   - Browse entries with folder, date, tag and text filters
//   - Add and edit entries, upload attachments
//   - Add, edit and delete folders
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
