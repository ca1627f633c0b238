// Package journal keeps the client-side view of journal entries and folders
// ("sections") consistent with the remote row store.
//
// Repository turns store rows into Entry and Section values and issues the
// CRUD calls. The filter helpers split a view into the predicates the server
// evaluates (folder, date range) and those applied locally (free text, tag).
// SectionManager runs the two-phase folder delete. Coordinator owns the
// immutable view State and decides when to re-fetch.
package journal
