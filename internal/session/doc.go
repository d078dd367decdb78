// Package session provides the conversation entities and their local
// persistence.
//
// A session is a titled, ordered message history. The [Store] keeps the
// session list in memory and mirrors it to disk as two independent JSON
// records under the data directory:
//
//   - brainora_user.json  — the signed-in user, absent when signed out
//   - brainora_chats.json — the full session list, written as a verbatim
//     snapshot on every commit, reorder and delete
//
// The sessions record is only written while a user record is present;
// signing out removes both records. Writes are atomic (temp file + rename)
// and serialized across processes with file locking via
// [github.com/gofrs/flock].
//
// Store methods hand out copies: callers never share slices with the store.
package session
