// Package cli provides the interactive StatusBoard terminal client.
//
// NewApp opens the encrypted local store, connects to the backend when an
// access token is configured, and wires the services. App.Run starts the
// connectivity monitor, the due date notifier and the change feed, then
// blocks in the REPL until the user exits.
//
// Commands:
//   - list, show, add, edit, delete for actions
//   - tasks, addtask, edittask, deltask, done, reorder for tasks
//   - comment, taskcomment for comments
//   - filter, sort, view, summary for the dashboard
//   - notifications, export, chat, mode
package cli
