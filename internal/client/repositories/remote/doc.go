// Package remote implements the dashboard repositories over the backend
// client. Rows use snake_case columns and ISO due dates; they are converted
// to the models used by the rest of the client, with delay status
// recomputed on every load.
package remote
