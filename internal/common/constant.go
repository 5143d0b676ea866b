// Package common contains shared constants and sentinel errors used across
// StatusBoard components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Storage keys of the local secure store. They are stable across versions.
const (
	ActionsStorageKey = "action-items-data"
	TasksStorageKey   = "action-tasks-data"
	CommentsKeyPrefix = "comments_"
	UIStateStorageKey = "ui-state"
)

// CurrentSchemaVersion is stamped on every collection write.
const CurrentSchemaVersion = "1.0.0"

// LegacySchemaVersion marks collections written before versioning, including
// bare item arrays upgraded by the startup sweep.
const LegacySchemaVersion = "0.9.0"

// Remote table names.
const (
	TableActions  = "actions"
	TableTasks    = "tasks"
	TableComments = "comments"
)
