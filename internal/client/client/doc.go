// Package client talks to the StatusBoard backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering the
//     generic row operations of the backend: Ping, FetchAll, Insert, Upsert,
//     Delete, the Subscribe change feed and PresignExport.
//  2. A gRPC implementation (see GRPCClient) that manages the connection,
//     injects the access token on unary and streaming calls, and maps gRPC
//     status codes to sentinel errors.
//
// # Error Handling
//
// Callers match errors with errors.Is: ErrUnavailable, ErrUnauthorized,
// common.ErrorNotFound and common.ErrInvalidArgument.
//
// GRPCClient is safe for concurrent use. All operations honor context
// cancellation.
package client
