// Package client contains the client-side building blocks for GophJournal.
//
// # Overview
//
// The package provides:
//  1. The Client interface the CLI services depend on: the rowstore.Store
//     operations plus sign-up/sign-in/sign-out, profile lookup, presigned
//     attachment uploads and Ping.
//  2. GRPCClient, the gRPC implementation. It carries rpc messages as
//     protobuf Struct payloads, injects the access token via an interceptor,
//     transparently refreshes an expired token once per call, and maps gRPC
//     status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations,
//     NewRepositories) for the CLI's SQLite file with embedded goose migrations.
//
// # Error Handling
//
// Callers match the sentinels with errors.Is: ErrUnavailable, ErrUnauthorized,
// ErrInvalidCredentials, ErrAlreadyExists, ErrInvalidArgument, ErrNotFound.
//
// GRPCClient is safe for concurrent use. Concurrent calls that hit an expired
// token share a single refresh.
package client
