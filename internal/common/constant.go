// Package common holds constants and sentinel errors shared by the
// GophJournal server, client transport and CLI.
package common

// AccessTokenHeaderName is the gRPC metadata key carrying the bearer access token.
const AccessTokenHeaderName = "access_token"

// AttachmentsPrefix is the object-storage key prefix for uploaded attachments.
const AttachmentsPrefix = "journal-attachments"

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6
