// Package rpc defines the GophJournal gRPC contract shared by server and
// client: the service and method names, the message shapes, and the codec
// that carries them as google.protobuf.Struct payloads.
//
// Every method takes and returns a *structpb.Struct, so the stock protobuf
// codec of grpc-go transports the messages and no generated stubs are needed.
package rpc

import (
	"github.com/dmitrijs2005/gophjournal/internal/rowstore"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "gophjournal.v1.Journal"

// Method names.
const (
	MethodPing          = "Ping"
	MethodSignUp        = "SignUp"
	MethodSignIn        = "SignIn"
	MethodRefresh       = "Refresh"
	MethodSignOut       = "SignOut"
	MethodProfile       = "Profile"
	MethodSelect        = "Select"
	MethodInsert        = "Insert"
	MethodUpdate        = "Update"
	MethodDelete        = "Delete"
	MethodPresignUpload = "PresignUpload"
)

// FullMethod returns the "/service/method" path used on the wire.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// PublicMethods lists the methods callable without an access token.
var PublicMethods = map[string]bool{
	FullMethod(MethodPing):    true,
	FullMethod(MethodSignUp):  true,
	FullMethod(MethodSignIn):  true,
	FullMethod(MethodRefresh): true,
}

type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// Profile is the public part of an account.
type Profile struct {
	UserID       string `json:"user_id,omitempty"`
	Email        string `json:"email,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
	IsSuperAdmin bool   `json:"is_super_admin,omitempty"`
}

type SignUpRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Profile  Profile `json:"profile"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SelectRequest struct {
	Query rowstore.Query `json:"query"`
}

type SelectResponse struct {
	Rows []rowstore.Row `json:"rows"`
}

type InsertRequest struct {
	Table string       `json:"table"`
	Row   rowstore.Row `json:"row"`
}

type UpdateRequest struct {
	Table  string               `json:"table"`
	Values rowstore.Row         `json:"values"`
	Where  []rowstore.Predicate `json:"where"`
}

type DeleteRequest struct {
	Table string               `json:"table"`
	Where []rowstore.Predicate `json:"where"`
}

type AffectedResponse struct {
	Affected int64 `json:"affected"`
}

type PresignUploadRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

type PresignUploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
}
