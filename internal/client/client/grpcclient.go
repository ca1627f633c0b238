package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/rowstore"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type GRPCClient struct {
	endpointURL string
	conn        grpc.ClientConnInterface
	closer      func() error

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onTokens     func(access, refresh string)

	// serializes refreshes so a rotated refresh token is used only once
	refreshMu sync.Mutex
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	return st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	access, refresh := s.Tokens()

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) || refresh == "" || rpc.PublicMethods[method] {
		return err
	}

	fresh, rerr := s.refresh(ctx, access)
	if rerr != nil {
		return rerr
	}

	// TOKENS REFRESHED, retrying once with the new access token
	return invoker(withAccessToken(ctx, fresh), method, req, reply, cc, opts...)
}

// refresh exchanges the refresh token for a new pair unless another call
// already did so since stale was issued.
func (s *GRPCClient) refresh(ctx context.Context, stale string) (string, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	access, refresh := s.Tokens()
	if access != stale {
		return access, nil
	}

	var pair rpc.TokenPair
	if err := s.invoke(ctx, rpc.MethodRefresh, rpc.RefreshRequest{RefreshToken: refresh}, &pair); err != nil {
		return "", err
	}
	s.SetTokens(pair.AccessToken, pair.RefreshToken)
	return pair.AccessToken, nil
}

// NewGRPCClient dials endpointURL lazily; the connection is established on
// the first call.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient(opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.closer = conn.Close
	return nil
}

func (s *GRPCClient) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func (s *GRPCClient) Tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) SetTokens(access, refresh string) {
	s.mu.Lock()
	s.accessToken, s.refreshToken = access, refresh
	fn := s.onTokens
	s.mu.Unlock()

	if fn != nil {
		fn(access, refresh)
	}
}

func (s *GRPCClient) OnTokens(fn func(access, refresh string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTokens = fn
}

// invoke encodes in, calls method and decodes the reply into out.
func (s *GRPCClient) invoke(ctx context.Context, method string, in, out any) error {
	req, err := rpc.Encode(in)
	if err != nil {
		return err
	}

	resp := &structpb.Struct{}
	if err := s.conn.Invoke(ctx, rpc.FullMethod(method), req, resp); err != nil {
		return s.mapError(err)
	}

	if out == nil {
		return nil
	}
	return rpc.Decode(resp, out)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	var resp rpc.PingResponse
	if err := s.invoke(ctx, rpc.MethodPing, rpc.Empty{}, &resp); err != nil {
		return err
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) SignUp(ctx context.Context, email, password string, profile rpc.Profile) error {
	var pair rpc.TokenPair
	req := rpc.SignUpRequest{Email: email, Password: password, Profile: profile}
	if err := s.invoke(ctx, rpc.MethodSignUp, req, &pair); err != nil {
		return err
	}
	s.SetTokens(pair.AccessToken, pair.RefreshToken)
	return nil
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) error {
	var pair rpc.TokenPair
	req := rpc.SignInRequest{Email: email, Password: password}
	if err := s.invoke(ctx, rpc.MethodSignIn, req, &pair); err != nil {
		return err
	}
	s.SetTokens(pair.AccessToken, pair.RefreshToken)
	return nil
}

// SignOut revokes the refresh token and forgets both tokens. The local pair
// is dropped even when the server cannot be reached.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	_, refresh := s.Tokens()
	var err error
	if refresh != "" {
		err = s.invoke(ctx, rpc.MethodSignOut, rpc.RefreshRequest{RefreshToken: refresh}, nil)
	}
	s.SetTokens("", "")
	return err
}

func (s *GRPCClient) Profile(ctx context.Context) (*rpc.Profile, error) {
	var p rpc.Profile
	if err := s.invoke(ctx, rpc.MethodProfile, rpc.Empty{}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GRPCClient) PresignUpload(ctx context.Context, fileName, contentType string) (*rpc.PresignUploadResponse, error) {
	var resp rpc.PresignUploadResponse
	req := rpc.PresignUploadRequest{FileName: fileName, ContentType: contentType}
	if err := s.invoke(ctx, rpc.MethodPresignUpload, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) Select(ctx context.Context, q rowstore.Query) ([]rowstore.Row, error) {
	var resp rpc.SelectResponse
	if err := s.invoke(ctx, rpc.MethodSelect, rpc.SelectRequest{Query: q}, &resp); err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

func (s *GRPCClient) Insert(ctx context.Context, table string, row rowstore.Row) error {
	return s.invoke(ctx, rpc.MethodInsert, rpc.InsertRequest{Table: table, Row: row}, nil)
}

func (s *GRPCClient) Update(ctx context.Context, table string, values rowstore.Row, where ...rowstore.Predicate) (int64, error) {
	var resp rpc.AffectedResponse
	req := rpc.UpdateRequest{Table: table, Values: values, Where: where}
	if err := s.invoke(ctx, rpc.MethodUpdate, req, &resp); err != nil {
		return 0, err
	}
	return resp.Affected, nil
}

func (s *GRPCClient) Delete(ctx context.Context, table string, where ...rowstore.Predicate) (int64, error) {
	var resp rpc.AffectedResponse
	req := rpc.DeleteRequest{Table: table, Where: where}
	if err := s.invoke(ctx, rpc.MethodDelete, req, &resp); err != nil {
		return 0, err
	}
	return resp.Affected, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated:
		if st.Message() == common.ErrorInvalidCredentials.Error() {
			return ErrInvalidCredentials
		}
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
