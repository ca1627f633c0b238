package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"github.com/dmitrijs2005/gophjournal/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestServer() *GRPCServer {
	return NewGRPCServer("", nopLogger{}, nil, nil, nil, testSecret)
}

func withToken(tok string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, tok))
}

func TestInterceptor_PublicMethodsSkipAuth(t *testing.T) {
	s := newTestServer()

	for method := range rpc.PublicMethods {
		called := false
		h := func(ctx context.Context, req any) (any, error) {
			called = true
			return "ok", nil
		}
		resp, err := s.accessTokenInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: method}, h)
		require.NoError(t, err, method)
		assert.True(t, called, method)
		assert.Equal(t, "ok", resp)
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.MethodSelect)}

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_ExpiredTokenSignalsRefresh(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.MethodSelect)}

	tok, err := auth.GenerateToken("u1", "", []byte(testSecret), -time.Second)
	require.NoError(t, err)

	_, err = s.accessTokenInterceptor(withToken(tok), nil, info, func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	})
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Unauthenticated, st.Code())
	assert.Equal(t, common.ErrTokenExpired.Error(), st.Message())
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.MethodInsert)}

	tok, err := auth.GenerateToken("u1", "", []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	_, err = s.accessTokenInterceptor(withToken(tok), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, nil
	})
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Unauthenticated, st.Code())
	assert.Equal(t, common.ErrInvalidToken.Error(), st.Message())
}

func TestInterceptor_ValidTokenCarriesUser(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.MethodProfile)}

	tok, err := auth.GenerateToken("u42", "", []byte(testSecret), time.Hour)
	require.NoError(t, err)

	var got string
	_, err = s.accessTokenInterceptor(withToken(tok), nil, info, func(ctx context.Context, req any) (any, error) {
		got, _ = userIDFrom(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u42", got)
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.MethodPing)}
	boom := status.Error(codes.Internal, "boom")

	resp, err := s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return "x", boom
	})
	assert.Equal(t, "x", resp)
	assert.Equal(t, boom, err)
}
