package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// JournalService is the handler set registered under rpc.ServiceName.
type JournalService interface {
	Ping(context.Context, *rpc.Empty) (*rpc.PingResponse, error)
	SignUp(context.Context, *rpc.SignUpRequest) (*rpc.TokenPair, error)
	SignIn(context.Context, *rpc.SignInRequest) (*rpc.TokenPair, error)
	Refresh(context.Context, *rpc.RefreshRequest) (*rpc.TokenPair, error)
	SignOut(context.Context, *rpc.RefreshRequest) (*rpc.Empty, error)
	Profile(context.Context, *rpc.Empty) (*rpc.Profile, error)
	Select(context.Context, *rpc.SelectRequest) (*rpc.SelectResponse, error)
	Insert(context.Context, *rpc.InsertRequest) (*rpc.Empty, error)
	Update(context.Context, *rpc.UpdateRequest) (*rpc.AffectedResponse, error)
	Delete(context.Context, *rpc.DeleteRequest) (*rpc.AffectedResponse, error)
	PresignUpload(context.Context, *rpc.PresignUploadRequest) (*rpc.PresignUploadResponse, error)
}

// unary adapts a typed handler to the Struct-in/Struct-out wire shape.
func unary[Req, Resp any](name string, call func(JournalService, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}

			handle := func(ctx context.Context, req any) (any, error) {
				r := new(Req)
				if err := rpc.Decode(req.(*structpb.Struct), r); err != nil {
					return nil, status.Error(codes.InvalidArgument, err.Error())
				}
				resp, err := call(srv.(JournalService), ctx, r)
				if err != nil {
					return nil, err
				}
				out, err := rpc.Encode(resp)
				if err != nil {
					return nil, status.Error(codes.Internal, err.Error())
				}
				return out, nil
			}

			if interceptor == nil {
				return handle(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: rpc.FullMethod(name)}
			return interceptor(ctx, in, info, handle)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: rpc.ServiceName,
	HandlerType: (*JournalService)(nil),
	Methods: []grpc.MethodDesc{
		unary(rpc.MethodPing, JournalService.Ping),
		unary(rpc.MethodSignUp, JournalService.SignUp),
		unary(rpc.MethodSignIn, JournalService.SignIn),
		unary(rpc.MethodRefresh, JournalService.Refresh),
		unary(rpc.MethodSignOut, JournalService.SignOut),
		unary(rpc.MethodProfile, JournalService.Profile),
		unary(rpc.MethodSelect, JournalService.Select),
		unary(rpc.MethodInsert, JournalService.Insert),
		unary(rpc.MethodUpdate, JournalService.Update),
		unary(rpc.MethodDelete, JournalService.Delete),
		unary(rpc.MethodPresignUpload, JournalService.PresignUpload),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophjournal/v1/journal",
}
