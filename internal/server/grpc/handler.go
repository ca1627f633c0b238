package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to gRPC codes. Internal details stay in the
// server log.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "account already exists")
	case errors.Is(err, common.ErrorInvalidCredentials):
		return status.Error(codes.Unauthenticated, common.ErrorInvalidCredentials.Error())
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.PermissionDenied, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) currentUser(ctx context.Context) (string, error) {
	id, ok := userIDFrom(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return id, nil
}

func (s *GRPCServer) fail(ctx context.Context, op string, err error) error {
	st := toStatus(err)
	if status.Code(st) == codes.Internal {
		s.logger.Error(ctx, op+" failed", "error", err)
	}
	return st
}

func tokens(accessToken, refreshToken string) *rpc.TokenPair {
	return &rpc.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}
}

func (s *GRPCServer) Ping(ctx context.Context, _ *rpc.Empty) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *rpc.SignUpRequest) (*rpc.TokenPair, error) {
	pair, err := s.users.SignUp(ctx, req.Email, req.Password, models.Profile{
		FirstName: req.Profile.FirstName,
		LastName:  req.Profile.LastName,
		Phone:     req.Profile.Phone,
	})
	if err != nil {
		return nil, s.fail(ctx, "sign up", err)
	}
	s.logger.Info(ctx, "Registered", "email", req.Email)
	return tokens(pair.AccessToken, pair.RefreshToken), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *rpc.SignInRequest) (*rpc.TokenPair, error) {
	pair, err := s.users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.fail(ctx, "sign in", err)
	}
	return tokens(pair.AccessToken, pair.RefreshToken), nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *rpc.RefreshRequest) (*rpc.TokenPair, error) {
	pair, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.fail(ctx, "refresh", err)
	}
	return tokens(pair.AccessToken, pair.RefreshToken), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *rpc.RefreshRequest) (*rpc.Empty, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.users.SignOut(ctx, userID, req.RefreshToken); err != nil {
		return nil, s.fail(ctx, "sign out", err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) Profile(ctx context.Context, _ *rpc.Empty) (*rpc.Profile, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	user, profile, err := s.users.Profile(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "profile", err)
	}
	return &rpc.Profile{
		UserID:       user.ID,
		Email:        user.Email,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Phone:        profile.Phone,
		IsAdmin:      user.IsAdmin,
		IsSuperAdmin: user.IsSuperAdmin,
	}, nil
}

func (s *GRPCServer) Select(ctx context.Context, req *rpc.SelectRequest) (*rpc.SelectResponse, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows.Select(ctx, userID, req.Query)
	if err != nil {
		return nil, s.fail(ctx, "select", err)
	}
	return &rpc.SelectResponse{Rows: rows}, nil
}

func (s *GRPCServer) Insert(ctx context.Context, req *rpc.InsertRequest) (*rpc.Empty, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.rows.Insert(ctx, userID, req.Table, req.Row); err != nil {
		return nil, s.fail(ctx, "insert", err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) Update(ctx context.Context, req *rpc.UpdateRequest) (*rpc.AffectedResponse, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.rows.Update(ctx, userID, req.Table, req.Values, req.Where)
	if err != nil {
		return nil, s.fail(ctx, "update", err)
	}
	return &rpc.AffectedResponse{Affected: n}, nil
}

func (s *GRPCServer) Delete(ctx context.Context, req *rpc.DeleteRequest) (*rpc.AffectedResponse, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.rows.Delete(ctx, userID, req.Table, req.Where)
	if err != nil {
		return nil, s.fail(ctx, "delete", err)
	}
	return &rpc.AffectedResponse{Affected: n}, nil
}

func (s *GRPCServer) PresignUpload(ctx context.Context, req *rpc.PresignUploadRequest) (*rpc.PresignUploadResponse, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	target, err := s.storage.PresignUpload(ctx, userID, req.FileName, req.ContentType)
	if err != nil {
		return nil, s.fail(ctx, "presign upload", err)
	}
	return &rpc.PresignUploadResponse{Key: target.Key, UploadURL: target.UploadURL, PublicURL: target.PublicURL}, nil
}
