// Package grpc serves the journal API over gRPC: authentication, the
// user-scoped row store and attachment upload targets.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/rowstore"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/dmitrijs2005/gophjournal/internal/server/services"
	"google.golang.org/grpc"
)

type UserService interface {
	SignUp(ctx context.Context, email, password string, profile models.Profile) (*services.TokenPair, error)
	SignIn(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	SignOut(ctx context.Context, userID, refreshToken string) error
	Profile(ctx context.Context, userID string) (*models.User, *models.Profile, error)
}

type RowService interface {
	Select(ctx context.Context, userID string, q rowstore.Query) ([]rowstore.Row, error)
	Insert(ctx context.Context, userID, table string, row rowstore.Row) error
	Update(ctx context.Context, userID, table string, values rowstore.Row, where []rowstore.Predicate) (int64, error)
	Delete(ctx context.Context, userID, table string, where []rowstore.Predicate) (int64, error)
}

type StorageService interface {
	PresignUpload(ctx context.Context, userID, fileName, contentType string) (*services.UploadTarget, error)
}

type GRPCServer struct {
	address   string
	users     UserService
	rows      RowService
	storage   StorageService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us UserService, rs RowService, ss StorageService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		rows:      rs,
		storage:   ss,
		jwtSecret: []byte(secretKey),
	}
}

// newServer builds the grpc.Server with interceptors and the journal
// service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	srv.RegisterService(&ServiceDesc, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	return srv.Serve(listen)
}
