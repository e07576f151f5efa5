package interaction

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oggyb/muzz-social/internal/auth"
	svcErr "github.com/oggyb/muzz-social/internal/errors"
)

// AuthInterceptor verifies the `authorization: Bearer <token>` metadata on
// every InteractionService call and puts the identity on the context.
// Other services on the same server pass through untouched.
func AuthInterceptor(authn *auth.Authenticator) grpc.UnaryServerInterceptor {
	prefix := "/" + ServiceName + "/"
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !strings.HasPrefix(info.FullMethod, prefix) {
			return handler(ctx, req)
		}
		id, err := authn.Verify(bearer(ctx))
		if err != nil {
			return nil, svcErr.Map(err)
		}
		return handler(auth.WithIdentity(ctx, id), req)
	}
}

func bearer(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get("authorization") {
		if strings.HasPrefix(v, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(v, "Bearer "))
		}
	}
	return ""
}

// caller returns the authenticated identity.
func caller(ctx context.Context) (uint64, error) {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return 0, status.Error(codes.Unauthenticated, "missing credentials")
	}
	return id, nil
}

// actor returns the authenticated identity acting in req. field may repeat
// it; a different id there is refused.
func actor(ctx context.Context, req *structpb.Struct, field string) (uint64, error) {
	self, err := caller(ctx)
	if err != nil {
		return 0, err
	}
	if _, ok := req.GetFields()[field]; !ok {
		return self, nil
	}
	claimed, err := id(req, field)
	if err != nil {
		return 0, err
	}
	if claimed != self {
		return 0, status.Error(codes.PermissionDenied, field+" does not match the authenticated user")
	}
	return self, nil
}
