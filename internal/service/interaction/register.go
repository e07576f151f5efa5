package interaction

import (
	"google.golang.org/grpc"

	"github.com/oggyb/muzz-social/internal/app"
	"github.com/oggyb/muzz-social/internal/service/social"
)

// Registrar ties the Interaction service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
	engine *social.Engine
}

// NewRegistrar creates a new Registrar for the Interaction service
func NewRegistrar(appCtx *app.AppContext, engine *social.Engine) *Registrar {
	return &Registrar{appCtx: appCtx, engine: engine}
}

// Register attaches the Interaction service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	s.RegisterService(&ServiceDesc, NewInteractionService(r.appCtx, r.engine))
}
