package interaction

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "social.v1.InteractionService"

// Server is the contract of social.v1.InteractionService. Every method takes
// and returns a google.protobuf.Struct.
type Server interface {
	Like(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Unlike(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Visit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Block(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Notify(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListNotifications(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MarkNotificationsRead(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListMessages(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetReputation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPresence(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type method func(Server, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call method) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(Server), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(Server), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes social.v1.InteractionService for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		unary("Like", Server.Like),
		unary("Unlike", Server.Unlike),
		unary("Visit", Server.Visit),
		unary("Block", Server.Block),
		unary("Notify", Server.Notify),
		unary("ListNotifications", Server.ListNotifications),
		unary("MarkNotificationsRead", Server.MarkNotificationsRead),
		unary("ListMessages", Server.ListMessages),
		unary("GetReputation", Server.GetReputation),
		unary("GetPresence", Server.GetPresence),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "social/v1/interaction.proto",
}

// Client calls social.v1.InteractionService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method (e.g. "Like") with req.
func (c *Client) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
