package interaction

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oggyb/muzz-social/internal/app"
	svcErr "github.com/oggyb/muzz-social/internal/errors"
	"github.com/oggyb/muzz-social/internal/service/social"
)

// Service implements the Interaction gRPC API on top of the social engine.
// Ids travel as decimal strings; numeric JSON values are accepted too.
//
// The acting user is always the authenticated one (see AuthInterceptor).
// Payload fields naming the actor are optional and must agree with it.
type Service struct {
	appCtx *app.AppContext
	engine *social.Engine
}

func NewInteractionService(appCtx *app.AppContext, engine *social.Engine) *Service {
	return &Service{appCtx: appCtx, engine: engine}
}

// Like records actor_user_id liking target_user_id.
//
// Example:
//
//	svc.Like(ctx, {"target_user_id": "2"}) // as user 1
//	// {"matched": true, "already_liked": false}
func (s *Service) Like(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, target, err := actorAndTarget(ctx, req, "actor_user_id", "target_user_id")
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("Like called", "actor", actor, "target", target)

	res, err := s.engine.Like(ctx, actor, target)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return reply(map[string]any{"matched": res.Matched, "already_liked": res.AlreadyLiked})
}

// Unlike removes actor_user_id's like on target_user_id.
func (s *Service) Unlike(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, target, err := actorAndTarget(ctx, req, "actor_user_id", "target_user_id")
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("Unlike called", "actor", actor, "target", target)

	res, err := s.engine.Unlike(ctx, actor, target)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return reply(map[string]any{"removed": res.Removed, "unmatched": res.Unmatched})
}

// Visit records viewer_user_id looking at owner_user_id's profile.
func (s *Service) Visit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	viewer, owner, err := actorAndTarget(ctx, req, "viewer_user_id", "owner_user_id")
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("Visit called", "viewer", viewer, "owner", owner)

	recorded, err := s.engine.Visit(ctx, viewer, owner)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return reply(map[string]any{"recorded": recorded})
}

// Block records actor_user_id blocking target_user_id.
func (s *Service) Block(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, target, err := actorAndTarget(ctx, req, "actor_user_id", "target_user_id")
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("Block called", "actor", actor, "target", target)

	severed, err := s.engine.Block(ctx, actor, target)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return reply(map[string]any{"severed_likes": severed})
}

// Notify pushes an already-persisted notification to its recipient if the
// recipient is connected. This is how other services hand notifications to
// live connections.
//
// Example:
//
//	svc.Notify(ctx, {"recipient_user_id": "2", "notification_id": "17"})
//	// {"delivered": true}
func (s *Service) Notify(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	recipient, id, err := pair(req, "recipient_user_id", "notification_id")
	if err != nil {
		return nil, err
	}
	delivered, err := s.engine.PushNotification(ctx, recipient, id)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return reply(map[string]any{"delivered": delivered})
}

// ListNotifications returns a page of recipient_user_id's notifications,
// newest first.
//
// Behavior:
//   - limit defaults to 20 and is capped at 100.
//   - Pass next_pagination_token back as pagination_token for the next page.
func (s *Service) ListNotifications(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	recipient, err := actor(ctx, req, "recipient_user_id")
	if err != nil {
		return nil, err
	}
	var token *string
	if v, ok := req.GetFields()["pagination_token"]; ok && v.GetStringValue() != "" {
		t := v.GetStringValue()
		token = &t
	}
	items, next, err := s.engine.ListNotifications(ctx, recipient, token, limit(req))
	if err != nil {
		return nil, svcErr.Map(err)
	}

	list := make([]any, 0, len(items))
	for _, n := range items {
		list = append(list, map[string]any{
			"id":             strconv.FormatUint(n.ID, 10),
			"type":           string(n.Type),
			"originator_id":  strconv.FormatUint(n.OriginatorID, 10),
			"is_read":        n.IsRead,
			"unix_timestamp": n.CreatedAt.UnixMilli(),
		})
	}
	out := map[string]any{"notifications": list}
	if next != nil {
		out["next_pagination_token"] = *next
	}

	s.appCtx.Logger.Debug("ListNotifications result", "recipient", recipient, "count", len(list))
	return reply(out)
}

// MarkNotificationsRead flips every unread notification of recipient_user_id.
func (s *Service) MarkNotificationsRead(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	recipient, err := actor(ctx, req, "recipient_user_id")
	if err != nil {
		return nil, err
	}
	n, err := s.engine.MarkNotificationsRead(ctx, recipient)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return reply(map[string]any{"updated": n})
}

// ListMessages returns the latest messages between the caller and
// counterpart_user_id, oldest first.
func (s *Service) ListMessages(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	reader, counterpart, err := actorAndTarget(ctx, req, "user_id", "counterpart_user_id")
	if err != nil {
		return nil, err
	}
	msgs, err := s.engine.Conversation(ctx, reader, counterpart, limit(req))
	if err != nil {
		return nil, svcErr.Map(err)
	}

	list := make([]any, 0, len(msgs))
	for _, m := range msgs {
		list = append(list, map[string]any{
			"id":             strconv.FormatUint(m.ID, 10),
			"sender_id":      strconv.FormatUint(m.SenderID, 10),
			"receiver_id":    strconv.FormatUint(m.ReceiverID, 10),
			"content":        m.Content,
			"is_read":        m.IsRead,
			"unix_timestamp": m.CreatedAt.UnixMilli(),
		})
	}
	return reply(map[string]any{"messages": list})
}

// GetReputation returns user_id's score, cache first.
func (s *Service) GetReputation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	user, err := id(req, "user_id")
	if err != nil {
		return nil, err
	}
	score, err := s.engine.Reputation().Current(ctx, user)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return reply(map[string]any{"user_id": strconv.FormatUint(user, 10), "score": score})
}

// GetPresence reports whether user_id is connected and when it was last seen.
func (s *Service) GetPresence(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	user, err := id(req, "user_id")
	if err != nil {
		return nil, err
	}
	p, err := s.engine.Presence(ctx, user)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	out := map[string]any{"user_id": strconv.FormatUint(user, 10), "online": p.Online}
	if p.LastSeen != nil {
		out["last_seen"] = p.LastSeen.UTC().Format(time.RFC3339)
	}
	return reply(out)
}

// id reads a positive id field given as a decimal string or a whole number.
func id(req *structpb.Struct, field string) (uint64, error) {
	v, ok := req.GetFields()[field]
	if !ok {
		return 0, svcErr.InvalidArgument(field + " is required")
	}
	var (
		n   uint64
		err error
	)
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		n, err = strconv.ParseUint(kind.StringValue, 10, 64)
	case *structpb.Value_NumberValue:
		f := kind.NumberValue
		if f != math.Trunc(f) || f < 0 || f > 1<<53 {
			err = fmt.Errorf("not a whole number")
		}
		n = uint64(f)
	default:
		err = fmt.Errorf("unsupported type")
	}
	if err != nil || n == 0 {
		return 0, svcErr.InvalidArgument(field + " must be a valid uint64")
	}
	return n, nil
}

func pair(req *structpb.Struct, first, second string) (uint64, uint64, error) {
	a, err := id(req, first)
	if err != nil {
		return 0, 0, err
	}
	b, err := id(req, second)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// actorAndTarget resolves the authenticated actor and the required target id.
func actorAndTarget(ctx context.Context, req *structpb.Struct, actorField, targetField string) (uint64, uint64, error) {
	self, err := actor(ctx, req, actorField)
	if err != nil {
		return 0, 0, err
	}
	target, err := id(req, targetField)
	if err != nil {
		return 0, 0, err
	}
	return self, target, nil
}

// limit reads the optional page size; the engine applies defaults and caps.
func limit(req *structpb.Struct) int {
	return int(req.GetFields()["limit"].GetNumberValue())
}

func reply(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return out, nil
}
