// Package social is the event propagation engine: it gates, persists and
// fans out every social interaction between two identities.
package social

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-social/internal/app"
	"github.com/oggyb/muzz-social/internal/events"
	"github.com/oggyb/muzz-social/internal/fanout"
	"github.com/oggyb/muzz-social/internal/gate"
	"github.com/oggyb/muzz-social/internal/keylock"
	"github.com/oggyb/muzz-social/internal/presence"
	"github.com/oggyb/muzz-social/internal/repository"
	"github.com/oggyb/muzz-social/internal/reputation"
)

// ProfileChecker answers whether an identity has a profile picture.
type ProfileChecker interface {
	HasProfileImage(ctx context.Context, id uint64) (bool, error)
}

// Session is the acting identity plus, when the action arrived over a live
// connection, that connection. Conn is nil for calls from other services.
type Session struct {
	UserID uint64
	Conn   presence.Conn
}

// reply sends ev back to the acting connection, if there is one.
func (s Session) reply(ev events.Event) {
	if s.Conn != nil {
		s.Conn.Deliver(ev)
	}
}

// Engine orchestrates persistence, derived state and fan-out.
type Engine struct {
	db       *gorm.DB
	rel      *repository.RelationshipRepository
	msgs     *repository.MessageRepository
	users    *repository.UserRepository
	notifs   *repository.NotificationRepository
	gate     *gate.Gate
	reg      *presence.Registry
	notifier *fanout.Notifier
	rep      *reputation.Updater
	profiles ProfileChecker
	policy   FailurePolicy
	locks    *pairLocks
	sessions *keylock.Locks[uint64]
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*Engine)

// WithProfileChecker replaces the default users-table picture check.
func WithProfileChecker(p ProfileChecker) Option {
	return func(e *Engine) { e.profiles = p }
}

// WithFailurePolicy replaces the default persistence failure handling.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithClock overrides time.Now for last-seen stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine wires the engine from shared dependencies.
func NewEngine(appCtx *app.AppContext, opts ...Option) *Engine {
	rel := repository.NewRelationshipRepository(appCtx.DB)
	users := repository.NewUserRepository(appCtx.DB)
	notifs := repository.NewNotificationRepository(appCtx.DB)
	log := appCtx.Logger

	e := &Engine{
		db:       appCtx.DB,
		rel:      rel,
		msgs:     repository.NewMessageRepository(appCtx.DB),
		users:    users,
		notifs:   notifs,
		gate:     gate.New(rel),
		reg:      appCtx.Registry,
		notifier: fanout.NewNotifier(notifs, appCtx.Registry, log),
		rep:      reputation.NewUpdater(rel, users, appCtx.RedisCache, log),
		profiles: users,
		locks:    newPairLocks(),
		sessions: keylock.New[uint64](),
		log:      log,
		now:      time.Now,
	}
	e.policy = ActorOnly(log)

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reputation exposes the reputation updater for read paths.
func (e *Engine) Reputation() *reputation.Updater { return e.rep }

// storeCtx detaches store work from the caller's cancellation so an action
// accepted before a connection closed still completes.
func storeCtx(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// recompute refreshes id's score. The triggering action is already committed,
// so a failure is logged and picked up by the next recompute.
func (e *Engine) recompute(ctx context.Context, id uint64) {
	if _, err := e.rep.Recompute(ctx, id); err != nil {
		e.log.Error("reputation recompute failed", "user", id, "err", err)
	}
}
