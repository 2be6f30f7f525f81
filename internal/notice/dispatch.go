package notice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ebisawa/chatrelic/internal/ident"
	"github.com/ebisawa/chatrelic/internal/ingest"
)

// Recaller reconciles the archive after a message retraction.
// Implemented by recall.Reconciler.
type Recaller interface {
	Reconcile(ctx context.Context, n GroupRecall, operatorName, userName string) error
}

// Responder produces the bot's reply text when a member pokes it.
// Returning empty text means stay silent.
type Responder interface {
	Respond(ctx context.Context, channelID, userID int64, action string) (string, error)
}

// pokeAction is what the poking member did, from the bot's point of view.
const pokeAction = "戳了戳你"

// Dispatcher routes decoded notices to their handlers.
type Dispatcher struct {
	botID     int64
	names     ingest.NameResolver
	announcer *Announcer
	recaller  Recaller
	responder Responder
	tokens    ident.Generator
	logger    *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithResponder sets the poke responder. Without one, pokes are ignored.
func WithResponder(r Responder) DispatcherOption {
	return func(d *Dispatcher) { d.responder = r }
}

// WithTokenSource sets the event token generator.
func WithTokenSource(g ident.Generator) DispatcherOption {
	return func(d *Dispatcher) { d.tokens = g }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher creates a Dispatcher. botID is the bot's own account id,
// used to tell pokes at the bot from pokes at anyone else.
func NewDispatcher(botID int64, names ingest.NameResolver, announcer *Announcer, recaller Recaller, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		botID:     botID,
		names:     names,
		announcer: announcer,
		recaller:  recaller,
		tokens:    ident.UUIDv7Generator{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch decodes raw and routes it. An undecodable notice is dropped
// with an error log and a nil return; only recall reconciliation failures
// propagate.
//
// The type switch is exhaustive over the Notice implementations so a new
// variant must be routed here before it compiles into the system.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte) error {
	n, err := Decode(raw)
	if err != nil {
		d.logger.Error("drop undecodable notice", "error", err)
		return nil
	}

	log := d.logger.With("event", d.tokens.Generate())
	log.Debug("notice received", "notice", fmt.Sprintf("%T", n))

	switch n := n.(type) {
	case GroupUpload:
		// acknowledged, nothing to announce
	case FriendAdd:
		// acknowledged, nothing to announce
	case GroupAdmin:
		d.announcer.Admin(ctx, n)
	case GroupDecrease:
		d.announcer.Decrease(ctx, n)
	case GroupIncrease:
		d.announcer.Increase(ctx, n)
	case GroupBan:
		d.announcer.Ban(ctx, n)
	case Honor:
		d.announcer.Honor(ctx, n)
	case GroupRecall:
		operatorName := d.names.Resolve(ctx, n.GroupID, n.OperatorID)
		userName := d.names.Resolve(ctx, n.GroupID, n.UserID)
		if err := d.recaller.Reconcile(ctx, n, operatorName, userName); err != nil {
			return fmt.Errorf("dispatch recall: %w", err)
		}
	case Poke:
		d.poke(ctx, log, n)
	}
	return nil
}

// poke answers a poke aimed at the bot. Responder failures are logged and
// the poke is dropped; there is no reply retry.
func (d *Dispatcher) poke(ctx context.Context, log *slog.Logger, n Poke) {
	if n.TargetID != d.botID || d.responder == nil {
		return
	}
	text, err := d.responder.Respond(ctx, n.GroupID, n.UserID, pokeAction)
	if err != nil {
		log.Error("poke responder", "group", n.GroupID, "error", err)
		return
	}
	if text == "" {
		return
	}
	d.announcer.Send(ctx, n.GroupID, text)
}
