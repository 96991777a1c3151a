package cache

import (
	"context"

	"github.com/samber/mo"

	"focal/internal/model"
)

// AgendaCache keeps computed day agendas per user.
// day is the calendar day key (YYYY-MM-DD). Invalidate drops every cached day of the user
// and moves its generation forward. Callers read Generation before loading the data an
// agenda is built from and pass it to Store; a store for an older generation never
// becomes visible.
type AgendaCache interface {
	Generation(ctx context.Context, userID uint) (int64, error)
	Load(ctx context.Context, userID uint, day string) (mo.Option[model.Agenda], error)
	Store(ctx context.Context, userID uint, generation int64, day string, agenda model.Agenda) error
	Invalidate(ctx context.Context, userID uint) error
}

// Noop never holds anything.
type Noop struct{}

func (Noop) Load(context.Context, uint, string) (mo.Option[model.Agenda], error) {
	return mo.None[model.Agenda](), nil
}

func (Noop) Generation(context.Context, uint) (int64, error) { return 0, nil }

func (Noop) Store(context.Context, uint, int64, string, model.Agenda) error { return nil }

func (Noop) Invalidate(context.Context, uint) error { return nil }
