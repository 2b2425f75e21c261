package service

import (
	"log/slog"
	"time"

	"github.com/phrazzld/agora-api/internal/i18n"
	"github.com/phrazzld/agora-api/internal/service/auth"
	"github.com/phrazzld/agora-api/internal/store"
)

// Deps are the collaborators shared by the resolvers.
type Deps struct {
	Users    store.UserStore
	Posts    store.PostStore
	Comments store.CommentStore

	Catalog   *i18n.Catalog
	Tokens    auth.JWTService
	Passwords auth.PasswordHasher

	// AllowPasswordlessLogin lets users without a stored hash log in by email.
	AllowPasswordlessLogin bool

	// Now is the clock for default timestamps; nil means time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d Deps) errs(component string) errs {
	return errs{catalog: d.catalog(), logger: d.logger(component)}
}

func (d Deps) catalog() *i18n.Catalog {
	if d.Catalog == nil {
		return i18n.MustDefault()
	}
	return d.Catalog
}

func (d Deps) logger(component string) *slog.Logger {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	return log.With(slog.String("component", component))
}
