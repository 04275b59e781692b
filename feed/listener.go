package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PgListener bridges Postgres NOTIFY into the in-process hub so mutations
// issued by other server instances invalidate this one too. Locally issued
// mutations notify the hub directly as well; subscribers may therefore see
// the same change twice, which the refetch contract absorbs.
type PgListener struct {
	dsn         string
	collections []string
	hub         *Hub
	logger      zerolog.Logger
}

func NewPgListener(dsn string, hub *Hub, collections ...string) *PgListener {
	return &PgListener{
		dsn:         dsn,
		collections: collections,
		hub:         hub,
		logger:      log.With().Str("component", "pgListener").Logger(),
	}
}

// Run listens until ctx is canceled, reconnecting with backoff after
// connection loss.
func (l *PgListener) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("change feed connection lost")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (l *PgListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("connect for LISTEN: %w", err)
	}
	defer conn.Close(context.Background())

	for _, collection := range l.collections {
		if _, err := conn.Exec(ctx, fmt.Sprintf(`LISTEN %s`, pgx.Identifier{collection}.Sanitize())); err != nil {
			return fmt.Errorf("listen on %s: %w", collection, err)
		}
	}
	l.logger.Info().Strs("collections", l.collections).Msg("listening for change notifications")

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.hub.Notify(notification.Channel)
	}
}
