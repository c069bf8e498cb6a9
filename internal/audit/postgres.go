package audit

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Postgres driver
	"github.com/sirupsen/logrus"
)

const schema = `
create table if not exists audit_event(
  id bigserial primary key,
  kind text not null,
  guild_id text,
  actor_id text,
  subject text,
  detail text,
  time timestamptz not null default now()
)
`

// Postgres stores events in audit_event table
type Postgres struct {
	connect *sqlx.DB
	save    *sqlx.Stmt
	log     *logrus.Logger
}

// NewPostgres connects to database, creates table and prepares statements
func NewPostgres(dsn string, log *logrus.Logger) (*Postgres, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(schema)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	saveStmt, err := db.Preparex(`
insert into audit_event(
  kind,
  guild_id,
  actor_id,
  subject,
  detail,
  time
) values (
  $1,
  $2,
  $3,
  $4,
  $5,
  $6
)
`)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Postgres{
		connect: db,
		save:    saveStmt,
		log:     log,
	}, nil
}

// Record implementation
func (p *Postgres) Record(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	_, err := p.save.Exec(
		event.Kind,
		event.GuildID,
		event.ActorID,
		event.Subject,
		event.Detail,
		event.Time,
	)
	if err != nil {
		p.log.WithError(err).WithField("kind", event.Kind).Error("Saving audit event")
	}
}

// Close closes database connection
func (p *Postgres) Close() error {
	return p.connect.Close()
}
