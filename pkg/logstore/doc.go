// Package logstore persists pipeline events into a relational logs table.
//
// Events flow in through a [Sink], get projected onto table columns by a
// [Mapper], and land in a [Store]. Two stores ship with the package:
// PostgreSQL over [github.com/jackc/pgx/v5/pgxpool] and an embedded
// SQLite file over [github.com/mattn/go-sqlite3]. A [Retention] sweeper
// deletes old rows on a cron schedule.
//
// # Mapping
//
// The mapper resolves each column by trying the column name, then its
// aliases, against the event and its "request" group, then dotted search
// paths against the event root. The defaults follow the access-log atom
// names, so access records map onto rows without configuration:
//
//	request_id     <- {x-request-id}i, request_id
//	method         <- m
//	protocol       <- H
//	path           <- R
//	client_address <- client_addr
//	status_code    <- s
//	session        <- request.session
//
// Hosts extend the rules from YAML with [RulesFromYAML] and
// [Rules.Merge], restrict storage to selected loggers with the
// allowlist, and post-process single columns with [WithKeyHandler].
// Stored values are password-masked regardless of the pipeline's own
// processor setup.
//
// # Configuration
//
// Connection settings load from environment variables:
//
//	LOGSTORE_DATABASE_URL         - PostgreSQL connection URL
//	LOGSTORE_MAX_OPEN_CONNS       - Pool size (default: 4)
//	LOGSTORE_SQLITE_PATH          - SQLite database file
//	LOGSTORE_TTL_DAYS             - Retention period (default: 90)
//	LOGSTORE_RETENTION_SCHEDULE   - Cron expression (default: @daily)
//
// # Usage
//
//	store, err := logstore.ConnectPostgres(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := logstore.MigratePostgres(ctx, store.Pool(), log); err != nil {
//		return err
//	}
//
//	sink := logstore.NewSink(store, logstore.NewMapper(logstore.DefaultRules()))
//
// The sink plugs into the logging pipeline behind its async queue; one
// insert per admitted event, skipped events cost nothing.
package logstore
