// Package logstream ships pipeline events onto a capped Redis list for
// live tailing.
//
// The sink RPUSHes one JSON line per event and LTRIMs the list back to
// a fixed cap, so the list is always the most recent N entries. It is a
// tail, not a queue: there is no consumer tracking, no acknowledgement,
// and entries past the cap are dropped. External consumers read with
// LRANGE or BLPOP at their own pace and on their own terms.
//
// # Configuration
//
// Connection settings load from environment variables:
//
//	LOGSTREAM_REDIS_URL   - Redis connection URL (redis:// or rediss://)
//	LOGSTREAM_KEY         - List key (default: logs)
//	LOGSTREAM_MAX_LEN     - List cap (default: 10000)
//
// # Usage
//
//	sink, err := logstream.Open(ctx, cfg)
//	if err != nil {
//		return err
//	}
//
// The sink plugs into the logging pipeline; put it behind an async
// queue so a slow Redis never stalls request handling. Hosts that
// already hold a client can share it with NewSink, which leaves the
// client lifecycle to the caller.
package logstream
