// Package flume ships structured log events to a Graylog-compatible
// endpoint as GELF messages over UDP or TCP, without ever blocking or
// failing the producing call site.
//
// Quick start:
//
//	cfg := flume.DefaultConfig()
//	cfg.Server = "graylog.example.org"
//	cfg.Protocol = "TCP"
//
//	app := flume.New(cfg)
//	if err := app.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Stop()
//
//	app.Append(&flume.Event{
//	    Level:           flume.LevelInfo,
//	    Message:         "user logged in",
//	    TimestampMillis: time.Now().UnixMilli(),
//	    Context:         []flume.Field{{Key: "user", Value: "alice"}},
//	})
//
// Append builds the wire message and hands it to a bounded queue; a
// background worker owns the connection, reconnecting at a fixed delay
// when the endpoint is down. When the queue is full the newest message
// is dropped and counted (see Appender.Dropped) rather than blocking
// the producer. Delivery is best-effort, at-most-once.
//
// For log/slog integration, see NewHandler.
package flume
