package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultHTTPTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixSeen = "seq:"
)

const (
	DefaultInputTopic  = "inbound_message_queue"
	DefaultOutputTopic = "outbound_message_queue"
	DefaultGroupID     = "fieldtel-ingest"
)

const (
	DefaultMongoDBName    = "fieldtel"
	MessagesCollection    = "messages"
	DefaultMigrationsPath = "migrations/postgres"
)

const (
	ShutdownTimeout = 5 * time.Second
	RelayDrainWait  = 10 * time.Second
)

const (
	DefaultSeenCacheTTLSeconds = 86400
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)
