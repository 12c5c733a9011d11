package broker

import (
	"context"

	"fieldtel/pkg/telemetry"
)

type Producer interface {
	Publish(ctx context.Context, topic string, msg *telemetry.Message) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}

type HandlerFunc func(ctx context.Context, msg *telemetry.Message) error
