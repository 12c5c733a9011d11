package logging

import (
	"context"
)

const (
	MessageIDKey   = "message_id"
	SessionGUIDKey = "session_guid"
	ServiceNameKey = "service_name"
)

func WithMessageID(ctx context.Context, messageID string) context.Context {
	return context.WithValue(ctx, MessageIDKey, messageID)
}

func WithSessionGUID(ctx context.Context, sessionGUID string) context.Context {
	return context.WithValue(ctx, SessionGUIDKey, sessionGUID)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ServiceNameKey, serviceName)
}

func GetMessageID(ctx context.Context) string {
	if messageID, ok := ctx.Value(MessageIDKey).(string); ok {
		return messageID
	}
	return ""
}

func GetSessionGUID(ctx context.Context) string {
	if sessionGUID, ok := ctx.Value(SessionGUIDKey).(string); ok {
		return sessionGUID
	}
	return ""
}

func GetServiceName(ctx context.Context) string {
	if serviceName, ok := ctx.Value(ServiceNameKey).(string); ok {
		return serviceName
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 6)

	if messageID := GetMessageID(ctx); messageID != "" {
		fields = append(fields, "message_id", messageID)
	}

	if sessionGUID := GetSessionGUID(ctx); sessionGUID != "" {
		fields = append(fields, "session_guid", sessionGUID)
	}

	if serviceName := GetServiceName(ctx); serviceName != "" {
		fields = append(fields, "service_name", serviceName)
	}

	return fields
}
