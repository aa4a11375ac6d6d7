package main

import (
	"context"
	"os"
	"strconv"
	"strings"
)

// envConfigLoader maps FLEET_ALERTS_* environment variables onto the nested
// configuration tree consumed by cfgx. Unset or blank variables fall through
// to the defaults.
type envConfigLoader struct{}

var envBindings = map[string]string{
	"FLEET_ALERTS_SERVICE_NAME":              "service_name",
	"FLEET_ALERTS_SERVER_ADDR":               "server.addr",
	"FLEET_ALERTS_WEBHOOK_SECRET":            "webhook.secret",
	"FLEET_ALERTS_STORAGE_DRIVER":            "storage.driver",
	"FLEET_ALERTS_STORAGE_DSN":               "storage.dsn",
	"FLEET_ALERTS_TELEGRAM_BOT_TOKEN":        "telegram.bot_token",
	"FLEET_ALERTS_TELEGRAM_CHAT_ID":          "telegram.chat_id",
	"FLEET_ALERTS_DASHBOARD_USERNAME":        "dashboard.username",
	"FLEET_ALERTS_DASHBOARD_PASSWORD":        "dashboard.password",
	"FLEET_ALERTS_DIRECTORY_BASE_URL":        "directory.base_url",
	"FLEET_ALERTS_DIRECTORY_API_KEY":         "directory.api_key",
	"FLEET_ALERTS_DIRECTORY_REQUEST_TIMEOUT": "directory.request_timeout",
}

func (envConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	raw := map[string]any{}
	for env, key := range envBindings {
		value, ok := os.LookupEnv(env)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		setNested(raw, key, coerceValue(key, strings.TrimSpace(value)))
	}
	return raw, nil
}

func coerceValue(key string, value string) any {
	if key == "telegram.chat_id" {
		if id, err := strconv.ParseInt(value, 10, 64); err == nil {
			return id
		}
	}
	return value
}

func setNested(raw map[string]any, dotted string, value any) {
	parts := strings.Split(dotted, ".")
	node := raw
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[part] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = value
}
