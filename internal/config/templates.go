package config

import (
	"os"
	"path/filepath"
)

const configTemplate = `# TradePlan Configuration

[app]
# Tenant/application id. Separates this deployment's data from others
# sharing the same backing store.
id = "trade-plan-v0"
# Baseline account balance used for position sizing.
account_balance = 10000.0

[store]
# Document store backend: "memory", "sqlite" or "redis"
backend = "memory"
# SQLite database path (backend = "sqlite")
sqlite_path = ""
# Redis address (backend = "redis")
redis_addr = "localhost:6379"
redis_db = 0

[server]
# Address for the share/webhook server
addr = ":8080"
# Address for the live plan feed
stream_addr = ":8081"

[share]
# Public URL the share page links back to
app_url = "https://tradeplan.example.com"
# Fallback card image for plan-id embeds
static_image_url = "https://tradeplan.example.com/image.png"

[logging]
# Log level: debug, info, warn, error
level = "info"
# Write rotated log files under the config directory
file = true
`

func writeTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return os.WriteFile(path, []byte(configTemplate), 0644)
}
