package config

var defaults = map[string]any{
	"base_url":   "http://localhost:5000",
	"log_level":  "warn",
	"log_format": "text",
	"timeout":    15,
	"rate_limit": 10.0,
	"rate_burst": 5,
	"output":     "table",

	"storage.type":        StorageSQLite,
	"storage.sqlite.path": "./data/cookies.db",

	"rbac.policy_file": "",

	"tracing.enabled":      false,
	"tracing.endpoint":     "localhost:4317",
	"tracing.sample_ratio": 1.0,

	"sandbox.addr":          "127.0.0.1:5000",
	"sandbox.secret":        "",
	"sandbox.token_ttl":     900, // 15 minutes
	"sandbox.allow_origins": []string{"http://localhost:5173", "http://127.0.0.1:5173"},
}

func Defaults() map[string]any {
	values := make(map[string]any)
	for k, v := range defaults {
		values[k] = v
	}
	return values
}
