package config

const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

type Storage struct {
	Type   string        `mapstructure:"type"`
	SQLite SQLiteStorage `mapstructure:"sqlite"`
}

type SQLiteStorage struct {
	Path string `mapstructure:"path"`
}
