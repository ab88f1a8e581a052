package config

import "time"

// Config is the root configuration for a relay instance.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Connections ConnectionsConfig `yaml:"connections"`
	History     HistoryConfig     `yaml:"history"`
	Database    DBConfig          `yaml:"database"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ConnectionsConfig holds per-connection transport settings.
type ConnectionsConfig struct {
	SendBufferSize  int           `yaml:"send_buffer_size"`
	EventBufferSize int           `yaml:"event_buffer_size"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	PingInterval    time.Duration `yaml:"ping_interval"`
	PongTimeout     time.Duration `yaml:"pong_timeout"`
	MaxMessageSize  int64         `yaml:"max_message_size"`
}

// HistoryConfig holds message retention settings.
type HistoryConfig struct {
	Backend       string        `yaml:"backend"` // "memory", "postgres", or "none"
	Capacity      int           `yaml:"capacity"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// DBConfig holds the history database connection. Only consulted when
// history.backend is "postgres".
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}
