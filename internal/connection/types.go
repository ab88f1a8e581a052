package connection

import "time"

// Config configures the Hub and per-connection transport behavior.
type Config struct {
	SendBufferSize  int           // Outbound frame queue per connection
	EventBufferSize int           // Shared inbound event channel capacity
	WriteTimeout    time.Duration // Write deadline for outbound frames
	PingInterval    time.Duration // Interval between keepalive pings
	PongTimeout     time.Duration // Max silence before the read deadline trips
	MaxMessageSize  int64         // Inbound frame size limit in bytes
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SendBufferSize:  64,
		EventBufferSize: 1024,
		WriteTimeout:    5 * time.Second,
		PingInterval:    15 * time.Second,
		PongTimeout:     60 * time.Second,
		MaxMessageSize:  32 * 1024,
	}
}
