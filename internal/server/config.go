package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pandapool/internal/ident"
	"github.com/lox/pandapool/internal/room"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings
	Rooms  RoomSettings
}

// configFile mirrors ServerConfig with optional blocks for decoding.
type configFile struct {
	Server *ServerSettings `hcl:"server,block"`
	Rooms  *RoomSettings   `hcl:"rooms,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// RoomSettings controls room allocation and expiry. Durations are Go
// duration strings such as "30m".
type RoomSettings struct {
	CodeLength      int    `hcl:"code_length,optional"`
	TokenLength     int    `hcl:"token_length,optional"`
	TTL             string `hcl:"ttl,optional"`
	SweepInterval   string `hcl:"sweep_interval,optional"`
	MaxCodeAttempts int    `hcl:"max_code_attempts,optional"`
	RoomName        string `hcl:"room_name,optional"`
	PlayerName      string `hcl:"player_name,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Rooms: RoomSettings{
			CodeLength:      ident.DefaultCodeLength,
			TokenLength:     ident.DefaultTokenLength,
			TTL:             room.DefaultRoomTTL.String(),
			SweepInterval:   room.DefaultSweepInterval.String(),
			MaxCodeAttempts: room.DefaultMaxCodeAttempts,
			RoomName:        room.DefaultRoomName,
			PlayerName:      room.DefaultPlayerName,
		},
	}
}

// LoadServerConfig loads server configuration from HCL file. A missing file
// yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	src, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseServerConfig(src, filename)
}

// ParseServerConfig decodes HCL source and fills in defaults.
func ParseServerConfig(src []byte, filename string) (*ServerConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw configFile
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := DefaultServerConfig()
	if s := raw.Server; s != nil {
		if s.Address != "" {
			config.Server.Address = s.Address
		}
		if s.Port != 0 {
			config.Server.Port = s.Port
		}
		if s.LogLevel != "" {
			config.Server.LogLevel = s.LogLevel
		}
	}
	if r := raw.Rooms; r != nil {
		if r.CodeLength != 0 {
			config.Rooms.CodeLength = r.CodeLength
		}
		if r.TokenLength != 0 {
			config.Rooms.TokenLength = r.TokenLength
		}
		if r.TTL != "" {
			config.Rooms.TTL = r.TTL
		}
		if r.SweepInterval != "" {
			config.Rooms.SweepInterval = r.SweepInterval
		}
		if r.MaxCodeAttempts != 0 {
			config.Rooms.MaxCodeAttempts = r.MaxCodeAttempts
		}
		if r.RoomName != "" {
			config.Rooms.RoomName = r.RoomName
		}
		if r.PlayerName != "" {
			config.Rooms.PlayerName = r.PlayerName
		}
	}

	return config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Server.LogLevel)
	}

	if c.Rooms.CodeLength < 4 {
		return fmt.Errorf("rooms: code_length must be at least 4, got %d", c.Rooms.CodeLength)
	}
	if c.Rooms.TokenLength < ident.MinTokenLength {
		return fmt.Errorf("rooms: token_length must be at least %d, got %d", ident.MinTokenLength, c.Rooms.TokenLength)
	}
	if c.Rooms.MaxCodeAttempts < 1 {
		return fmt.Errorf("rooms: max_code_attempts must be positive")
	}
	if _, err := positiveDuration("ttl", c.Rooms.TTL); err != nil {
		return err
	}
	if _, err := positiveDuration("sweep_interval", c.Rooms.SweepInterval); err != nil {
		return err
	}
	return nil
}

func positiveDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("rooms: invalid %s %q: %w", field, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("rooms: %s must be positive, got %s", field, value)
	}
	return d, nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// RoomTTL returns the idle time after which a room is swept.
func (c *ServerConfig) RoomTTL() time.Duration {
	d, err := positiveDuration("ttl", c.Rooms.TTL)
	if err != nil {
		return room.DefaultRoomTTL
	}
	return d
}

// SweepInterval returns how often idle rooms are swept.
func (c *ServerConfig) SweepInterval() time.Duration {
	d, err := positiveDuration("sweep_interval", c.Rooms.SweepInterval)
	if err != nil {
		return room.DefaultSweepInterval
	}
	return d
}

// RegistryOptions translates the rooms block into registry options.
func (c *ServerConfig) RegistryOptions() []room.Option {
	return []room.Option{
		room.WithIDSource(ident.NewGenerator(c.Rooms.CodeLength, c.Rooms.TokenLength)),
		room.WithMaxCodeAttempts(c.Rooms.MaxCodeAttempts),
		room.WithDefaults(c.Rooms.RoomName, c.Rooms.PlayerName),
	}
}
