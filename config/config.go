package config

import (
	"encoding"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NethermindEth/invokev3/utils"
	"github.com/NethermindEth/invokev3/validator"
	"github.com/spf13/pflag"
)

var ErrUnknownOutput = errors.New("unknown output (known: json, yaml, table, cbor)")

type Output int

var (
	_ pflag.Value              = (*Output)(nil)
	_ encoding.TextUnmarshaler = (*Output)(nil)
)

const (
	JSON Output = iota
	YAML
	Table
	CBOR
)

func (o Output) String() string {
	switch o {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case Table:
		return "table"
	case CBOR:
		return "cbor"
	default:
		// Should not happen.
		panic(ErrUnknownOutput)
	}
}

func (o Output) MarshalYAML() (interface{}, error) {
	return o.String(), nil
}

func (o *Output) Set(s string) error {
	switch strings.ToLower(s) {
	case "json":
		*o = JSON
	case "yaml":
		*o = YAML
	case "table":
		*o = Table
	case "cbor":
		*o = CBOR
	default:
		return ErrUnknownOutput
	}
	return nil
}

func (o *Output) Type() string {
	return "Output"
}

func (o *Output) UnmarshalText(text []byte) error {
	return o.Set(string(text))
}

// Config is the configuration of the invokev3 commands, populated from flags
// and an optional YAML file
type Config struct {
	LogLevel  utils.LogLevel `mapstructure:"log-level"`
	Colour    bool           `mapstructure:"colour"`
	Network   utils.Network  `mapstructure:"network" validate:"min=1"`
	OnlyQuery bool           `mapstructure:"only-query"`
	Output    Output         `mapstructure:"output"`
	Workers   int            `mapstructure:"workers" validate:"min=1"`
	CacheSize int            `mapstructure:"cache-size" validate:"min=0"`
	CacheTTL  time.Duration  `mapstructure:"cache-ttl" validate:"min=0"`
}

const (
	DefaultLogLevel  = utils.INFO
	DefaultNetwork   = utils.Mainnet
	DefaultOutput    = JSON
	DefaultWorkers   = 4
	DefaultCacheSize = 1024
	DefaultCacheTTL  = 5 * time.Minute
)

func Default() *Config {
	return &Config{
		LogLevel:  DefaultLogLevel,
		Colour:    true,
		Network:   DefaultNetwork,
		Output:    DefaultOutput,
		Workers:   DefaultWorkers,
		CacheSize: DefaultCacheSize,
		CacheTTL:  DefaultCacheTTL,
	}
}

func (c *Config) Validate() error {
	if err := validator.Validator().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
