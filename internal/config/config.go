// Package config loads converter settings from an optional YAML file and the
// XMLDOCMD_* environment, and validates the merged result.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is read when no --config flag is given and the file exists.
	DefaultPath = ".xmldocmd.yaml"
	// DotEnvPath supplies XMLDOCMD_* values absent from the process environment.
	DotEnvPath = ".env"

	EnvLogLevel  = "XMLDOCMD_LOG_LEVEL"
	EnvLogFormat = "XMLDOCMD_LOG_FORMAT"
	EnvVerify    = "XMLDOCMD_VERIFY"

	textCodeInvalid    = "CONFIG_INVALID"
	textCodeReadFailed = "CONFIG_READ_FAILED"
)

var errExclusiveAssembly = validation.NewError("xmldocmd.config.assembly_exclusive",
	"cannot be combined with auto_assembly")

// Config holds every setting the command accepts.
type Config struct {
	// Assembly is the managed assembly used to filter non-public types.
	Assembly string `yaml:"assembly"`
	// AutoAssembly looks for <base>.dll or <base>.exe next to each input.
	AutoAssembly bool `yaml:"auto_assembly"`
	// Output is a file or directory; empty means stdout.
	Output string `yaml:"output"`
	// Verify checks that every in-document link resolves.
	Verify    bool   `yaml:"verify"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads the YAML file at path. An empty path means DefaultPath, and a
// missing default file yields a zero Config.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, goerrors.Wrap(err, goerrors.CategoryCommand, "read config "+path).
			WithTextCode(textCodeReadFailed)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, goerrors.Wrap(err, goerrors.CategoryValidation, "parse config "+path+": "+err.Error()).
			WithTextCode(textCodeInvalid)
	}
	return cfg, nil
}

// Parse decodes YAML, rejecting unknown keys. Empty input is a zero Config.
func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, nil
}

// Environment returns the XMLDOCMD_* variables, reading dotenv for any the
// process environment does not set. A missing dotenv file is not an error.
func Environment(dotenv string) (map[string]string, error) {
	env := make(map[string]string)
	if dotenv != "" {
		values, err := godotenv.Read(dotenv)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "read "+dotenv+": "+err.Error()).
				WithTextCode(textCodeInvalid)
		}
		for k, v := range values {
			if strings.HasPrefix(k, "XMLDOCMD_") {
				env[k] = v
			}
		}
	}
	for _, key := range []string{EnvLogLevel, EnvLogFormat, EnvVerify} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env, nil
}

// ApplyEnv overrides file values with environment values.
func (c *Config) ApplyEnv(env map[string]string) error {
	if v, ok := env[EnvLogLevel]; ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := env[EnvLogFormat]; ok && v != "" {
		c.LogFormat = v
	}
	if v, ok := env[EnvVerify]; ok && v != "" {
		verify, err := strconv.ParseBool(v)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, EnvVerify+": "+err.Error()).
				WithTextCode(textCodeInvalid)
		}
		c.Verify = verify
	}
	return nil
}

// Validate checks enumerated values and the assembly options.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.LogLevel, validation.In("", "trace", "debug", "info", "warn", "warning", "error")),
		validation.Field(&c.LogFormat, validation.In("", "console", "json", "pretty")),
		validation.Field(&c.Assembly, validation.By(func(value any) error {
			if c.AutoAssembly && strings.TrimSpace(value.(string)) != "" {
				return errExclusiveAssembly
			}
			return nil
		})),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid configuration: "+err.Error()).
			WithTextCode(textCodeInvalid)
	}
	return nil
}
