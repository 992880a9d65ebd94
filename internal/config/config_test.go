package config

import (
	"os"
	"path/filepath"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xmldocmd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
assembly: bin/Sample.dll
output: docs/
verify: true
log_level: debug
log_format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Assembly:  "bin/Sample.dll",
		Output:    "docs/",
		Verify:    true,
		LogLevel:  "debug",
		LogFormat: "json",
	}, cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaultMissingIsEmpty(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadDefaultFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultPath), []byte("auto_assembly: true\n"), 0o644))
	t.Chdir(dir)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.AutoAssembly)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryCommand))

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("colour: blue\n"), 0o644))
	_, err = Load(unknown)
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
	assert.Contains(t, err.Error(), "colour")
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "zero", cfg: Config{}},
		{name: "console trace", cfg: Config{LogLevel: "trace", LogFormat: "console"}},
		{name: "bad level", cfg: Config{LogLevel: "loud"}, wantErr: "LogLevel"},
		{name: "bad format", cfg: Config{LogFormat: "xml"}, wantErr: "LogFormat"},
		{name: "assembly with auto", cfg: Config{Assembly: "a.dll", AutoAssembly: true}, wantErr: "auto_assembly"},
		{name: "auto alone", cfg: Config{AutoAssembly: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
		})
	}
}

func TestEnvironment(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("XMLDOCMD_LOG_LEVEL=info\nXMLDOCMD_VERIFY=true\nOTHER=1\n"), 0o644))
	t.Setenv(EnvLogLevel, "error")

	env, err := Environment(dotenv)
	require.NoError(t, err)
	assert.Equal(t, "error", env[EnvLogLevel])
	assert.Equal(t, "true", env[EnvVerify])
	assert.NotContains(t, env, "OTHER")

	cfg := Config{LogLevel: "debug", LogFormat: "json"}
	require.NoError(t, cfg.ApplyEnv(env))
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.Verify)
}

func TestEnvironmentMissingDotEnv(t *testing.T) {
	_, err := Environment(filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestApplyEnvRejectsBadBool(t *testing.T) {
	var cfg Config
	err := cfg.ApplyEnv(map[string]string{EnvVerify: "sometimes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvVerify)
}
