package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps Load away from real config files and secret sources.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	origStdin, origPrompt := stdin, promptPassword
	t.Cleanup(func() {
		stdin = origStdin
		promptPassword = origPrompt
	})
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(NewFlagSet("test"), nil)
	require.NoError(t, err)

	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 25, cfg.Database.Pool.MaxOpen)
	assert.Equal(t, 5*time.Minute, cfg.Database.Pool.MaxLifetime)
	assert.Equal(t, ModelSourceFile, cfg.Models.Source)
	assert.Equal(t, "models.yaml", cfg.Models.Path)
	assert.False(t, cfg.Models.SkipUnsupported)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "model-graphql", cfg.Observability.ServiceName)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
	assert.Equal(t, "grpc", cfg.Observability.OTLP.Protocol)
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "custom.yaml", `
database:
  driver: sqlite
  dsn: "file:test.db"
server:
  port: 9000
  graphiql_enabled: true
models:
  tables: [users]
`)

	cfg, err := Load(NewFlagSet("test"), []string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Server.GraphiQLEnabled)
	assert.Equal(t, []string{"users"}, cfg.Models.Tables)

	t.Setenv("MODELGQL_SERVER_PORT", "9100")
	t.Setenv("MODELGQL_MODELS_TABLES", "users, orders")
	cfg, err = Load(NewFlagSet("test"), []string{"-c", path})
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"users", "orders"}, cfg.Models.Tables)

	cfg, err = Load(NewFlagSet("test"), []string{"-c", path, "--server.port=9200", "--server.read_timeout=3s", "--models.skip_unsupported"})
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Models.SkipUnsupported)
}

func TestLoad_DefaultConfigFileInWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "model-graphql.yaml", "models:\n  path: entities.yaml\n")

	cfg, err := Load(NewFlagSet("test"), nil)
	require.NoError(t, err)
	assert.Equal(t, "entities.yaml", cfg.Models.Path)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "bad.yaml", "server:\n  rate_limit_enabled: true\n")

	_, err := Load(NewFlagSet("test"), []string{"--config", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config")
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(NewFlagSet("test"), []string{"--config", filepath.Join(dir, "nope.yaml")})
	require.Error(t, err)
}

func TestLoad_SecretFiles(t *testing.T) {
	dir := isolate(t)
	dsnPath := writeFile(t, dir, "dsn", "app@tcp(db:3306)/shop\n")
	pwdPath := writeFile(t, dir, "pwd", "  s3cret \n")

	cfg, err := Load(NewFlagSet("test"), []string{
		"--database.dsn_file", dsnPath,
		"--database.password_file", pwdPath,
	})
	require.NoError(t, err)
	assert.Equal(t, "app@tcp(db:3306)/shop", cfg.Database.DSN)
	assert.Equal(t, "s3cret", cfg.Database.Password)
}

func TestLoad_SecretFromStdin(t *testing.T) {
	isolate(t)
	stdin = strings.NewReader("from-stdin\n")

	cfg, err := Load(NewFlagSet("test"), []string{"--database.password_file", "@-"})
	require.NoError(t, err)
	assert.Equal(t, "from-stdin", cfg.Database.Password)
}

func TestLoad_OnlyOneStdinSource(t *testing.T) {
	isolate(t)

	_, err := Load(NewFlagSet("test"), []string{"--database.password_file", "@-", "--database.dsn_file", "@-"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only one @- source")
}

func TestLoad_PasswordPrompt(t *testing.T) {
	isolate(t)
	calls := 0
	promptPassword = func() (string, error) {
		calls++
		return "typed", nil
	}

	cfg, err := Load(NewFlagSet("test"), []string{"--database.password_prompt"})
	require.NoError(t, err)
	assert.Equal(t, "typed", cfg.Database.Password)
	assert.Equal(t, 1, calls)

	// An explicit password wins over the prompt.
	cfg, err = Load(NewFlagSet("test"), []string{"--database.password_prompt", "--database.password", "given"})
	require.NoError(t, err)
	assert.Equal(t, "given", cfg.Database.Password)
	assert.Equal(t, 1, calls)
}

func TestDatabaseConfig_EffectiveDSN(t *testing.T) {
	d := DatabaseConfig{Driver: "tidb", DSN: "root:secret@tcp(localhost:4000)/app", Password: "override"}

	dsn, err := d.EffectiveDSN()
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "override", parsed.Passwd)
	assert.Equal(t, "app", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, time.UTC, parsed.Loc)

	name, err := d.DatabaseName()
	require.NoError(t, err)
	assert.Equal(t, "app", name)
}

func TestDatabaseConfig_EffectiveDSN_OtherDrivers(t *testing.T) {
	d := DatabaseConfig{Driver: "postgresql", DSN: "postgres://u:p@localhost/app?sslmode=disable", Password: "ignored"}
	dsn, err := d.EffectiveDSN()
	require.NoError(t, err)
	assert.Equal(t, d.DSN, dsn)
	assert.Equal(t, DriverPostgres, d.DriverName())

	_, err = d.DatabaseName()
	require.Error(t, err)
}

func TestDatabaseConfig_DriverName(t *testing.T) {
	for alias, want := range map[string]string{
		"MySQL": DriverMySQL, "tidb": DriverMySQL,
		"pq": DriverPostgres, "postgres": DriverPostgres,
		"sqlite3": DriverSQLite, "sqlite": DriverSQLite,
		"oracle": "",
	} {
		d := DatabaseConfig{Driver: alias}
		assert.Equal(t, want, d.DriverName(), alias)
	}
}

func validConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Driver: "mysql",
			DSN:    "root@tcp(localhost:3306)/app",
			Pool:   PoolConfig{MaxOpen: 10, MaxIdle: 2},
		},
		Models: ModelsConfig{Source: ModelSourceFile, Path: "models.yaml"},
		Server: ServerConfig{Port: 8080},
		Observability: ObservabilityConfig{
			TraceSampleRatio: 1,
			Logging:          LoggingConfig{Level: "info", Format: "json"},
			OTLP:             OTLPConfig{Endpoint: "localhost:4317", Protocol: "grpc"},
		},
	}
}

func errorFields(r *ValidationResult) []string {
	var fields []string
	for _, e := range r.Errors {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	result := cfg.Validate()
	assert.False(t, result.HasErrors(), result.Error())
	assert.Empty(t, result.Warnings)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, "database.driver"},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }, "database.dsn"},
		{"bad mysql dsn", func(c *Config) { c.Database.DSN = "not a dsn" }, "database.dsn"},
		{"negative pool", func(c *Config) { c.Database.Pool.MaxOpen = -1 }, "database.pool.max_open"},
		{"retry interval", func(c *Config) { c.Database.ConnectionTimeout = time.Second }, "database.connection_retry_interval"},
		{"bad model source", func(c *Config) { c.Models.Source = "api" }, "models.source"},
		{"missing model path", func(c *Config) { c.Models.Path = "" }, "models.path"},
		{"catalog needs mysql", func(c *Config) {
			c.Database.Driver = "sqlite"
			c.Database.DSN = ":memory:"
			c.Models.Source = ModelSourceDatabase
		}, "models.source"},
		{"catalog needs database", func(c *Config) {
			c.Database.DSN = "root@tcp(localhost:3306)/"
			c.Models.Source = ModelSourceDatabase
		}, "database.dsn"},
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"negative timeout", func(c *Config) { c.Server.WriteTimeout = -time.Second }, "server.write_timeout"},
		{"log level", func(c *Config) { c.Observability.Logging.Level = "trace" }, "observability.logging.level"},
		{"log format", func(c *Config) { c.Observability.Logging.Format = "xml" }, "observability.logging.format"},
		{"sample ratio", func(c *Config) { c.Observability.TraceSampleRatio = 1.5 }, "observability.trace_sample_ratio"},
		{"otlp protocol", func(c *Config) { c.Observability.OTLP.Protocol = "udp" }, "observability.otlp.protocol"},
		{"otlp http endpoint", func(c *Config) {
			c.Observability.Traces = &OTLPConfig{Protocol: "http/protobuf", Endpoint: "::bad"}
		}, "observability.traces.endpoint"},
		{"naming override", func(c *Config) {
			c.Naming.PluralOverrides = map[string]string{"person": ""}
		}, "naming.plural_overrides"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			result := cfg.Validate()
			require.True(t, result.HasErrors())
			assert.Contains(t, errorFields(result), tt.field)
			assert.Contains(t, result.Error(), tt.field)
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Pool.MaxIdle = 20
	cfg.Server.GraphiQLEnabled = true
	cfg.Observability.Environment = "production"

	result := cfg.Validate()
	require.False(t, result.HasErrors(), result.Error())

	var fields []string
	for _, w := range result.Warnings {
		fields = append(fields, w.Field)
	}
	assert.ElementsMatch(t, []string{"database.pool.max_idle", "server.graphiql_enabled"}, fields)
}

func TestGetTracesConfig_MergesOverrides(t *testing.T) {
	obs := ObservabilityConfig{
		OTLP: OTLPConfig{
			Endpoint:    "collector:4317",
			Protocol:    "grpc",
			Headers:     map[string]string{"x-tenant": "a", "x-env": "prod"},
			Timeout:     10 * time.Second,
			Compression: "gzip",
		},
		Traces: &OTLPConfig{
			Endpoint: "http://traces:4318",
			Protocol: "http/protobuf",
			Insecure: true,
			Headers:  map[string]string{"x-tenant": "b"},
		},
	}

	traces := obs.GetTracesConfig()
	assert.Equal(t, "http://traces:4318", traces.Endpoint)
	assert.Equal(t, "http/protobuf", traces.Protocol)
	assert.True(t, traces.Insecure)
	assert.Equal(t, map[string]string{"x-tenant": "b", "x-env": "prod"}, traces.Headers)
	assert.Equal(t, 10*time.Second, traces.Timeout)
	assert.Equal(t, "gzip", traces.Compression)

	assert.Equal(t, obs.OTLP, obs.GetLogsConfig())
}
