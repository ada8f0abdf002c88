package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

type ExtractionPrompts struct {
	Flow string `toml:"flow"`
}

type SummaryPrompts struct {
	PhaseName string `toml:"phase_name"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// StoreConfig selects where transcripts, prompt nodes and derived rows live.
// Backend serves every store; CanonicalBackend may move the canonical graph
// and alignments to Memgraph.
type StoreConfig struct {
	Backend          string `toml:"backend" validate:"oneof=memory sqlite postgres"`
	CanonicalBackend string `toml:"canonical_backend" validate:"oneof=sql memgraph"`
	PostgresDSN      string `toml:"postgres_dsn"`
	SQLitePath       string `toml:"sqlite_path"`
	Dataset          string `toml:"dataset"`
}

// Duration reads TOML strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type LockConfig struct {
	Backend   string   `toml:"backend" validate:"oneof=local redis"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
	Wait      Duration `toml:"wait"`
}

type AlignmentConfig struct {
	CoveredThreshold float64  `toml:"covered_threshold" validate:"gt=0,lte=1,gtfield=Floor"`
	Floor            float64  `toml:"floor" validate:"gte=0,lt=1"`
	TokenWeight      float64  `toml:"token_weight" validate:"gte=0"`
	LabelWeight      float64  `toml:"label_weight" validate:"gte=0"`
	TypeWeight       float64  `toml:"type_weight" validate:"gte=0"`
	SupportWeight    float64  `toml:"support_weight" validate:"gte=0"`
	StopWords        []string `toml:"stop_words"`
}

type ServerConfig struct {
	Port string `toml:"port" validate:"required,numeric"`
	Mode string `toml:"mode" validate:"oneof=debug release test"`
}

type ObservabilityConfig struct {
	LogMode string `toml:"log_mode"`
	Tracing bool   `toml:"tracing"`
}

type Config struct {
	LLM           LLMConfig           `toml:"llm"`
	Memgraph      MemgraphConfig      `toml:"memgraph"`
	Extraction    ExtractionPrompts   `toml:"extraction"`
	Summary       SummaryPrompts      `toml:"summary"`
	Store         StoreConfig         `toml:"store"`
	Lock          LockConfig          `toml:"lock"`
	Alignment     AlignmentConfig     `toml:"alignment"`
	Server        ServerConfig        `toml:"server"`
	Observability ObservabilityConfig `toml:"observability"`
}

// Default returns a config that runs fully in memory with the standard
// alignment thresholds.
func Default() *Config {
	return &Config{
		Extraction: ExtractionPrompts{Flow: defaultFlowPrompt},
		Summary:    SummaryPrompts{PhaseName: DefaultPhaseNamePrompt},
		Store: StoreConfig{
			Backend:          "memory",
			CanonicalBackend: "sql",
			SQLitePath:       "flowalign.db",
		},
		Lock: LockConfig{
			Backend: "local",
			TTL:     Duration{2 * time.Minute},
			Wait:    Duration{30 * time.Second},
		},
		Alignment: AlignmentConfig{
			CoveredThreshold: 0.58,
			Floor:            0.35,
			TokenWeight:      0.56,
			LabelWeight:      0.22,
			TypeWeight:       0.17,
			SupportWeight:    0.05,
		},
		Server:        ServerConfig{Port: "8080", Mode: "release"},
		Observability: ObservabilityConfig{LogMode: "development"},
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to stat config file '%s': %w", path, err)
	}
	return Load(path)
}

// ApplyEnv overrides file values with environment variables when present.
func (c *Config) ApplyEnv() {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.Memgraph.URI, "MEMGRAPH_URI")
	setString(&c.Memgraph.User, "MEMGRAPH_USER")
	setString(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")
	setString(&c.Store.Backend, "STORE_BACKEND")
	setString(&c.Store.CanonicalBackend, "CANONICAL_BACKEND")
	setString(&c.Store.PostgresDSN, "POSTGRES_DSN")
	setString(&c.Store.SQLitePath, "SQLITE_PATH")
	setString(&c.Store.Dataset, "DATASET_PATH")
	setString(&c.Lock.Backend, "LOCK_BACKEND")
	setString(&c.Lock.RedisAddr, "REDIS_ADDR")
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.Mode, "GIN_MODE")
	setString(&c.Observability.LogMode, "LOG_MODE")
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Observability.Tracing = b
		}
	}
}

// Validate checks field constraints and cross-section requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Store.Backend == "postgres" && c.Store.PostgresDSN == "" {
		return fmt.Errorf("invalid config: store.postgres_dsn is required for the postgres backend")
	}
	if c.Store.CanonicalBackend == "memgraph" && c.Memgraph.URI == "" {
		return fmt.Errorf("invalid config: memgraph.uri is required for the memgraph canonical backend")
	}
	if c.Lock.TTL.Duration <= 0 || c.Lock.Wait.Duration <= 0 {
		return fmt.Errorf("invalid config: lock.ttl and lock.wait must be positive")
	}
	if c.Lock.Backend == "redis" && c.Lock.RedisAddr == "" {
		return fmt.Errorf("invalid config: lock.redis_addr is required for the redis lock backend")
	}
	return nil
}

const defaultFlowPrompt = `You turn a customer conversation transcript into a flow graph of the steps the agent took.
Return ONLY a JSON object of the form:
{"nodes": [{"id": "n1", "label": "Short step name", "type": "question|decision|tool|knowledge|end|custom", "icon": "", "content": "what happens in the step"}],
 "connections": [{"from": "n1", "to": "n2", "reason": "why the conversation moved on"}]}

Transcript:
%s`

// DefaultPhaseNamePrompt receives the bullet list of a phase's steps.
const DefaultPhaseNamePrompt = `These steps form one phase of a customer conversation:
%s
Name the phase in at most four words. Return ONLY a JSON object: {"name": "..."}`
