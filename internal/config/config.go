// Package config loads ztlctl.toml with the priority chain §6 specifies:
// explicit flags > environment ZTLCTL_* > TOML file > built-in defaults.
// Sparse: a vault's ztlctl.toml may omit any section or key, since every
// field below already carries its spec-mandated default.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ReweaveConfig holds §4.7's signal weights and thresholds.
type ReweaveConfig struct {
	WeightLexical       float64 `mapstructure:"weight_lexical" toml:"weight_lexical"`
	WeightTags          float64 `mapstructure:"weight_tags" toml:"weight_tags"`
	WeightGraph         float64 `mapstructure:"weight_graph" toml:"weight_graph"`
	WeightTopic         float64 `mapstructure:"weight_topic" toml:"weight_topic"`
	MinScoreThreshold   float64 `mapstructure:"min_score_threshold" toml:"min_score_threshold"`
	MaxLinksPerNote     int     `mapstructure:"max_links_per_note" toml:"max_links_per_note"`
	OrphanScoreThreshold float64 `mapstructure:"orphan_score_threshold" toml:"orphan_score_threshold"`
	AutoOnCreate        bool    `mapstructure:"auto_on_create" toml:"auto_on_create"`
}

// GraphConfig holds §4.8's algorithm parameters.
type GraphConfig struct {
	PageRankDamping float64 `mapstructure:"pagerank_damping" toml:"pagerank_damping"`
	PageRankMaxIter int     `mapstructure:"pagerank_max_iter" toml:"pagerank_max_iter"`
	RelatedMaxDepth int     `mapstructure:"related_max_depth" toml:"related_max_depth"`
}

// CheckConfig holds §4.11's backup retention.
type CheckConfig struct {
	BackupRetention int `mapstructure:"backup_retention" toml:"backup_retention"`
}

// EventBusConfig holds §4.12's worker pool and retry budget.
type EventBusConfig struct {
	Workers    int  `mapstructure:"workers" toml:"workers"`
	MaxRetries int  `mapstructure:"max_retries" toml:"max_retries"`
	Sync       bool `mapstructure:"sync" toml:"sync"`
}

// VectorConfig holds §4.9's hybrid-ranking weight and §9's open question 2
// decision (missing embeddings fold into the cosine term as 0).
type VectorConfig struct {
	Enabled      bool    `mapstructure:"enabled" toml:"enabled"`
	HybridWeight float64 `mapstructure:"hybrid_weight" toml:"hybrid_weight"`
}

// SessionConfig holds §4.10's context-budget defaults.
type SessionConfig struct {
	DefaultBudgetTokens int `mapstructure:"default_budget_tokens" toml:"default_budget_tokens"`
}

// Config is the full set of recognized ztlctl.toml sections (§6).
type Config struct {
	Reweave  ReweaveConfig  `mapstructure:"reweave" toml:"reweave"`
	Graph    GraphConfig    `mapstructure:"graph" toml:"graph"`
	Check    CheckConfig    `mapstructure:"check" toml:"check"`
	EventBus EventBusConfig `mapstructure:"eventbus" toml:"eventbus"`
	Vector   VectorConfig   `mapstructure:"vector" toml:"vector"`
	Session  SessionConfig  `mapstructure:"session" toml:"session"`
}

// Defaults returns the built-in configuration, used when ztlctl.toml is
// absent or omits a section entirely.
func Defaults() Config {
	return Config{
		Reweave: ReweaveConfig{
			WeightLexical:        0.35,
			WeightTags:           0.25,
			WeightGraph:          0.25,
			WeightTopic:          0.15,
			MinScoreThreshold:    0.6,
			MaxLinksPerNote:      5,
			OrphanScoreThreshold: 0.4,
			AutoOnCreate:         true,
		},
		Graph: GraphConfig{
			PageRankDamping: 0.85,
			PageRankMaxIter: 100,
			RelatedMaxDepth: 2,
		},
		Check: CheckConfig{
			BackupRetention: 10,
		},
		EventBus: EventBusConfig{
			Workers:    2,
			MaxRetries: 5,
			Sync:       false,
		},
		Vector: VectorConfig{
			Enabled:      false,
			HybridWeight: 0.5,
		},
		Session: SessionConfig{
			DefaultBudgetTokens: 8000,
		},
	}
}

// Load builds a Config by layering, in increasing priority: built-in
// defaults, the TOML file at tomlPath (if it exists), ZTLCTL_* environment
// variables, then flags already parsed onto fs (if non-nil). This is
// viper's native precedence chain, used the way the teacher's go.mod
// dependency is meant to be used rather than hand-rolled (§6).
func Load(tomlPath string, fs *pflag.FlagSet) (Config, error) {
	defaults := Defaults()

	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v, defaults)

	v.SetEnvPrefix("ZTLCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if tomlPath != "" {
		v.SetConfigFile(tomlPath)
		if err := v.ReadInConfig(); err != nil {
			if !isNotExist(err) {
				return Config{}, fmt.Errorf("config: read %s: %w", tomlPath, err)
			}
		}
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("reweave.weight_lexical", d.Reweave.WeightLexical)
	v.SetDefault("reweave.weight_tags", d.Reweave.WeightTags)
	v.SetDefault("reweave.weight_graph", d.Reweave.WeightGraph)
	v.SetDefault("reweave.weight_topic", d.Reweave.WeightTopic)
	v.SetDefault("reweave.min_score_threshold", d.Reweave.MinScoreThreshold)
	v.SetDefault("reweave.max_links_per_note", d.Reweave.MaxLinksPerNote)
	v.SetDefault("reweave.orphan_score_threshold", d.Reweave.OrphanScoreThreshold)
	v.SetDefault("reweave.auto_on_create", d.Reweave.AutoOnCreate)

	v.SetDefault("graph.pagerank_damping", d.Graph.PageRankDamping)
	v.SetDefault("graph.pagerank_max_iter", d.Graph.PageRankMaxIter)
	v.SetDefault("graph.related_max_depth", d.Graph.RelatedMaxDepth)

	v.SetDefault("check.backup_retention", d.Check.BackupRetention)

	v.SetDefault("eventbus.workers", d.EventBus.Workers)
	v.SetDefault("eventbus.max_retries", d.EventBus.MaxRetries)
	v.SetDefault("eventbus.sync", d.EventBus.Sync)

	v.SetDefault("vector.enabled", d.Vector.Enabled)
	v.SetDefault("vector.hybrid_weight", d.Vector.HybridWeight)

	v.SetDefault("session.default_budget_tokens", d.Session.DefaultBudgetTokens)
}

func isNotExist(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	return errors.Is(err, os.ErrNotExist)
}

// WriteDefault marshals the built-in defaults to TOML, used by `ztlctl
// init` to write a starter ztlctl.toml. It writes the full default set for
// discoverability, although a vault's file only needs the diverging sections.
func WriteDefault(cfg Config) (string, error) {
	var buf strings.Builder
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(cfg); err != nil {
		return "", fmt.Errorf("config: encode toml: %w", err)
	}
	return buf.String(), nil
}
