package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. FILEMANAGER_LOG_LEVEL or
// FILEMANAGER_CLUSTER_NODE.
const EnvPrefix = "FILEMANAGER"

type Config struct {
	File               string  `mapstructure:"file"`
	LogFile            string  `mapstructure:"log_file"`
	LogLevel           string  `mapstructure:"log_level"`
	Gatk               string  `mapstructure:"gatk"`
	GatkTimeoutSeconds int64   `mapstructure:"gatk_timeout_seconds"`
	DryRun             bool    `mapstructure:"dry_run"`
	Cluster            Cluster `mapstructure:"cluster"`
}

// Cluster is the SLURM section. The path fields are kept untyped: the job
// writer rejects anything that did not decode to a string.
type Cluster struct {
	Partition        string `mapstructure:"partition"`
	Node             string `mapstructure:"node"`
	Cpus             int    `mapstructure:"cpus"`
	MemoryMb         int    `mapstructure:"mem"`
	TimeLimit        string `mapstructure:"time"`
	ThreadMultiplier int    `mapstructure:"thread_multiplier"`
	Exclusive        bool   `mapstructure:"exclusive"`
	ShellInit        any    `mapstructure:"shell_init"`
	Script           any    `mapstructure:"script"`
	Data             any    `mapstructure:"data"`
}

// Defaults reproduce the reference job: 64 CPUs and 128000 MB on catwoman.
var Defaults = map[string]any{
	"log_level":                 "info",
	"gatk_timeout_seconds":      3600,
	"cluster.partition":         "p_hpca4se",
	"cluster.node":              "catwoman",
	"cluster.cpus":              64,
	"cluster.mem":               128000,
	"cluster.thread_multiplier": 1,
	"cluster.shell_init":        "~/.bashrc",
	"cluster.script":            "./try.py",
	"cluster.data":              "./test.vcf",
}

// FlagKeys maps command-line flag names to config keys.
var FlagKeys = map[string]string{
	"file":              "file",
	"log-file":          "log_file",
	"log-level":         "log_level",
	"gatk":              "gatk",
	"dry-run":           "dry_run",
	"partition":         "cluster.partition",
	"node":              "cluster.node",
	"cpus":              "cluster.cpus",
	"mem":               "cluster.mem",
	"time":              "cluster.time",
	"thread-multiplier": "cluster.thread_multiplier",
	"exclusive":         "cluster.exclusive",
	"shell-init":        "cluster.shell_init",
	"script":            "cluster.script",
	"data":              "cluster.data",
}

// New returns a viper instance with defaults and environment overrides set.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range Defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Bind lets the flags in fs that appear in FlagKeys override the config.
// Flags left at their default do not mask config file values.
func Bind(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range FlagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a JSON config from path into v. If path is empty, looks for
// ./config.json; a missing file is not an error and leaves the defaults.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func isNotExist(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)
}
