package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/logger"
)

// FileSystem is the file access the loader needs. Tests substitute a fake.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	Getwd() (string, error)
}

// RealFileSystem is the FileSystem backed by the OS.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (RealFileSystem) LoadEnv(path string) error { return godotenv.Load(path) }
func (RealFileSystem) Getwd() (string, error)    { return os.Getwd() }

// LoaderConfig carries the loader's file system and explicit file paths.
// Empty paths are searched for.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption customizes Load and LoadInto.
type LoaderOption func(*LoaderConfig)

func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile pins the YAML file instead of searching for config.yml.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile pins the dotenv file instead of searching for one.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// ResolvedFiles is the outcome of a search. Either path may be empty.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// Resolver locates an engine's config.yml and dotenv file.
//
// The engine's own directories come first (cmd/<name>, with the part after
// the last dash tried as a short name), then the shared config directory,
// then the working directory. Each is also tried one and two levels up so
// tests running inside a package directory find the repository files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolveFiles keeps explicit paths from opts and searches for the rest.
func (r *Resolver) ResolveFiles(engine string, opts LoaderConfig) ResolvedFiles {
	out := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if out.ConfigFile == "" {
		out.ConfigFile = r.first(candidates(engineDirs(engine, false), "config.yml"))
	}
	if out.EnvFile == "" {
		dirs := engineDirs(engine, true)
		paths := candidates(dirs, ".env."+engine)
		paths = append(paths, candidates(dirs, ".env")...)
		out.EnvFile = r.first(paths)
	}
	return out
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// engineDirs lists the search directories for engine, nearest first. The
// per-engine config/<name> directory is only searched for dotenv files.
func engineDirs(engine string, withEngineConfig bool) []string {
	names := []string{engine}
	if i := strings.LastIndex(engine, "-"); i >= 0 && i < len(engine)-1 {
		names = append(names, engine[i+1:])
	}

	var dirs []string
	for _, up := range []string{".", "..", "../.."} {
		for _, n := range names {
			dirs = append(dirs, up+"/cmd/"+n)
		}
	}
	if withEngineConfig {
		for _, up := range []string{".", "..", "../.."} {
			dirs = append(dirs, up+"/config/"+engine)
		}
	}
	dirs = append(dirs, "./config", "../config", ".")
	if withEngineConfig {
		dirs = append(dirs, "..", "../..")
	}
	return dirs
}

func candidates(dirs []string, file string) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = d + "/" + file
	}
	return out
}

// Load reads the engine configuration for engine, applies defaults and
// validates the result.
func Load(engine string, opts ...LoaderOption) (*Config, error) {
	cfg := &Config{}
	if err := LoadInto(engine, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = engine
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto layers config.yml, the process environment and the dotenv file
// into cfg, in that order of increasing precedence. Missing files are not an
// error; an unreadable file is logged and skipped.
func LoadInto(engine string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}
	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(engine, lc)
	log := logger.Get("config")

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			log.Warn("config file skipped", logger.Fields("file", files.ConfigFile, logger.FieldError, err.Error()))
		}
	}

	v.AutomaticEnv()
	bindEnviron(v)
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("env file skipped", logger.Fields("file", files.EnvFile, logger.FieldError, err.Error()))
		} else {
			bindEnviron(v)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return errors.InvalidInput("config", fmt.Sprintf("cannot decode configuration for %s", engine)).WithCause(err)
	}
	log.Debug("configuration loaded", logger.Fields("engine", engine, "file", files.ConfigFile, "env", files.EnvFile))
	return nil
}

// bindEnviron sets every environment variable on v under each nested key it
// could stand for, so COMPUTER_WORKERS reaches computer.workers.
func bindEnviron(v *viper.Viper) {
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		for _, k := range generateEnvKeyVariants(key) {
			v.Set(k, value)
		}
	}
}

// generateEnvKeyVariants maps an environment key onto the config keys it may
// address: the flat lower-case form, then every split into a dotted prefix
// and an underscored leaf.
//
//	MEMORY_REDIS_ADDR -> memory_redis_addr, memory.redis_addr, memory.redis.addr
func generateEnvKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	variants := []string{lower}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return variants
}
