package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultStoragePath = ".seqtest/history.db"
	DefaultServerPort  = 3000
)

// envVarPattern matches ${VAR_NAME} patterns in config content.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// LoadConfig reads a YAML configuration file, substitutes environment
// variables, parses into Config, applies defaults, and validates the result.
//
// References to names declared in any suite's vars block are left for
// step-level substitution instead of being read from the environment.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read file %s: %w", path, err)
	}

	// Suite vars are resolved later, per step, so collect their names first.
	suiteVars, err := declaredSuiteVars(data)
	if err != nil {
		return nil, err
	}

	data = stripCommentLines(data)
	if err := validateEnvVars(data, suiteVars); err != nil {
		return nil, err
	}

	resolved := envVarPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		varName := envVarName(match[2 : len(match)-1]) // strip ${ and }
		if suiteVars[varName] {
			return match
		}
		return os.Getenv(varName)
	})

	var cfg Config
	if err := yaml.Unmarshal([]byte(resolved), &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse YAML: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve path %s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(abs)
	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Transport.Type == "" {
		cfg.Transport.Type = "local"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
}

// StoragePath returns the history database path, resolved against Dir.
func (c *Config) StoragePath() string {
	if filepath.IsAbs(c.Storage.Path) || c.Dir == "" {
		return c.Storage.Path
	}
	return filepath.Join(c.Dir, c.Storage.Path)
}

// Suite returns the suite with the given name.
func (c *Config) Suite(name string) (SuiteConfig, bool) {
	for _, s := range c.Suites {
		if s.Name == name {
			return s, true
		}
	}
	return SuiteConfig{}, false
}

// stripCommentLines drops full-line comments so commented-out ${VAR}
// references are neither required nor substituted.
func stripCommentLines(data []byte) []byte {
	lines := strings.Split(string(data), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	return []byte(strings.Join(kept, "\n"))
}

// envVarName strips the optional "env:" prefix from a ${...} reference.
func envVarName(ref string) string {
	return strings.TrimPrefix(ref, "env:")
}

// declaredSuiteVars does a raw parse to find the keys of every suite's vars.
func declaredSuiteVars(data []byte) (map[string]bool, error) {
	var raw struct {
		Suites []struct {
			Vars map[string]string `yaml:"vars"`
		} `yaml:"suites"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: failed to parse YAML: %w", err)
	}
	names := map[string]bool{}
	for _, s := range raw.Suites {
		for k := range s.Vars {
			names[k] = true
		}
	}
	return names, nil
}

// validateEnvVars checks that all ${VAR} references in raw data
// correspond to suite vars or environment variables that are actually set.
func validateEnvVars(data []byte, suiteVars map[string]bool) error {
	matches := envVarPattern.FindAllStringSubmatch(string(data), -1)
	var unresolved []string
	seen := map[string]bool{}
	for _, m := range matches {
		varName := envVarName(m[1])
		if seen[varName] || suiteVars[varName] {
			continue
		}
		seen[varName] = true
		if _, ok := os.LookupEnv(varName); !ok {
			unresolved = append(unresolved, "${"+varName+"}")
		}
	}
	if len(unresolved) > 0 {
		return fmt.Errorf("config: unresolved variables found: %s",
			strings.Join(unresolved, ", "))
	}
	return nil
}
