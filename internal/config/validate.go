package config

import (
	"fmt"
	"strings"
)

var validTransports = map[string]bool{
	"local": true,
	"ssh":   true,
	"pty":   true,
}

var validNotifyTypes = map[string]bool{
	"slack":   true,
	"discord": true,
}

var validNotifyEvents = map[string]bool{
	"pass": true,
	"fail": true,
	"all":  true,
}

// Validate checks the Config for completeness and correctness.
// All problems are reported together, each prefixed with "config: ".
func Validate(cfg *Config) error {
	var errs []string

	if len(cfg.Base) == 0 {
		errs = append(errs, "config: base is required")
	}
	if len(cfg.Suites) == 0 {
		errs = append(errs, "config: at least one suite is required")
	}

	if cfg.Transport.Type != "" && !validTransports[cfg.Transport.Type] {
		errs = append(errs, fmt.Sprintf(
			"config: transport.type '%s' is invalid; must be one of: local, ssh, pty",
			cfg.Transport.Type))
	}
	if cfg.Transport.Type == "ssh" {
		errs = append(errs, validateSSH(&cfg.Transport.SSH)...)
	}

	seen := map[string]bool{}
	for i, s := range cfg.Suites {
		if s.Name != "" {
			if seen[s.Name] {
				errs = append(errs, fmt.Sprintf("config: suites[%d].name '%s' is duplicated", i, s.Name))
			}
			seen[s.Name] = true
		}
		errs = append(errs, validateSuite(i, &s)...)
	}

	for i, n := range cfg.Notify {
		errs = append(errs, validateNotify(i, &n)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSSH(s *SSHConfig) []string {
	var errs []string
	prefix := "config: transport.ssh"
	if s.Host == "" {
		errs = append(errs, prefix+".host is required when transport type is 'ssh'")
	}
	if s.User == "" {
		errs = append(errs, prefix+".user is required when transport type is 'ssh'")
	}
	if s.Key == "" && s.Password == "" {
		errs = append(errs, prefix+" requires 'key' or 'password'")
	}
	return errs
}

// validateSuite checks a single suite and its inline steps.
func validateSuite(idx int, s *SuiteConfig) []string {
	var errs []string
	prefix := fmt.Sprintf("config: suites[%d]", idx)

	if s.Name == "" {
		errs = append(errs, prefix+".name is required")
	}
	switch {
	case s.Script == "" && len(s.Steps) == 0:
		errs = append(errs, prefix+" requires 'script' or 'steps'")
	case s.Script != "" && len(s.Steps) > 0:
		errs = append(errs, prefix+" must not set both 'script' and 'steps'")
	}

	for j, st := range s.Steps {
		stepPrefix := fmt.Sprintf("%s.steps[%d]", prefix, j)
		switch {
		case len(st.In) == 0 && len(st.Exec) == 0:
			errs = append(errs, stepPrefix+" requires 'in' or 'exec'")
		case len(st.In) > 0 && len(st.Exec) > 0:
			errs = append(errs, stepPrefix+" must not set both 'in' and 'exec'")
		}
		if len(st.Out) == 0 {
			errs = append(errs, stepPrefix+".out requires at least one pattern")
		}
	}
	return errs
}

func validateNotify(idx int, n *NotifyConfig) []string {
	var errs []string
	prefix := fmt.Sprintf("config: notify[%d]", idx)

	if !validNotifyTypes[n.Type] {
		errs = append(errs, fmt.Sprintf("%s.type '%s' is invalid; must be one of: slack, discord", prefix, n.Type))
	}
	if n.Webhook == "" {
		errs = append(errs, prefix+".webhook is required")
	}
	for _, on := range n.On {
		if !validNotifyEvents[on] {
			errs = append(errs, fmt.Sprintf("%s.on '%s' is invalid; must be one of: pass, fail, all", prefix, on))
		}
	}
	return errs
}
