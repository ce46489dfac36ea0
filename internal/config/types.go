package config

// Config is the top-level configuration for seqtest.
type Config struct {
	Project   ProjectConfig   `yaml:"project"`
	Base      []string        `yaml:"base"`  // invocation prefix for `in` steps
	Shell     []string        `yaml:"shell"` // prefix for `in !` steps; platform default when empty
	Transport TransportConfig `yaml:"transport"`
	Suites    []SuiteConfig   `yaml:"suites"`
	Storage   StorageConfig   `yaml:"storage"`
	Notify    []NotifyConfig  `yaml:"notify"`
	Server    ServerConfig    `yaml:"server"`

	// Dir is the directory of the loaded file; script paths resolve against it.
	Dir string `yaml:"-"`
}

// ProjectConfig holds project metadata.
type ProjectConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// SuiteConfig describes one sequence, either inline or as a script file.
type SuiteConfig struct {
	Name   string            `yaml:"name"`
	Script string            `yaml:"script"` // path relative to the config file
	Vars   map[string]string `yaml:"vars"`
	Steps  []StepConfig      `yaml:"steps"`
}

// StepConfig is one inline step. Exactly one of In or Exec is set.
type StepConfig struct {
	In   []string `yaml:"in"`
	Exec []string `yaml:"exec"`
	Out  []string `yaml:"out"`
}

// TransportConfig controls where step processes run.
type TransportConfig struct {
	Type string    `yaml:"type"` // local|ssh|pty
	SSH  SSHConfig `yaml:"ssh"`
	Pty  PtyConfig `yaml:"pty"`
}

// PtyConfig sets the terminal size for the pty transport.
type PtyConfig struct {
	Cols uint16 `yaml:"cols"`
	Rows uint16 `yaml:"rows"`
}

// SSHConfig holds SSH connection details.
type SSHConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Key        string `yaml:"key"`
	Password   string `yaml:"password"`
	KnownHosts string `yaml:"known_hosts"`
}

// StorageConfig controls run history persistence.
type StorageConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

// NotifyConfig holds a single notification channel.
type NotifyConfig struct {
	Type    string   `yaml:"type"` // slack|discord
	Webhook string   `yaml:"webhook"`
	On      []string `yaml:"on"` // pass|fail|all
}

// ServerConfig holds history API server settings.
type ServerConfig struct {
	Port   int    `yaml:"port"`
	Secret string `yaml:"secret"` // enables POST /webhook when set
}
