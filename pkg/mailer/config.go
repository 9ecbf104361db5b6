package mailer

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

var (
	// ErrNotConfigured is returned when the package-level mailer is used
	// before Init has been called.
	ErrNotConfigured = errors.New("mailer: not configured")
	// ErrAlreadyConfigured is returned by Init when the package-level mailer
	// has already been initialized.
	ErrAlreadyConfigured = errors.New("mailer: already configured")
)

// Config holds the SMTP connection settings and sending behaviour for a
// Mailer. It is set once at construction and never mutated.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// UseTLS enables STARTTLS on the SMTP connection.
	UseTLS             bool `yaml:"useTLS"`
	InsecureSkipVerify bool `yaml:"insecureSkipVerify"`

	// DefaultFrom is used as the From address when a send does not supply one.
	DefaultFrom string `yaml:"defaultFrom"`

	// ToOverride, when set, replaces the recipient list of every outgoing
	// email with this single address. The original recipients are prepended
	// to the subject as "[to r1, r2] subject" so the mail remains traceable.
	ToOverride string `yaml:"toOverride"`

	// DumpBody writes every email body to the log before sending.
	DumpBody bool `yaml:"dumpBody"`
}

// Load loads the mailer configuration from a YAML file.
// If path is empty, defaults to "./mailalert.yaml". The path can also be
// overridden via the MAILALERT_CONFIG_PATH environment variable.
func Load(path ...string) (Config, error) {
	p := "./mailalert.yaml"
	if env := os.Getenv("MAILALERT_CONFIG_PATH"); env != "" {
		p = env
	}
	if len(path) > 0 && path[0] != "" {
		p = path[0]
	}

	var config Config

	content, err := os.ReadFile(p)
	if err != nil {
		return config, fmt.Errorf("trying to open mailer config file %s: %w", p, err)
	}

	if err := yaml.Unmarshal(content, &config); err != nil {
		return config, fmt.Errorf("unmarshaling mailer config %s: %w", p, err)
	}
	return config, nil
}

var (
	defaultMu     sync.Mutex
	defaultMailer *Mailer
)

// Init configures the process-wide mailer. It must be called exactly once;
// a second call returns ErrAlreadyConfigured. All package-level send
// functions use the mailer configured here.
func Init(cfg Config, logger *zap.SugaredLogger) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultMailer != nil {
		return ErrAlreadyConfigured
	}
	defaultMailer = New(cfg, logger)
	return nil
}

// Default returns the process-wide mailer, or an error if Init has not been
// called yet.
func Default() (*Mailer, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultMailer == nil {
		return nil, ErrNotConfigured
	}
	return defaultMailer, nil
}

// resetForTest clears the process-wide mailer so tests can call Init again.
func resetForTest() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultMailer = nil
}
