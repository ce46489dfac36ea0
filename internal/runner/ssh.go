package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rigdev/seqtest/internal/config"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	defaultSSHPort     = 22
	defaultDialTimeout = 30 * time.Second
)

// SSHLauncher runs each step in its own session on a remote host.
type SSHLauncher struct {
	cfg config.SSHConfig
}

var _ Launcher = (*SSHLauncher)(nil)

// NewSSHLauncher creates an SSHLauncher from connection settings.
func NewSSHLauncher(cfg config.SSHConfig) *SSHLauncher {
	return &SSHLauncher{cfg: cfg}
}

// Launch dials the host and starts argv, quoted for a POSIX login shell.
// The session's stdout and stderr share one pipe.
func (l *SSHLauncher) Launch(ctx context.Context, argv []string) (Process, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}

	client, err := l.dial(ctx)
	if err != nil {
		return nil, err
	}

	session, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ssh session: %w", err)
	}

	pr, pw := io.Pipe()
	session.Stdout = pw
	session.Stderr = pw

	if err := session.Start(quoteArgs(argv)); err != nil {
		session.Close()
		client.Close()
		return nil, fmt.Errorf("ssh start: %w", err)
	}

	p := &sshProcess{
		client:  client,
		session: session,
		out:     pr,
		done:    make(chan error, 1),
	}
	// Wait returns after both output copies finish, so closing the writer
	// here delivers EOF only after the last byte.
	go func() {
		err := session.Wait()
		pw.Close()
		p.done <- err
	}()
	return p, nil
}

func (l *SSHLauncher) dial(ctx context.Context) (*ssh.Client, error) {
	authMethods := make([]ssh.AuthMethod, 0, 2)

	if l.cfg.Key != "" {
		keyPath, err := expandHome(l.cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("resolve ssh key path: %w", err)
		}
		keyBytes, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("read ssh key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parse ssh key: %w", err)
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}
	if l.cfg.Password != "" {
		authMethods = append(authMethods, ssh.Password(l.cfg.Password))
	}
	if len(authMethods) == 0 {
		return nil, errors.New("ssh auth requires key or password")
	}

	hostKeyCallback, err := buildHostKeyCallback(l.cfg)
	if err != nil {
		return nil, fmt.Errorf("build host key callback: %w", err)
	}

	sshConfig := &ssh.ClientConfig{
		User:            l.cfg.User,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         defaultDialTimeout,
	}

	port := l.cfg.Port
	if port == 0 {
		port = defaultSSHPort
	}
	addr := net.JoinHostPort(l.cfg.Host, strconv.Itoa(port))

	dialer := net.Dialer{Timeout: defaultDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("ssh dial: %w", err)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ssh handshake: %w", err)
	}
	return ssh.NewClient(c, chans, reqs), nil
}

type sshProcess struct {
	client  *ssh.Client
	session *ssh.Session
	out     io.Reader
	done    chan error
}

func (p *sshProcess) Output() io.Reader { return p.out }

func (p *sshProcess) Wait() (int, error) {
	err := <-p.done
	p.session.Close()
	p.client.Close()

	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitStatus(), nil
	}
	var missing *ssh.ExitMissingError
	if errors.As(err, &missing) {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// buildHostKeyCallback verifies host keys against KnownHosts, or
// ~/.ssh/known_hosts when unset. Without either file it accepts any key.
func buildHostKeyCallback(cfg config.SSHConfig) (ssh.HostKeyCallback, error) {
	knownHostsPath := cfg.KnownHosts

	if knownHostsPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			defaultPath := filepath.Join(home, ".ssh", "known_hosts")
			if _, statErr := os.Stat(defaultPath); statErr == nil {
				knownHostsPath = defaultPath
			}
		}
	} else {
		resolved, err := expandHome(knownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("resolve known_hosts path: %w", err)
		}
		knownHostsPath = resolved
	}

	if knownHostsPath == "" {
		log.Printf("[runner] no known_hosts file; host key for %s will not be verified", cfg.Host)
		return ssh.InsecureIgnoreHostKey(), nil
	}

	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("parse known_hosts %s: %w", knownHostsPath, err)
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		if err := callback(hostname, remote, key); err != nil {
			return fmt.Errorf("host key verification failed for %s: %w (add the host key to %s)", hostname, err, knownHostsPath)
		}
		return nil
	}, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get user home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// quoteArgs joins argv into one POSIX shell command line. Tokens made only
// of safe characters are left bare; everything else is single-quoted.
func quoteArgs(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = quoteArg(a)
	}
	return strings.Join(quoted, " ")
}

func quoteArg(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
			strings.ContainsRune("-_./=:,+@%", r)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
