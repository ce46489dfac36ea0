package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rigdev/seqtest/internal/config"
)

func TestQuoteArgs(t *testing.T) {
	tests := []struct {
		argv []string
		want string
	}{
		{[]string{"pacaptr", "-Si", "wget"}, "pacaptr -Si wget"},
		{[]string{"sh", "-c", "echo hi; exit 1"}, "sh -c 'echo hi; exit 1'"},
		{[]string{"echo", "it's"}, `echo 'it'"'"'s'`},
		{[]string{"echo", ""}, "echo ''"},
		{[]string{"ls", "/usr/share/man8", "--color=auto"}, "ls /usr/share/man8 --color=auto"},
	}
	for _, tt := range tests {
		if got := quoteArgs(tt.argv); got != tt.want {
			t.Errorf("quoteArgs(%q) = %q, want %q", tt.argv, got, tt.want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	got, err := expandHome("~/.ssh/id_ed25519")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(home, ".ssh", "id_ed25519"); got != want {
		t.Errorf("expandHome = %q, want %q", got, want)
	}

	if got, _ := expandHome("/etc/ssh/key"); got != "/etc/ssh/key" {
		t.Errorf("absolute path changed: %q", got)
	}
}

func TestBuildHostKeyCallback_BadKnownHosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_hosts")
	if err := os.WriteFile(path, []byte("not a known hosts line\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := buildHostKeyCallback(config.SSHConfig{Host: "example.com", KnownHosts: path})
	if err == nil {
		t.Fatal("expected error for malformed known_hosts")
	}
	if !strings.Contains(err.Error(), "parse known_hosts") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestSSHLauncher_RequiresAuth(t *testing.T) {
	l := NewSSHLauncher(config.SSHConfig{Host: "127.0.0.1", User: "test"})
	_, err := l.Launch(context.Background(), []string{"true"})
	if err == nil || !strings.Contains(err.Error(), "key or password") {
		t.Fatalf("error = %v, want missing auth error", err)
	}
}
