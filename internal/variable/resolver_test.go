package variable

import (
	"slices"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]string
		want     string
	}{
		{
			name:     "basic substitution",
			template: "${PKG}",
			vars:     map[string]string{"PKG": "wget"},
			want:     "wget",
		},
		{
			name:     "multiple variables",
			template: "${A}-${B}",
			vars:     map[string]string{"A": "foo", "B": "bar"},
			want:     "foo-bar",
		},
		{
			name:     "pattern with anchors",
			template: "^Package: ${PKG}$",
			vars:     map[string]string{"PKG": "wget"},
			want:     "^Package: wget$",
		},
		{
			name:     "unresolved variable preserved",
			template: "${SEQTEST_UNDEFINED}",
			vars:     map[string]string{},
			want:     "${SEQTEST_UNDEFINED}",
		},
		{
			name:     "empty value",
			template: "${EMPTY}",
			vars:     map[string]string{"EMPTY": ""},
			want:     "",
		},
		{
			name:     "env prefix reads vars first",
			template: "${env:PKG}",
			vars:     map[string]string{"PKG": "fish"},
			want:     "fish",
		},
		{
			name:     "no variables",
			template: "plain text",
			vars:     nil,
			want:     "plain text",
		},
		{
			name:     "invocation values are not sanitized",
			template: "${Q}",
			vars:     map[string]string{"Q": "a|b"},
			want:     "a|b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.template, tt.vars); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestResolveEnvFallback(t *testing.T) {
	t.Setenv("SEQTEST_TARGET", "x86_64")

	if got := Resolve("--target=${SEQTEST_TARGET}", nil); got != "--target=x86_64" {
		t.Errorf("got %q", got)
	}
	// vars shadow the environment.
	vars := map[string]string{"SEQTEST_TARGET": "aarch64"}
	if got := Resolve("${SEQTEST_TARGET}", vars); got != "aarch64" {
		t.Errorf("got %q", got)
	}
}

func TestResolveArgs(t *testing.T) {
	vars := map[string]string{"PKG": "wget; rm -rf /"}

	got := ResolveArgs([]string{"-S", "${PKG}"}, vars, false)
	if !slices.Equal(got, []string{"-S", "wget; rm -rf /"}) {
		t.Errorf("invocation args = %q", got)
	}

	got = ResolveArgs([]string{"echo", "${PKG}"}, vars, true)
	if !slices.Equal(got, []string{"echo", "wget rm -rf /"}) {
		t.Errorf("shell args = %q", got)
	}
}

func TestUnresolvedVars(t *testing.T) {
	t.Setenv("SEQTEST_SET", "1")

	got := UnresolvedVars("${A} ${SEQTEST_SET} ${MISSING_ONE} ${env:MISSING_TWO} ${MISSING_ONE}",
		map[string]string{"A": "a"})
	want := []string{"MISSING_ONE", "MISSING_TWO"}
	if !slices.Equal(got, want) {
		t.Errorf("UnresolvedVars = %v, want %v", got, want)
	}

	if got := UnresolvedVars("no refs", nil); len(got) != 0 {
		t.Errorf("UnresolvedVars = %v, want none", got)
	}
}
