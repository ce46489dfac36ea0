package variable

import (
	"os"
	"regexp"
	"strings"
)

var varPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// shellUnsafeChars are characters that could enable shell injection.
var shellUnsafeChars = strings.NewReplacer(
	"`", "",
	"$", "",
	"!", "",
	"&", "",
	"|", "",
	";", "",
	"\n", " ",
	"\r", "",
)

// sanitizeForShell strips dangerous shell metacharacters from variable values
// that will be interpolated into shell commands.
func sanitizeForShell(val string) string {
	return shellUnsafeChars.Replace(val)
}

// Resolve replaces ${VAR_NAME} patterns in template with values from vars.
// A name missing from vars falls back to the environment; when neither has
// it, the original ${VAR_NAME} is preserved.
func Resolve(template string, vars map[string]string) string {
	return resolve(template, vars, false)
}

// ResolveArgs resolves every token of a step command. Tokens of shell
// commands have vars values sanitized, since they are interpreted by the
// shell; invocation tokens are passed to the program as-is.
func ResolveArgs(args []string, vars map[string]string, shell bool) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = resolve(a, vars, shell)
	}
	return out
}

func resolve(template string, vars map[string]string, sanitize bool) string {
	return varPattern.ReplaceAllStringFunc(template, func(match string) string {
		varName := match[2 : len(match)-1]
		varName = strings.TrimPrefix(varName, "env:")

		if val, ok := vars[varName]; ok {
			if sanitize {
				return sanitizeForShell(val)
			}
			return val
		}

		// Environment values are trusted, no sanitization.
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}

		return match
	})
}

// UnresolvedVars returns the names referenced in template that are neither
// in vars nor in the environment, in first-seen order.
func UnresolvedVars(template string, vars map[string]string) []string {
	matches := varPattern.FindAllStringSubmatch(template, -1)
	var unresolved []string
	seen := make(map[string]bool)

	for _, match := range matches {
		varName := strings.TrimPrefix(match[1], "env:")
		if seen[varName] {
			continue
		}
		seen[varName] = true

		if _, ok := vars[varName]; ok {
			continue
		}
		if _, ok := os.LookupEnv(varName); !ok {
			unresolved = append(unresolved, varName)
		}
	}

	return unresolved
}
