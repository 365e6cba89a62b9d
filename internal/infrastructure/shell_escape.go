package infrastructure

import "strings"

// shellSpecial lists characters with special meaning in a shell.
const shellSpecial = " \t'\"$`\\!*?[](){}|;<>&~#%\n\r"

// ShellEscape quotes a string for safe display in a logged command line.
// exec.Command itself never goes through a shell, so this is cosmetic.
func ShellEscape(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, shellSpecial) {
		return s
	}

	var b strings.Builder
	b.WriteByte('\'')
	for _, c := range s {
		if c == '\'' {
			// end quote, escaped quote, start quote
			b.WriteString(`'"'"'`)
			continue
		}
		b.WriteRune(c)
	}
	b.WriteByte('\'')
	return b.String()
}

// ShellEscapeCommand renders a binary and its arguments as one
// display-safe command line.
func ShellEscapeCommand(binary string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellEscape(binary))
	for _, arg := range args {
		parts = append(parts, ShellEscape(arg))
	}
	return strings.Join(parts, " ")
}
