package fs

import (
	"regexp"
	"strings"
)

// MigrateSourcecode rewrites the nested include form of a library's own headers,
// #include "lib/lib.h" or #include 'lib/lib.h', into the flat form #include "lib.h".
//
// Only lines whose first token is the include directive are touched. Lines inside
// block comments and continuation lines are left as is, as are includes of any
// other library.
func MigrateSourcecode(text, libraryName string) string {
	if libraryName == "" {
		return text
	}

	nested := regexp.QuoteMeta(libraryName) + "/" + regexp.QuoteMeta(libraryName)
	directive := regexp.MustCompile(`^(\s*#\s*include\s*)(?:"` + nested + `(\.[A-Za-z0-9_]+)"|'` + nested + `(\.[A-Za-z0-9_]+)')`)

	lines := strings.Split(text, "\n")
	inComment, continued := false, false
	for i, line := range lines {
		skip := inComment || continued
		continued = strings.HasSuffix(strings.TrimRight(line, "\r"), `\`)
		inComment = blockCommentOpen(line, inComment)
		if skip {
			continue
		}

		m := directive.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		ext := ""
		if m[4] >= 0 {
			ext = line[m[4]:m[5]]
		} else {
			ext = line[m[6]:m[7]]
		}
		lines[i] = line[:m[3]] + `"` + libraryName + ext + `"` + line[m[1]:]
	}
	return strings.Join(lines, "\n")
}

// MigrateSourcecode implements core.SourceMigrator.
func (r *Repository) MigrateSourcecode(text, libraryName string) string {
	return MigrateSourcecode(text, libraryName)
}

// blockCommentOpen reports whether a /* comment is still open at the end of line.
// String and character literals are skipped so "/*" inside them does not count.
func blockCommentOpen(line string, open bool) bool {
	var literal byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		next := byte(0)
		if i+1 < len(line) {
			next = line[i+1]
		}

		switch {
		case open:
			if c == '*' && next == '/' {
				open = false
				i++
			}
		case literal != 0:
			if c == '\\' {
				i++
			} else if c == literal {
				literal = 0
			}
		case c == '"' || c == '\'':
			literal = c
		case c == '/' && next == '/':
			return false
		case c == '/' && next == '*':
			open = true
			i++
		}
	}
	return open
}
