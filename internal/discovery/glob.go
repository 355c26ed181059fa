package discovery

import (
	"fmt"
	"regexp"
	"strings"
)

// CompileGlob translates an exclusion glob into an anchored regular
// expression matched against slash-separated relative paths.
//
//	**/   zero or more leading directories
//	/**   the directory itself or anything below it
//	**    anything, across separators
//	*     anything within one path segment
//	?     one character within a segment
func CompileGlob(pattern string) (*regexp.Regexp, error) {
	p := strings.TrimPrefix(strings.ReplaceAll(pattern, "\\", "/"), "./")
	if p == "" {
		return nil, fmt.Errorf("empty exclusion pattern")
	}

	var sb strings.Builder
	sb.WriteString("^")

	for i := 0; i < len(p); {
		switch {
		case strings.HasPrefix(p[i:], "**/"):
			sb.WriteString("(?:.*/)?")
			i += 3
		case strings.HasPrefix(p[i:], "/**") && i+3 == len(p):
			sb.WriteString("(?:/.*)?")
			i += 3
		case strings.HasPrefix(p[i:], "**"):
			sb.WriteString(".*")
			i += 2
		case p[i] == '*':
			sb.WriteString("[^/]*")
			i++
		case p[i] == '?':
			sb.WriteString("[^/]")
			i++
		default:
			sb.WriteString(regexp.QuoteMeta(p[i : i+1]))
			i++
		}
	}

	// A bare name such as "build" excludes that entry at any depth
	if !strings.Contains(p, "/") {
		return regexp.Compile("^(?:.*/)?" + strings.TrimPrefix(sb.String(), "^") + "$")
	}

	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

// patternSet is a compiled list of exclusion globs
type patternSet struct {
	patterns []string
	regexps  []*regexp.Regexp
}

func compilePatterns(patterns []string) (*patternSet, error) {
	ps := &patternSet{}
	for _, pattern := range patterns {
		re, err := CompileGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclusion pattern %q: %w", pattern, err)
		}
		ps.patterns = append(ps.patterns, pattern)
		ps.regexps = append(ps.regexps, re)
	}
	return ps, nil
}

// matches reports whether relPath matches any pattern. Directories are also
// tested with a trailing slash so "dir/**" style patterns prune them.
func (ps *patternSet) matches(relPath string, isDir bool) bool {
	for _, re := range ps.regexps {
		if re.MatchString(relPath) {
			return true
		}
		if isDir && re.MatchString(relPath+"/") {
			return true
		}
	}
	return false
}
