// Package analyzer holds the analyzer registry and the reference rule sets.
// Every analyzer is a pure function of a file descriptor and its content, so
// the orchestrator may run them from many goroutines without locking.
package analyzer

import (
	"path"
	"regexp"
	"strings"

	"github.com/ludo-technologies/ktscan/domain"
)

// base carries the identity shared by every analyzer
type base struct {
	id       string
	category domain.Category
	applies  func(domain.FileDescriptor) bool
}

func (b base) ID() string                { return b.id }
func (b base) Category() domain.Category { return b.category }

func (b base) AppliesTo(file domain.FileDescriptor) bool {
	if b.applies == nil {
		return true
	}
	return b.applies(file)
}

// finding starts a finding at file:line with a deterministic id
func (b base) finding(file domain.FileDescriptor, line int, priority domain.Priority, title, description string) domain.Finding {
	return domain.Finding{
		ID:          domain.NewFindingID(b.id, file.RelativePath, line, b.category, title),
		AnalyzerID:  b.id,
		Category:    b.category,
		Priority:    priority,
		Title:       title,
		Description: description,
		File:        file.RelativePath,
		LineNumber:  line,
		Effort:      domain.EffortSmall,
	}
}

// sourceLine is one line of a file with comments stripped from Code
type sourceLine struct {
	Number int
	Text   string
	Code   string
}

// splitLines returns the lines of content with comment text removed from
// Code. Block comments spanning lines are blanked; string literals are kept.
func splitLines(content string) []sourceLine {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	lines := make([]sourceLine, len(raw))

	inBlock := false
	for i, text := range raw {
		var sb strings.Builder
		inString := false
		for j := 0; j < len(text); j++ {
			c := text[j]
			if inBlock {
				if c == '*' && j+1 < len(text) && text[j+1] == '/' {
					inBlock = false
					j++
				}
				continue
			}
			if inString {
				sb.WriteByte(c)
				if c == '\\' && j+1 < len(text) {
					sb.WriteByte(text[j+1])
					j++
				} else if c == '"' {
					inString = false
				}
				continue
			}
			if c == '"' {
				inString = true
				sb.WriteByte(c)
				continue
			}
			if c == '/' && j+1 < len(text) {
				if text[j+1] == '/' {
					break
				}
				if text[j+1] == '*' {
					inBlock = true
					j++
					continue
				}
			}
			sb.WriteByte(c)
		}
		lines[i] = sourceLine{Number: i + 1, Text: text, Code: sb.String()}
	}
	return lines
}

var stringLiteral = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)

// withoutStrings blanks string literals so code patterns do not match text
func withoutStrings(code string) string {
	return stringLiteral.ReplaceAllString(code, `""`)
}

// snippet returns the trimmed source line for display
func snippet(line sourceLine) string {
	return strings.TrimSpace(line.Text)
}

// nextCodeLine returns the index of the next line with code after i, or -1
func nextCodeLine(lines []sourceLine, i int) int {
	for j := i + 1; j < len(lines); j++ {
		if strings.TrimSpace(lines[j].Code) != "" {
			return j
		}
	}
	return -1
}

func isKotlin(file domain.FileDescriptor) bool {
	ext := strings.ToLower(path.Ext(file.RelativePath))
	return ext == ".kt" || ext == ".kts"
}

func isTestFile(file domain.FileDescriptor) bool {
	if file.Layer == domain.LayerTest {
		return true
	}
	name := strings.TrimSuffix(path.Base(file.RelativePath), path.Ext(file.RelativePath))
	return strings.HasSuffix(name, "Test") || strings.HasSuffix(name, "Tests")
}

func nonTestKotlin(file domain.FileDescriptor) bool {
	return isKotlin(file) && !isTestFile(file)
}

func inLayers(layers ...domain.Layer) func(domain.FileDescriptor) bool {
	return func(file domain.FileDescriptor) bool {
		for _, l := range layers {
			if file.Layer == l {
				return true
			}
		}
		return false
	}
}

// indentWidth counts leading whitespace, tabs as four columns
func indentWidth(s string) int {
	w := 0
	for _, c := range s {
		switch c {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}
