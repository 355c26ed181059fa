package analyzer

import (
	"regexp"
	"strings"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/constants"
)

var (
	queryAnnotation = regexp.MustCompile(`@Query\b`)
	selectStar      = regexp.MustCompile(`(?i)"\s*select\s+\*\s`)
	daoAnnotation   = regexp.MustCompile(`@(Query|Insert|Update|Delete|Upsert|RawQuery|Transaction)\b`)
	asyncReturnType = regexp.MustCompile(`\b(Flow|LiveData|PagingSource|Flowable|Observable|Single|Maybe|Completable)\b`)
	suspendModifier = regexp.MustCompile(`\bsuspend\s+fun\b`)
	funKeyword      = regexp.MustCompile(`\bfun\s`)
)

// daoLookahead bounds how many code lines may separate a DAO annotation from
// the function it annotates
const daoLookahead = 6

// DatabaseAnalyzer checks Room query and DAO conventions
type DatabaseAnalyzer struct {
	base
}

// NewDatabaseAnalyzer creates the database analyzer
func NewDatabaseAnalyzer() *DatabaseAnalyzer {
	return &DatabaseAnalyzer{base{
		id:       constants.AnalyzerDatabase,
		category: domain.CategoryDatabase,
		applies: func(file domain.FileDescriptor) bool {
			return file.Layer == domain.LayerData && isKotlin(file)
		},
	}}
}

// Analyze reports SELECT * queries and DAO functions that block the caller
func (a *DatabaseAnalyzer) Analyze(file domain.FileDescriptor, content string) ([]domain.Finding, error) {
	lines := splitLines(content)
	isDao := strings.Contains(content, "@Dao")
	var findings []domain.Finding
	reported := make(map[int]bool)

	for i, line := range lines {
		if queryAnnotation.MatchString(line.Code) {
			star := selectStar.MatchString(line.Code)
			if !star {
				if next := nextCodeLine(lines, i); next >= 0 {
					star = selectStar.MatchString(lines[next].Code)
				}
			}
			if star {
				f := a.finding(file, line.Number, domain.PriorityMedium,
					"SELECT * in query",
					"Selecting every column couples the query to the table layout and loads data the caller never reads.")
				f.CodeSnippet = snippet(line)
				f.Recommendation = "List the columns the result type needs."
				f.BeforeExample = `@Query("SELECT * FROM meals")`
				f.AfterExample = `@Query("SELECT id, name FROM meals")`
				findings = append(findings, f)
			}
		}

		if !isDao || !daoAnnotation.MatchString(line.Code) {
			continue
		}
		fn := -1
		for j, n := i, 0; j >= 0 && n < daoLookahead; j, n = nextCodeLine(lines, j), n+1 {
			if funKeyword.MatchString(lines[j].Code) {
				fn = j
				break
			}
		}
		if fn < 0 || reported[fn] {
			continue
		}
		decl := lines[fn]
		if suspendModifier.MatchString(decl.Code) || asyncReturnType.MatchString(decl.Code) {
			continue
		}
		reported[fn] = true
		f := a.finding(file, decl.Number, domain.PriorityMedium,
			"Blocking DAO function",
			"This DAO function runs on the calling thread; Room throws when it is called from the main thread.")
		f.CodeSnippet = snippet(decl)
		f.Recommendation = "Make the function suspend or return a Flow."
		f.BeforeExample = "fun meals(): List<Meal>"
		f.AfterExample = "fun meals(): Flow<List<Meal>>"
		f.Effort = domain.EffortTrivial
		findings = append(findings, f)
	}

	return findings, nil
}
