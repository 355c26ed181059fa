package linter

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// sarifLog is the subset of SARIF 2.1.0 that detekt emits and we read
type sarifLog struct {
	Runs []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver struct {
		Rules []sarifRule `json:"rules"`
	} `json:"driver"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	HelpURI          string       `json:"helpUri"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID     string          `json:"ruleId"`
	Level      string          `json:"level"`
	Message    sarifMessage    `json:"message"`
	Locations  []sarifLocation `json:"locations"`
	Properties sarifProperties `json:"properties"`
}

type sarifProperties struct {
	Severity    string `json:"severity"`
	DebtMinutes *int   `json:"debtMinutes"`
}

type sarifLocation struct {
	PhysicalLocation struct {
		ArtifactLocation struct {
			URI string `json:"uri"`
		} `json:"artifactLocation"`
		Region struct {
			StartLine   int          `json:"startLine"`
			StartColumn int          `json:"startColumn"`
			Snippet     sarifMessage `json:"snippet"`
		} `json:"region"`
	} `json:"physicalLocation"`
}

func decodeSARIF(data []byte) (*sarifLog, error) {
	var log sarifLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("invalid SARIF report: %w", err)
	}
	return &log, nil
}

// uriToPath converts a SARIF artifact URI to a local path
func uriToPath(uri string) string {
	if strings.HasPrefix(uri, "file:") {
		if u, err := url.Parse(uri); err == nil && u.Path != "" {
			return filepath.FromSlash(u.Path)
		}
	}
	if p, err := url.PathUnescape(uri); err == nil {
		return filepath.FromSlash(p)
	}
	return filepath.FromSlash(uri)
}
