package core

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteIssues writes issues to path as 2-space indented JSON, replacing any existing file
func WriteIssues(path string, issues []SimplifiedIssue) error {
	if issues == nil {
		issues = []SimplifiedIssue{}
	}

	data, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode issues: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
