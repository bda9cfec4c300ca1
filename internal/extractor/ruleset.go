package extractor

import (
	"path/filepath"
	"strings"

	"github.com/devkit-tools/devkit/internal/utils"
)

// directoryPatternSuffix marks patterns that apply only to directory names.
const directoryPatternSuffix = "/"

// defaultIgnoredDirectories lists directory names pruned from traversal by default:
// version control, virtual environments, dependency trees, build output, and tool caches.
var defaultIgnoredDirectories = []string{
	".git/", ".github/", ".gitlab/", ".hg/", ".svn/",
	".venv/", "venv/", "env/", "virtualenv/",
	"node_modules/", "bower_components/", "site-packages/",
	"__pycache__/", ".pytest_cache/", ".mypy_cache/", ".ruff_cache/", ".tox/",
	".idea/", ".vscode/", ".vs/",
	"dist/", "build/", "out/", "target/",
	".eggs/", "eggs/", "coverage/",
}

// defaultIgnoredFilePatterns lists file name globs excluded from content by default:
// OS litter, secrets, lock files, compiled artifacts, and binary media.
var defaultIgnoredFilePatterns = []string{
	".DS_Store", "Thumbs.db", "desktop.ini",
	".env", ".env.*",
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "poetry.lock", "Pipfile.lock",
	"*.pyc", "*.pyo", "*.pyd",
	"*.so", "*.dll", "*.dylib", "*.exe", "*.bin",
	"*.log", "*.tmp", "*.temp", "*.cache", "*.swp", "*.swo",
	"*.db", "*.sqlite3",
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.ico", "*.pdf",
	"*.zip", "*.tar", "*.gz", "*.7z",
	"*.woff", "*.woff2", "*.ttf", "*.eot",
	"*.mp3", "*.mp4", "*.avi", "*.mov",
}

// IgnoreRuleSet holds the glob patterns tested against directory and file names
// during traversal. A pattern with a trailing slash applies to directories only;
// every other pattern is matched with filepath.Match semantics against both
// directory and file names.
type IgnoreRuleSet struct {
	patterns []string
}

// NewIgnoreRuleSet combines built-in defaults with user-supplied patterns.
// Duplicates and blank entries are dropped, first occurrence wins.
func NewIgnoreRuleSet(extraPatterns []string) *IgnoreRuleSet {
	combined := make([]string, 0, len(defaultIgnoredDirectories)+len(defaultIgnoredFilePatterns)+len(extraPatterns))
	combined = append(combined, defaultIgnoredDirectories...)
	combined = append(combined, defaultIgnoredFilePatterns...)
	for _, pattern := range extraPatterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		combined = append(combined, trimmedPattern)
	}
	return &IgnoreRuleSet{patterns: utils.DeduplicatePatterns(combined)}
}

// MatchesDirectory reports whether a directory with the given name should be
// pruned entirely from traversal.
func (rules *IgnoreRuleSet) MatchesDirectory(directoryName string) bool {
	for _, patternValue := range rules.patterns {
		candidatePattern := patternValue
		if strings.HasSuffix(patternValue, directoryPatternSuffix) {
			candidatePattern = strings.TrimSuffix(patternValue, directoryPatternSuffix)
		}
		isMatched, matchError := filepath.Match(candidatePattern, directoryName)
		if matchError == nil && isMatched {
			return true
		}
	}
	return false
}

// MatchesFile reports whether a file with the given name is excluded from content.
// Directory-only patterns never match file names.
func (rules *IgnoreRuleSet) MatchesFile(fileName string) bool {
	for _, patternValue := range rules.patterns {
		if strings.HasSuffix(patternValue, directoryPatternSuffix) {
			continue
		}
		isMatched, matchError := filepath.Match(patternValue, fileName)
		if matchError == nil && isMatched {
			return true
		}
	}
	return false
}

// Patterns returns a copy of the effective pattern list.
func (rules *IgnoreRuleSet) Patterns() []string {
	return append([]string(nil), rules.patterns...)
}
