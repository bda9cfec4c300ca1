package extractor

import (
	"path/filepath"
	"sort"

	"github.com/devkit-tools/devkit/internal/types"
)

// Priority tiers for read ordering. Lower tiers are read first.
const (
	tierImportantName  = 0
	tierPrimarySource  = 1
	tierRecognizedText = 2
	tierRemainder      = 3
)

// importantNamePatterns rank manifest, build, and top-level documentation
// files ahead of everything else.
var importantNamePatterns = []string{
	"README*", "readme*", "LICENSE*", "CHANGELOG*",
	"Makefile", "Dockerfile", "docker-compose.*",
	"go.mod", "package.json", "pyproject.toml",
	"setup.py", "setup.cfg", "requirements*.txt",
	"Cargo.toml", "Gemfile", "manage.py",
}

// primarySourceExtensions rank general program source ahead of markup and data.
var primarySourceExtensions = map[string]struct{}{
	".go": {}, ".py": {}, ".js": {}, ".jsx": {}, ".ts": {}, ".tsx": {},
	".rs": {}, ".java": {}, ".rb": {}, ".php": {}, ".c": {}, ".h": {},
	".cpp": {}, ".hpp": {}, ".cs": {}, ".swift": {}, ".kt": {}, ".dart": {},
}

// recognizedTextExtensions cover markup, configuration, and documentation formats.
var recognizedTextExtensions = map[string]struct{}{
	".html": {}, ".htm": {}, ".css": {}, ".scss": {}, ".sass": {},
	".json": {}, ".yaml": {}, ".yml": {}, ".toml": {}, ".ini": {}, ".cfg": {}, ".conf": {},
	".md": {}, ".rst": {}, ".txt": {},
	".sql": {}, ".graphql": {}, ".gql": {},
	".sh": {}, ".xml": {}, ".proto": {},
}

// priorityTier assigns the read-priority tier for a file.
func priorityTier(file *types.FileNode) int {
	for _, namePattern := range importantNamePatterns {
		isMatched, matchError := filepath.Match(namePattern, file.Name)
		if matchError == nil && isMatched {
			return tierImportantName
		}
	}
	if _, isPrimary := primarySourceExtensions[file.Extension]; isPrimary {
		return tierPrimarySource
	}
	if _, isRecognized := recognizedTextExtensions[file.Extension]; isRecognized {
		return tierRecognizedText
	}
	return tierRemainder
}

// RankFiles orders candidate files by read priority: tier ascending, then path
// depth ascending (shallower first), then relative path lexicographically.
// The input slice is not modified.
func RankFiles(files []*types.FileNode) []*types.FileNode {
	ranked := append([]*types.FileNode(nil), files...)
	sort.SliceStable(ranked, func(first, second int) bool {
		firstTier := priorityTier(ranked[first])
		secondTier := priorityTier(ranked[second])
		if firstTier != secondTier {
			return firstTier < secondTier
		}
		if ranked[first].Depth != ranked[second].Depth {
			return ranked[first].Depth < ranked[second].Depth
		}
		return ranked[first].RelativePath < ranked[second].RelativePath
	})
	return ranked
}
