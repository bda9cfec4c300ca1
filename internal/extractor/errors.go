package extractor

import "errors"

// ErrRootNotFound indicates the extraction root does not exist or is not a readable directory.
var ErrRootNotFound = errors.New("root path not found")

// ErrInvalidBudget indicates a non-positive per-file or total byte limit.
var ErrInvalidBudget = errors.New("invalid extraction budget")
