package release

import "github.com/papapumpkin/pybump/internal/bump"

// TagSpec names the git artifacts derived from a version transition.
type TagSpec struct {
	CommitMessage string
	TagName       string
}

// NameTag derives the commit message and tag name for a bump result. The
// commit message is the canonical render of the new version, unprefixed.
// Pre-release versions always receive the test- tag prefix; testMode
// forces it for normal releases too. Everything else gets a v prefix.
func NameTag(res bump.Result, testMode bool) TagSpec {
	rendered := res.New.String()
	prefix := "v"
	if testMode || res.New.IsPreRelease() {
		prefix = "test-"
	}
	return TagSpec{
		CommitMessage: rendered,
		TagName:       prefix + rendered,
	}
}
