package cache

import (
	"strings"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
)

// ResourceType names a kind of server data. Types are grouped by the part
// before the first colon, so invalidating "jobs" reaches "jobs:list" and
// "jobs:detail".
type ResourceType string

const (
	JobsList                  ResourceType = "jobs:list"
	JobDetail                 ResourceType = "jobs:detail"
	CandidatesList            ResourceType = "candidates:list"
	CandidateDetail           ResourceType = "candidates:detail"
	CandidateTimeline         ResourceType = "candidates:timeline"
	DashboardStats            ResourceType = "dashboard:stats"
	DashboardRecentApplicants ResourceType = "dashboard:recent-applicants"
	DashboardActiveJobs       ResourceType = "dashboard:active-jobs"
	Quota                     ResourceType = "quota"
	Packages                  ResourceType = "packages"
	PaymentsList              ResourceType = "payments:list"
	PaymentDetail             ResourceType = "payments:detail"
	ChatConversations         ResourceType = "chat:conversations"
	ChatMessages              ResourceType = "chat:messages"
	Profile                   ResourceType = "profile"
)

// Group returns the prefix of rt before the first colon
func (rt ResourceType) Group() string {
	if i := strings.IndexByte(string(rt), ':'); i >= 0 {
		return string(rt[:i])
	}
	return string(rt)
}

// HasPrefix reports whether rt is prefix or lies under it
func (rt ResourceType) HasPrefix(prefix string) bool {
	s := string(rt)
	return s == prefix || strings.HasPrefix(s, prefix+":")
}

func entryKey(rt ResourceType, p params.Params) string {
	return string(rt) + "?" + p.Key()
}

// Pattern selects cache entries for invalidation
type Pattern struct {
	// Prefix is a resource type or group, e.g. "jobs" or "candidates:detail"
	Prefix string
	// Match restricts the pattern to entries whose params contain these
	// values. Empty matches every entry under Prefix.
	Match params.Params
}

// Prefix selects every entry under a resource type or group
func Prefix(prefix string) Pattern {
	return Pattern{Prefix: prefix}
}

// Exact selects the entries of rt whose params contain p
func Exact(rt ResourceType, p params.Params) Pattern {
	return Pattern{Prefix: string(rt), Match: p}
}

// Matches reports whether an entry of rt with params p is selected
func (pt Pattern) Matches(rt ResourceType, p params.Params) bool {
	if !rt.HasPrefix(pt.Prefix) {
		return false
	}
	return p.Contains(pt.Match)
}

func (pt Pattern) String() string {
	if len(pt.Match.Values()) == 0 {
		return pt.Prefix
	}
	return pt.Prefix + pt.Match.String()
}
