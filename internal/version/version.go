// Package version decides how a fetched article relates to what a previous
// run already recorded.
package version

import "github.com/hydrocare/harvester/internal/state"

// Action classifies the outcome of comparing a fetched article against the
// crawl state.
type Action int

const (
	// ActionSkip means the content fingerprint is unchanged; nothing is
	// written and the state entry stays as it is.
	ActionSkip Action = iota
	// ActionNew means the URL has never been recorded.
	ActionNew
	// ActionUpdate means the URL is known but its fingerprint changed.
	ActionUpdate
)

func (a Action) String() string {
	switch a {
	case ActionSkip:
		return "skip"
	case ActionNew:
		return "new"
	case ActionUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Decision is the full verdict for one article: the action to take, the
// version number to record, and for updates the fingerprint being replaced.
type Decision struct {
	Action       Action
	Version      int
	PreviousHash string
}

// ShouldFetch reports whether the detail page for url needs fetching at all.
// With versioning disabled, a known URL is final and its fetch is elided
// entirely; with versioning enabled every URL is fetched so changes can be
// detected.
func ShouldFetch(known bool, versioning bool) bool {
	return versioning || !known
}

// Decide compares a freshly computed fingerprint against the prior state
// entry. prior is ignored when known is false.
func Decide(prior state.Entry, known bool, newHash string, versioning bool) Decision {
	if !known {
		return Decision{Action: ActionNew, Version: 1}
	}
	if !versioning || prior.Hash == newHash {
		return Decision{Action: ActionSkip, Version: prior.Version}
	}
	return Decision{
		Action:       ActionUpdate,
		Version:      prior.Version + 1,
		PreviousHash: prior.Hash,
	}
}
