package version

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hydrocare/harvester/internal/state"
)

func TestShouldFetch(t *testing.T) {
	tests := []struct {
		name       string
		known      bool
		versioning bool
		want       bool
	}{
		{"unknown url always fetched", false, false, true},
		{"unknown url fetched with versioning", false, true, true},
		{"known url skipped without versioning", true, false, false},
		{"known url refetched with versioning", true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldFetch(tt.known, tt.versioning))
		})
	}
}

func TestDecide(t *testing.T) {
	prior := state.Entry{Hash: "aaa", Version: 3}

	tests := []struct {
		name       string
		prior      state.Entry
		known      bool
		newHash    string
		versioning bool
		want       Decision
	}{
		{
			name:    "unknown url is new at version 1",
			newHash: "bbb",
			want:    Decision{Action: ActionNew, Version: 1},
		},
		{
			name:       "unchanged hash is skipped",
			prior:      prior,
			known:      true,
			newHash:    "aaa",
			versioning: true,
			want:       Decision{Action: ActionSkip, Version: 3},
		},
		{
			name:       "changed hash bumps version and chains previous hash",
			prior:      prior,
			known:      true,
			newHash:    "bbb",
			versioning: true,
			want:       Decision{Action: ActionUpdate, Version: 4, PreviousHash: "aaa"},
		},
		{
			name:    "changed hash without versioning stays skipped",
			prior:   prior,
			known:   true,
			newHash: "bbb",
			want:    Decision{Action: ActionSkip, Version: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.prior, tt.known, tt.newHash, tt.versioning)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "skip", ActionSkip.String())
	assert.Equal(t, "new", ActionNew.String())
	assert.Equal(t, "update", ActionUpdate.String())
}
