package scanresult

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anuraagbaishya/paladin/pkg/sarif"
)

func TestNew(t *testing.T) {
	doc := &sarif.Log{
		Version: "2.1.0",
		Runs: []sarif.Run{{
			Results: []sarif.Result{{RuleID: "hardcoded-secret"}},
		}},
	}

	s := New("acme/widget", doc, "/var/lib/paladin/clones/acme/widget-abcd1234")

	assert.False(t, s.ID.IsZero())
	assert.Equal(t, "acme/widget", s.Repo)
	assert.Equal(t, int64(1), s.Version)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, "/var/lib/paladin/clones/acme/widget-abcd1234", s.WorkspacePath)
}

func TestFindingCount(t *testing.T) {
	doc := &sarif.Log{
		Version: "2.1.0",
		Runs: []sarif.Run{{
			Results: []sarif.Result{{RuleID: "a"}, {RuleID: "b"}},
		}},
	}

	s := New("acme/widget", doc, "")
	assert.Equal(t, 2, s.FindingCount())

	s.Document = nil
	assert.Equal(t, 0, s.FindingCount())
}
