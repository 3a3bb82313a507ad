package query

import "testing"

// TestClassifyDisjointness is property P1: for every combination of traits,
// exactly one lane applies.
func TestClassifyDisjointness(t *testing.T) {
	cases := []struct {
		name string
		info *QueryInfo
		want Lane
	}{
		{"unclassified", nil, LanePost},
		{"create index", &QueryInfo{HasCreateIndex: true}, LanePre},
		{"drop index", &QueryInfo{HasDropIndex: true}, LanePost},
		{"plain create", &QueryInfo{HasCreate: true}, LaneVertex},
		{"create with match", &QueryInfo{HasCreate: true, HasMatch: true}, LaneEdge},
		{"create with merge", &QueryInfo{HasCreate: true, HasMerge: true}, LanePost},
		{"create with detach delete", &QueryInfo{HasCreate: true, HasDetachDelete: true}, LanePost},
		{"create with remove", &QueryInfo{HasCreate: true, HasRemove: true}, LanePost},
		{"match alone", &QueryInfo{HasMatch: true}, LanePost},
		{"detach delete alone", &QueryInfo{HasDetachDelete: true}, LanePost},
		{"remove alone", &QueryInfo{HasRemove: true}, LanePost},
		{"storage mode", &QueryInfo{HasStorageMode: true}, LanePost},
		{"create index and create", &QueryInfo{HasCreate: true, HasCreateIndex: true}, LanePre},
		{"empty traits", &QueryInfo{}, LanePost},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Classify(c.info); got != c.want {
				t.Errorf("Classify(%+v) = %s, want %s", c.info, got, c.want)
			}
		})
	}
}
