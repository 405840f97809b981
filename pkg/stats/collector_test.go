package stats

import "testing"

func TestCollector_Counts(t *testing.T) {
	c := New()

	c.RecordCall("players")
	c.RecordCall("players")
	c.RecordCacheHit("players")
	c.RecordCall("fixtures")

	snap := c.Snapshot()
	if got := snap["players"]; got.Calls != 2 || got.CacheHits != 1 {
		t.Errorf("players = %+v, want {Calls:2 CacheHits:1}", got)
	}
	if got := snap["fixtures"]; got.Calls != 1 || got.CacheHits != 0 {
		t.Errorf("fixtures = %+v, want {Calls:1 CacheHits:0}", got)
	}
}

func TestCollector_Quota(t *testing.T) {
	c := New()

	if _, ok := c.LastQuota(); ok {
		t.Error("LastQuota() reported a reading before SetQuota")
	}

	c.SetQuota(7458, 7500)
	q, ok := c.LastQuota()
	if !ok {
		t.Fatal("LastQuota() reported no reading after SetQuota")
	}
	if q.Remaining != 7458 || q.Limit != 7500 {
		t.Errorf("LastQuota() = %+v, want {7458 7500}", q)
	}
}

// Two collectors must not share state: this is the reason the collector
// owns its registry instead of using package-level metrics.
func TestCollector_Isolation(t *testing.T) {
	a := New()
	b := New()

	a.RecordCall("players")

	if got := b.Snapshot()["players"]; got.Calls != 0 {
		t.Errorf("collector b saw %d calls recorded on collector a", got.Calls)
	}
	if a.Registry() == b.Registry() {
		t.Error("collectors share a prometheus registry")
	}
}

func TestCollector_SnapshotIsCopy(t *testing.T) {
	c := New()
	c.RecordCall("lineups")

	snap := c.Snapshot()
	e := snap["lineups"]
	e.Calls = 99

	if got := c.Snapshot()["lineups"]; got.Calls != 1 {
		t.Errorf("mutating a snapshot changed the collector: calls = %d", got.Calls)
	}
}
