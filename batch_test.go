package mtbridge

import "testing"

type shortBatchCache struct {
	countingCache
}

func (c *shortBatchCache) GetMany(keys []string) ([]string, []bool) {
	return []string{"x"}, []bool{true}
}

func TestLookupMany_FallsBackToGet(t *testing.T) {
	c := &countingCache{entries: map[string]string{"a": "1"}}

	values, found := lookupMany(c, []string{"a", "b"})
	if !found[0] || values[0] != "1" {
		t.Errorf("a: got %q (ok=%v)", values[0], found[0])
	}
	if found[1] {
		t.Error("b should miss")
	}
}

func TestLookupMany_ShortBatchIsMiss(t *testing.T) {
	c := &shortBatchCache{countingCache{entries: map[string]string{}}}

	values, found := lookupMany(c, []string{"a", "b", "c"})
	if len(values) != 3 || len(found) != 3 {
		t.Fatalf("lookupMany should align with keys, got %d/%d", len(values), len(found))
	}
	for i, ok := range found {
		if ok {
			t.Errorf("key %d should be a miss", i)
		}
	}
}

func TestLookupMany_Empty(t *testing.T) {
	values, found := lookupMany(&countingCache{}, nil)
	if values != nil || found != nil {
		t.Error("empty lookup should return nil slices")
	}
}
