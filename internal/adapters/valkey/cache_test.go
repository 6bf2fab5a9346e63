package valkey

import "testing"

func TestNamespaced(t *testing.T) {
	if got := namespaced("places:search:ithaca:10"); got != "utechnav:places:search:ithaca:10" {
		t.Errorf("unexpected key %q", got)
	}
}
