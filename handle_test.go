// SPDX-License-Identifier: EPL-2.0

package sndmgr

import "testing"

func TestArena(t *testing.T) {
	t.Parallel()

	var a arena[string]

	h1 := a.insert("one")
	h2 := a.insert("two")
	if h1 == 0 || h2 == 0 || h1 == h2 {
		t.Fatalf("insert() = %v, %v, want distinct non-zero handles", h1, h2)
	}

	if v, ok := a.get(h2); !ok || v != "two" {
		t.Errorf("get(h2) = %q, %v, want %q, true", v, ok, "two")
	}
	if _, ok := a.get(0); ok {
		t.Error("get(0) succeeded")
	}

	if !a.remove(h1) {
		t.Fatal("remove(h1) = false")
	}
	if a.remove(h1) {
		t.Error("second remove(h1) = true")
	}

	// the slot is reused under a new generation
	h3 := a.insert("three")
	idx1, _ := h1.split()
	idx3, _ := h3.split()
	if idx3 != idx1 {
		t.Errorf("insert() used slot %d, want reused slot %d", idx3, idx1)
	}
	if _, ok := a.get(h1); ok {
		t.Error("stale handle resolved after slot reuse")
	}
	if v, ok := a.get(h3); !ok || v != "three" {
		t.Errorf("get(h3) = %q, %v, want %q, true", v, ok, "three")
	}

	if got := a.count(); got != 2 {
		t.Errorf("count() = %d, want 2", got)
	}

	seen := map[Handle]string{}
	a.each(func(h Handle, v string) { seen[h] = v })
	if len(seen) != 2 || seen[h2] != "two" || seen[h3] != "three" {
		t.Errorf("each() visited %v", seen)
	}
}
