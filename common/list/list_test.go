package list

import (
	"iter"
	"testing"
)

type item struct {
	id   int
	link Head
}

func build(h *Head, ids ...int) []*item {
	items := make([]*item, 0, len(ids))
	for _, id := range ids {
		it := &item{id: id}
		AddTail(&it.link, h)
		items = append(items, it)
	}
	return items
}

func collect(h *Head, seq func(*Head) iter.Seq[*Head]) []*Head {
	var out []*Head
	for e := range seq(h) {
		out = append(out, e)
	}
	return out
}

func TestInitEmpty(t *testing.T) {
	h := New()
	if !Empty(h) {
		t.Errorf("new ring should be empty")
	}
	if IsSingular(h) {
		t.Errorf("empty ring is not singular")
	}
	if Len(h) != 0 {
		t.Errorf("expect len 0, got %v", Len(h))
	}
	if !Consistent(h, 1) {
		t.Errorf("empty ring should be consistent")
	}
}

func TestAddAndAddTail(t *testing.T) {
	h := New()
	a, b, c := &item{id: 1}, &item{id: 2}, &item{id: 3}
	AddTail(&b.link, h)
	Add(&a.link, h)
	AddTail(&c.link, h)
	got := collect(h, All)
	want := []*Head{&a.link, &b.link, &c.link}
	if len(got) != len(want) {
		t.Fatalf("expect %v entries, got %v", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %v: wrong entry", i)
		}
	}
	if !IsFirst(&a.link, h) || !IsLast(&c.link, h) {
		t.Errorf("first/last mismatch")
	}
	if !Consistent(h, 10) {
		t.Errorf("ring should be consistent")
	}
}

func TestBackwardMirrorsAll(t *testing.T) {
	h := New()
	build(h, 1, 2, 3, 4)
	fwd := collect(h, All)
	bwd := collect(h, Backward)
	if len(fwd) != len(bwd) {
		t.Fatalf("forward %v entries, backward %v", len(fwd), len(bwd))
	}
	for i := range fwd {
		if fwd[i] != bwd[len(bwd)-1-i] {
			t.Errorf("position %v: backward walk is not the mirror of forward walk", i)
		}
	}
}

func TestDel(t *testing.T) {
	tests := []struct {
		name   string
		delIdx int
		init   bool
	}{
		{"del first", 0, false},
		{"del middle", 1, false},
		{"del last", 2, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := New()
			items := build(h, 1, 2, 3)
			target := &items[tc.delIdx].link
			if tc.init {
				DelInit(target)
				if !Empty(target) {
					t.Errorf("DelInit should leave a singleton ring")
				}
			} else {
				Del(target)
				if target.Next != nil || target.Prev != nil {
					t.Errorf("Del should clear links")
				}
			}
			if Len(h) != 2 {
				t.Errorf("expect len 2, got %v", Len(h))
			}
			for e := range All(h) {
				if e == target {
					t.Errorf("deleted entry still reachable")
				}
			}
			if !Consistent(h, 10) {
				t.Errorf("ring should be consistent")
			}
		})
	}
}

func TestSingular(t *testing.T) {
	h := New()
	build(h, 1)
	if !IsSingular(h) {
		t.Errorf("one entry ring should be singular")
	}
	build(h, 2)
	if IsSingular(h) {
		t.Errorf("two entry ring is not singular")
	}
}

func TestAllSurvivesUnlink(t *testing.T) {
	h := New()
	build(h, 1, 2, 3, 4)
	for e := range All(h) {
		Del(e)
	}
	if !Empty(h) {
		t.Errorf("expect empty ring after deleting every entry")
	}
}

func TestConsistentDetectsBrokenRing(t *testing.T) {
	h := New()
	items := build(h, 1, 2, 3)
	items[1].link.Prev = h
	if Consistent(h, 10) {
		t.Errorf("broken back link should be reported")
	}
	items[1].link.Prev = &items[0].link
	items[2].link.Next = &items[0].link
	if Consistent(h, 10) {
		t.Errorf("ring that never returns to the sentinel should be reported")
	}
}
