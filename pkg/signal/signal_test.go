package signal

import "testing"

func TestCellGetSet(t *testing.T) {
	c := New(1)
	if got := c.Get(); got != 1 {
		t.Errorf("Get() = %d, want 1", got)
	}
	c.Set(2)
	if got := c.Get(); got != 2 {
		t.Errorf("Get() after Set = %d, want 2", got)
	}

	var zero Cell[string]
	if got := zero.Get(); got != "" {
		t.Errorf("zero Cell Get() = %q, want empty", got)
	}
}

func TestCellSubscribeOrder(t *testing.T) {
	c := New("")
	var log []string
	c.Subscribe(func(v string) { log = append(log, "a:"+v) })
	c.Subscribe(func(v string) { log = append(log, "b:"+v) })

	c.Set("x")
	if len(log) != 2 || log[0] != "a:x" || log[1] != "b:x" {
		t.Errorf("notifications = %v, want [a:x b:x]", log)
	}
}

func TestCellUnsubscribe(t *testing.T) {
	c := New(0)
	calls := 0
	unsub := c.Subscribe(func(int) { calls++ })

	c.Set(1)
	unsub()
	unsub()
	c.Set(2)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCellUnsubscribeDuringNotify(t *testing.T) {
	c := New(0)
	var unsub func()
	calls := 0
	unsub = c.Subscribe(func(int) {
		calls++
		unsub()
	})

	c.Set(1)
	c.Set(2)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
