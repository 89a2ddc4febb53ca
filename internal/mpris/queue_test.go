package mpris

import (
	"strings"
	"sync"
	"testing"

	"github.com/godbus/dbus/v5/introspect"
)

func TestCommandQueueKeepsOrderAcrossProducers(t *testing.T) {
	q := newCommandQueue()

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if err := q.push(setRate{rate: float64(p*1000 + i)}); err != nil {
					t.Errorf("push: %v", err)
				}
			}
		}(p)
	}
	wg.Wait()

	select {
	case <-q.ready():
	default:
		t.Fatal("queue not ready after pushes")
	}

	items := q.drain()
	if len(items) != 400 {
		t.Fatalf("drained %d commands, want 400", len(items))
	}
	// Each producer's commands stay in the order it pushed them.
	last := map[int]float64{}
	for _, item := range items {
		rate := item.(setRate).rate
		producer := int(rate) / 1000
		if prev, ok := last[producer]; ok && rate <= prev {
			t.Fatalf("producer %d out of order: %v after %v", producer, rate, prev)
		}
		last[producer] = rate
	}

	if got := q.drain(); len(got) != 0 {
		t.Fatalf("second drain returned %d commands", len(got))
	}
}

func TestCommandQueueClose(t *testing.T) {
	q := newCommandQueue()
	if err := q.push(setShuffle{shuffle: true}); err != nil {
		t.Fatal(err)
	}
	q.close()

	if err := q.push(setShuffle{}); err != ErrWorkerGone {
		t.Fatalf("push after close = %v, want ErrWorkerGone", err)
	}
	if got := q.drain(); len(got) != 0 {
		t.Fatalf("close kept %d pending commands", len(got))
	}
}

func TestIntrospection(t *testing.T) {
	xml, err := introspect.NewIntrospectable(introspection()).Introspect()
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`<interface name="org.mpris.MediaPlayer2">`,
		`<interface name="org.mpris.MediaPlayer2.Player">`,
		`<interface name="org.freedesktop.DBus.Properties">`,
		`<signal name="Seeked">`,
		`<property name="Metadata" type="a{sv}" access="read">`,
		`<property name="Volume" type="d" access="readwrite">`,
		`<property name="LoopStatus" type="s" access="readwrite">`,
		`<property name="Position" type="x" access="read">`,
		`<method name="SetPosition">`,
	} {
		if !strings.Contains(xml, want) {
			t.Errorf("introspection is missing %s", want)
		}
	}
}
