package app

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

type delivery struct {
	conn  core.ConnID
	event string
}

type fakeTransport struct {
	mu     sync.Mutex
	sent   []delivery
	failOn map[core.ConnID]bool
}

func (f *fakeTransport) Send(conn core.ConnID, event string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[conn] {
		return errors.New("full")
	}
	f.sent = append(f.sent, delivery{conn, event})
	return nil
}

func (f *fakeTransport) Close(core.ConnID) {}

func (f *fakeTransport) received(conn core.ConnID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, d := range f.sent {
		if d.conn == conn {
			n++
		}
	}
	return n
}

func TestPresenceLastWriteWins(t *testing.T) {
	p := NewPresence()
	p.SetPresence("alice", "c1")
	p.SetPresence("alice", "c2")

	conn, ok := p.Lookup("alice")
	if !ok || conn != "c2" {
		t.Fatalf("lookup = %q,%v want c2,true", conn, ok)
	}
}

func TestPresenceClearIfCurrent(t *testing.T) {
	type op struct {
		set  bool
		conn core.ConnID
	}
	cases := []struct {
		name string
		ops  []op
		want core.ConnID // empty = absent
	}{
		{"matching clear removes", []op{{set: true, conn: "c1"}, {conn: "c1"}}, ""},
		{"stale clear is a no-op", []op{{set: true, conn: "c1"}, {set: true, conn: "c2"}, {conn: "c1"}}, "c2"},
		{"clear on empty", []op{{conn: "c1"}}, ""},
		{"set after clear", []op{{set: true, conn: "c1"}, {conn: "c1"}, {set: true, conn: "c3"}}, "c3"},
		{"non matching clear never removes", []op{{set: true, conn: "c1"}, {conn: "c9"}, {conn: "c8"}}, "c1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPresence()
			for _, o := range tc.ops {
				if o.set {
					p.SetPresence("u", o.conn)
				} else {
					p.ClearIfCurrent("u", o.conn)
				}
			}
			got, ok := p.Lookup("u")
			if tc.want == "" {
				if ok {
					t.Fatalf("expected absent, got %q", got)
				}
				return
			}
			if !ok || got != tc.want {
				t.Fatalf("lookup = %q,%v want %q", got, ok, tc.want)
			}
		})
	}
}

func TestPresenceClearReportsRemoval(t *testing.T) {
	p := NewPresence()
	p.SetPresence("u", "c1")
	if p.ClearIfCurrent("u", "c2") {
		t.Fatal("stale clear reported removal")
	}
	if !p.ClearIfCurrent("u", "c1") {
		t.Fatal("matching clear did not report removal")
	}
	if p.Count() != 0 {
		t.Fatalf("count = %d", p.Count())
	}
}

func TestChannelsJoinIdempotent(t *testing.T) {
	c := NewChannels(&fakeTransport{})
	if !c.Join("c1", "a") {
		t.Fatal("first join should report added")
	}
	if c.Join("c1", "a") {
		t.Fatal("second join should be a no-op")
	}
	if got := len(c.Members("c1")); got != 1 {
		t.Fatalf("members = %d", got)
	}
}

func TestChannelsBroadcastExcludesSenderAndNonMembers(t *testing.T) {
	ft := &fakeTransport{}
	c := NewChannels(ft)
	c.Join("c1", "a")
	c.Join("c1", "b")
	c.Join("c2", "x")

	res := c.Broadcast("c1", "a", "typing", nil)
	if res.SendTo != 1 || len(res.Dropped) != 0 {
		t.Fatalf("result = %+v", res)
	}
	if ft.received("a") != 0 {
		t.Fatal("sender received its own broadcast")
	}
	if ft.received("b") != 1 {
		t.Fatal("member did not receive broadcast")
	}
	if ft.received("x") != 0 {
		t.Fatal("non-member received broadcast")
	}
}

func TestChannelsLeaveExcludesFromLaterBroadcasts(t *testing.T) {
	ft := &fakeTransport{}
	c := NewChannels(ft)
	c.Join("c1", "a")
	c.Join("c1", "b")
	if !c.Leave("c1", "b") {
		t.Fatal("leave should report membership")
	}
	if c.Leave("c1", "b") {
		t.Fatal("second leave should be a no-op")
	}
	c.Broadcast("c1", "", "newMessage", nil)
	if ft.received("b") != 0 {
		t.Fatal("left connection received broadcast")
	}
	if ft.received("a") != 1 {
		t.Fatal("remaining member missed broadcast")
	}
}

func TestChannelsEmptyChannelsAreForgotten(t *testing.T) {
	c := NewChannels(&fakeTransport{})
	c.Join("c1", "a")
	c.Join("c2", "a")
	c.Join("c2", "b")
	c.Leave("c1", "a")
	if c.Count() != 1 {
		t.Fatalf("count = %d, want 1", c.Count())
	}

	left := c.LeaveAll("a")
	if len(left) != 1 || left[0] != "c2" {
		t.Fatalf("left = %v", left)
	}
	c.Leave("c2", "b")
	if c.Count() != 0 || len(c.byConn) != 0 {
		t.Fatalf("leaked entries: chans=%d conns=%d", c.Count(), len(c.byConn))
	}
}

func TestChannelsLeaveAll(t *testing.T) {
	c := NewChannels(&fakeTransport{})
	for _, ch := range []domain.ChannelID{"c1", "c2", "c3"} {
		c.Join(ch, "a")
	}
	c.Join("c1", "b")

	left := c.LeaveAll("a")
	sort.Slice(left, func(i, j int) bool { return left[i] < left[j] })
	if len(left) != 3 || left[0] != "c1" || left[2] != "c3" {
		t.Fatalf("left = %v", left)
	}
	if c.IsMember("c1", "a") {
		t.Fatal("still a member of c1")
	}
	if !c.IsMember("c1", "b") {
		t.Fatal("other member removed")
	}
	if len(c.LeaveAll("ghost")) != 0 {
		t.Fatal("unknown conn left channels")
	}
}

func TestChannelsBroadcastReportsDropped(t *testing.T) {
	ft := &fakeTransport{failOn: map[core.ConnID]bool{"slow": true}}
	c := NewChannels(ft)
	c.Join("c1", "a")
	c.Join("c1", "slow")

	res := c.Broadcast("c1", "", "newMessage", nil)
	if res.SendTo != 1 || len(res.Dropped) != 1 || res.Dropped[0] != "slow" {
		t.Fatalf("result = %+v", res)
	}
}

func TestPolicyFromName(t *testing.T) {
	for name, want := range map[string]BackpressureAction{"": DropFrame, "drop": DropFrame, "kick": KickConnection} {
		p, err := PolicyFromName(name)
		if err != nil {
			t.Fatalf("%q: %v", name, err)
		}
		if got := p.OnBackPressure("c", "e"); got != want {
			t.Fatalf("%q: action = %v, want %v", name, got, want)
		}
	}
	if _, err := PolicyFromName("shrug"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}
