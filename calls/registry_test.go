package calls

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"ofonoril/ril"
)

type counter struct {
	changed int
	rings   int
}

func newRegistry() (*Registry, *counter) {
	c := &counter{}
	r := New(Hooks{
		Changed: func() { c.changed++ },
		Ring:    func() { c.rings++ },
	}, log.New(io.Discard))
	return r, c
}

type fakeController struct {
	answered []string
	hungUp   []string
	err      error
}

func (f *fakeController) Answer(_ context.Context, p string) error {
	f.answered = append(f.answered, p)
	return f.err
}

func (f *fakeController) Hangup(_ context.Context, p string) error {
	f.hungUp = append(f.hungUp, p)
	return f.err
}

func Test_ParseState(t *testing.T) {
	st, err := ParseState("held")
	require.NoError(t, err)
	assert.Equal(t, ril.CallHolding, st)

	_, err = ParseState("disconnected")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func Test_Registry_AddBuildsRecord(t *testing.T) {
	r, c := newRegistry()

	call, err := r.Add("/isimodem/voicecall03", Properties{State: "incoming", LineIdentification: "+79161234567"}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, call.Index)
	assert.True(t, call.IsMT)
	assert.True(t, call.IsVoice)
	assert.Equal(t, ril.TOAInternational, call.TOA)
	assert.Equal(t, ril.PresentationAllowed, call.NumberPresentation)
	assert.Equal(t, ril.PresentationUnknown, call.NamePresentation)
	assert.Equal(t, 1, c.changed)
	assert.Equal(t, 1, c.rings)
}

func Test_Registry_AddWaitingIsMTWithoutRing(t *testing.T) {
	r, c := newRegistry()

	call, err := r.Add("/isimodem/voicecall01", Properties{State: "waiting"}, nil)

	require.NoError(t, err)
	assert.True(t, call.IsMT)
	assert.Equal(t, 0, c.rings)
}

func Test_Registry_AddRejectsBadState(t *testing.T) {
	r, c := newRegistry()

	_, err := r.Add("/isimodem/voicecall01", Properties{}, nil)

	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, c.changed)
}

func Test_Registry_AddDuplicate(t *testing.T) {
	r, _ := newRegistry()
	_, err := r.Add("/isimodem/voicecall01", Properties{State: "dialing"}, nil)
	require.NoError(t, err)

	_, err = r.Add("/isimodem/voicecall01", Properties{State: "dialing"}, nil)

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 1, r.Len())
}

func Test_Registry_AddThenRemove(t *testing.T) {
	r, c := newRegistry()
	detached := 0
	_, err := r.Add("/isimodem/voicecall01", Properties{State: "dialing"}, func() { detached++ })
	require.NoError(t, err)

	e, err := r.Remove("/isimodem/voicecall01")

	require.NoError(t, err)
	assert.Equal(t, "/isimodem/voicecall01", e.Path)
	assert.Empty(t, r.Snapshot())
	assert.Equal(t, 1, detached)
	assert.Equal(t, 2, c.changed)

	_, err = r.Remove("/isimodem/voicecall01")
	assert.ErrorIs(t, err, ErrUnknownCall)
}

func Test_Registry_PropertyChangeIsolated(t *testing.T) {
	r, _ := newRegistry()
	_, err := r.Add("/isimodem/voicecall01", Properties{State: "incoming"}, nil)
	require.NoError(t, err)
	_, err = r.Add("/isimodem/voicecall02", Properties{State: "waiting"}, nil)
	require.NoError(t, err)

	require.NoError(t, r.SetProperty("/isimodem/voicecall01", "State", "active"))

	calls := r.Snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, ril.CallActive, calls[0].State)
	assert.Equal(t, ril.CallWaiting, calls[1].State)
	assert.NotEqual(t, calls[0].Index, calls[1].Index)
}

func Test_Registry_InvalidStateLeavesRecord(t *testing.T) {
	r, c := newRegistry()
	_, err := r.Add("/isimodem/voicecall01", Properties{State: "alerting"}, nil)
	require.NoError(t, err)
	before := c.changed

	err = r.SetProperty("/isimodem/voicecall01", "State", "disconnected")

	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, ril.CallAlerting, r.Snapshot()[0].State)
	assert.Equal(t, before, c.changed)
}

func Test_Registry_SnapshotIsCopy(t *testing.T) {
	r, _ := newRegistry()
	_, err := r.Add("/isimodem/voicecall01", Properties{State: "active", Name: "Bob"}, nil)
	require.NoError(t, err)

	snap := r.Snapshot()
	snap[0].Name = "Mallory"

	assert.Equal(t, "Bob", r.Snapshot()[0].Name)
}

func Test_Registry_IndexFallback(t *testing.T) {
	r, _ := newRegistry()
	a, err := r.Add("/isimodem/voicecall01", Properties{State: "active"}, nil)
	require.NoError(t, err)
	b, err := r.Add("/other/voicecall01", Properties{State: "held"}, nil)
	require.NoError(t, err)
	c, err := r.Add("/other/call", Properties{State: "held"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, a.Index)
	assert.Equal(t, 2, b.Index)
	assert.Equal(t, 3, c.Index)
}

func Test_Registry_AnswerIgnoresModemError(t *testing.T) {
	r, _ := newRegistry()
	_, err := r.Add("/isimodem/voicecall01", Properties{State: "active"}, nil)
	require.NoError(t, err)
	_, err = r.Add("/isimodem/voicecall02", Properties{State: "incoming"}, nil)
	require.NoError(t, err)
	ctl := &fakeController{err: errors.New("busy")}

	assert.True(t, r.Answer(context.Background(), ctl))
	assert.Equal(t, []string{"/isimodem/voicecall02"}, ctl.answered)
}

func Test_Registry_Hangup(t *testing.T) {
	r, _ := newRegistry()
	_, err := r.Add("/isimodem/voicecall01", Properties{State: "active"}, nil)
	require.NoError(t, err)
	_, err = r.Add("/isimodem/voicecall02", Properties{State: "held"}, nil)
	require.NoError(t, err)
	ctl := &fakeController{}

	assert.True(t, r.Hangup(context.Background(), Criteria{Index: 2}, ctl))
	assert.True(t, r.Hangup(context.Background(), Criteria{State: ril.CallActive}, ctl))
	assert.False(t, r.Hangup(context.Background(), Criteria{State: ril.CallWaiting}, ctl))
	assert.Equal(t, []string{"/isimodem/voicecall02", "/isimodem/voicecall01"}, ctl.hungUp)
}

func Test_Registry_IndicesUnique(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := New(Hooks{}, log.New(io.Discard))
		var ids = rapid.SliceOfDistinct(rapid.IntRange(0, 20), rapid.ID[int]).Draw(t, "ids")

		for _, id := range ids {
			_, err := r.Add(fmt.Sprintf("/isimodem/voicecall%02d", id), Properties{State: "active"}, nil)
			assert.NoError(t, err)
		}

		seen := map[int]bool{}
		for _, c := range r.Snapshot() {
			assert.False(t, seen[c.Index], "index %d reused", c.Index)
			assert.Positive(t, c.Index)
			seen[c.Index] = true
		}
		assert.Len(t, seen, len(ids))
	})
}
