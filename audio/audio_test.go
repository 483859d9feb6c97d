package audio

import (
	"bytes"
	"io"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

type fakePort struct {
	r   *io.PipeReader
	w   *io.PipeWriter
	mu  sync.Mutex
	out bytes.Buffer
}

func newFakePort() *fakePort {
	r, w := io.Pipe()
	return &fakePort{r: r, w: w}
}

func (p *fakePort) Read(b []byte) (int, error) { return p.r.Read(b) }

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.Write(b)
}

func (p *fakePort) Close() error {
	p.w.Close()
	return p.r.Close()
}

func (p *fakePort) written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.String()
}

func Test_Null_EdgeTriggered(t *testing.T) {
	n := NewNull(log.New(io.Discard))

	n.SetActive(true)
	n.SetActive(true)
	assert.True(t, n.active.Load())

	require.NoError(t, n.SetMute(true))
	assert.True(t, n.Muted())
}

func Test_Serial_SetActiveWritesOnEdges(t *testing.T) {
	p := newFakePort()
	s := NewSerial(p, SerialConfig{Port: "fake"}, log.New(io.Discard))

	s.SetActive(true)
	s.SetActive(true)
	s.SetActive(false)
	s.SetActive(false)

	assert.Equal(t, "AT+CPCMREG=1\rAT+CPCMREG=0\r", p.written())
	require.NoError(t, s.Close())
}

func Test_Serial_Mute(t *testing.T) {
	p := newFakePort()
	s := NewSerial(p, SerialConfig{Port: "fake"}, log.New(io.Discard))
	defer s.Close()

	require.NoError(t, s.SetMute(true))

	assert.True(t, s.Muted())
	assert.Equal(t, "AT+CMUT=1\r", p.written())
}

func Test_Serial_CloseStopsActiveStream(t *testing.T) {
	p := newFakePort()
	s := NewSerial(p, SerialConfig{Port: "fake"}, log.New(io.Discard))
	s.SetActive(true)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Equal(t, "AT+CPCMREG=1\rAT+CPCMREG=0\r", p.written())
}

func Test_Serial_ReaderConsumesResponses(t *testing.T) {
	p := newFakePort()
	s := NewSerial(p, SerialConfig{Port: "fake"}, log.New(io.Discard))

	_, err := p.w.Write([]byte("OK\r+CPCMREG: 1\r"))
	require.NoError(t, err)

	require.NoError(t, s.Close())
}

// idlePort behaves like a serial port whose read timeout keeps expiring.
type idlePort struct {
	reads *atomic.Int64
}

func (p idlePort) Read([]byte) (int, error) {
	p.reads.Inc()
	return 0, nil
}

func (p idlePort) Write(b []byte) (int, error) { return len(b), nil }
func (p idlePort) Close() error                { return nil }

func Test_Serial_ReadTimeoutsDoNotSpin(t *testing.T) {
	p := idlePort{reads: atomic.NewInt64(0)}
	s := NewSerial(p, SerialConfig{Port: "idle"}, log.New(io.Discard))

	time.Sleep(250 * time.Millisecond)
	require.NoError(t, s.Close())

	// bufio gives up after 100 empty reads, then the loop rests
	assert.Less(t, p.reads.Load(), int64(1000))
}

func Test_Serial_StopDrainsHelperOutput(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh")
	}
	p := newFakePort()
	s := NewSerial(p, SerialConfig{
		Port:   "fake",
		Helper: []string{"sh", "-c", "trap 'echo bye; exit 0' INT; echo ready; while :; do sleep 0.05; done"},
	}, log.New(io.Discard))
	defer s.Close()

	s.SetActive(true)
	time.Sleep(100 * time.Millisecond)
	s.SetActive(false)

	s.mu.Lock()
	helper := s.helper
	s.mu.Unlock()
	assert.Nil(t, helper)
	assert.True(t, strings.HasSuffix(p.written(), "AT+CPCMREG=0\r"))
}
