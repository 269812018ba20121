package testing

import (
	"errors"
	"image"
	"sync"

	"github.com/rileyhilliard/lcdash/pkg/display"
)

// ErrClosed is returned by every call after Close.
var ErrClosed = errors.New("display closed")

// Call is one recorded driver call.
type Call struct {
	Method      string
	Text        display.TextOp
	Bitmap      image.Rectangle
	X, Y        int
	Brightness  int
	Orientation display.Orientation
}

// Recorder is a display.Driver that records every call.
// Failures can be injected per method, or after a number of DrawText calls,
// to simulate a flaky transport.
type Recorder struct {
	mu     sync.Mutex
	calls  []Call
	fail   map[string]error
	closed bool

	failTextAfter int // fail DrawText once this many have succeeded; <0 disables
	textErr       error
	textCount     int
}

// NewRecorder creates a recorder with no injected failures.
func NewRecorder() *Recorder {
	return &Recorder{
		fail:          make(map[string]error),
		failTextAfter: -1,
	}
}

// FailOn makes every call to method return err. A nil err clears it.
func (r *Recorder) FailOn(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.fail, method)
		return
	}
	r.fail[method] = err
}

// FailTextAfter lets n DrawText calls succeed, then fails the following ones with err.
func (r *Recorder) FailTextAfter(n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failTextAfter = n
	r.textErr = err
	r.textCount = 0
}

// Heal removes all injected failures.
func (r *Recorder) Heal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = make(map[string]error)
	r.failTextAfter = -1
	r.textErr = nil
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if err, ok := r.fail[c.Method]; ok {
		return err
	}
	if c.Method == "DrawText" && r.failTextAfter >= 0 {
		if r.textCount >= r.failTextAfter {
			return r.textErr
		}
		r.textCount++
	}
	r.calls = append(r.calls, c)
	return nil
}

func (r *Recorder) Reset() error {
	return r.record(Call{Method: "Reset"})
}

func (r *Recorder) InitializeComm() error {
	return r.record(Call{Method: "InitializeComm"})
}

func (r *Recorder) SetBrightness(level int) error {
	return r.record(Call{Method: "SetBrightness", Brightness: level})
}

func (r *Recorder) SetOrientation(o display.Orientation) error {
	return r.record(Call{Method: "SetOrientation", Orientation: o})
}

func (r *Recorder) DrawBitmap(img image.Image, x, y int) error {
	return r.record(Call{Method: "DrawBitmap", Bitmap: img.Bounds(), X: x, Y: y})
}

func (r *Recorder) DrawText(op display.TextOp) error {
	return r.record(Call{Method: "DrawText", Text: op, X: op.X, Y: op.Y})
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Calls returns a copy of all successful calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsTo returns the successful calls to method.
func (r *Recorder) CallsTo(method string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Texts returns the TextOps of all successful DrawText calls.
func (r *Recorder) Texts() []display.TextOp {
	var out []display.TextOp
	for _, c := range r.CallsTo("DrawText") {
		out = append(out, c.Text)
	}
	return out
}

// Clear forgets recorded calls but keeps injected failures.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

var _ display.Driver = (*Recorder)(nil)
