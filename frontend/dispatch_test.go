package frontend

import (
	"fmt"
	"strings"
	"testing"

	"ebbcore/controller"
	"ebbcore/motion"
)

func newTestDispatcher() (*Dispatcher, *controller.Controller) {
	ctrl := controller.New(controller.DefaultConfig(), nil)
	return NewDispatcher(ctrl), ctrl
}

func TestHandleSMReturnsOK(t *testing.T) {
	d, ctrl := newTestDispatcher()
	resp := d.Handle("SM,1000,100,0")
	if resp != "OK\n\r" {
		t.Fatalf("resp = %q, want OK\\n\\r", resp)
	}
	if ctrl.Fifo().Depth() != 1 {
		t.Fatalf("expected one entry queued")
	}
}

func TestHandleUnknownCommandReturnsError(t *testing.T) {
	d, _ := newTestDispatcher()
	resp := d.Handle("ZZ,1,2")
	if !strings.HasPrefix(resp, "!0 Err:") {
		t.Fatalf("resp = %q, want an error response", resp)
	}
}

func TestHandleBlankLineReturnsNothing(t *testing.T) {
	d, _ := newTestDispatcher()
	if resp := d.Handle("   "); resp != "" {
		t.Fatalf("resp = %q, want empty", resp)
	}
}

func TestHandleSMRejectsOversizedSteps(t *testing.T) {
	d, _ := newTestDispatcher()
	resp := d.Handle("SM,1000,20000000,0")
	if !strings.HasPrefix(resp, "!0 Err:") {
		t.Fatalf("resp = %q, want a range error", resp)
	}
}

func TestHandleCSZeroesPosition(t *testing.T) {
	d, ctrl := newTestDispatcher()
	d.Handle("SM,40,1000,0")
	for i := 0; i < 1000; i++ {
		ctrl.Tick()
	}
	resp := d.Handle("CS")
	if resp != "OK\n\r" {
		t.Fatalf("resp = %q, want OK\\n\\r", resp)
	}
	pos := ctrl.Position()
	if pos[0] != 0 {
		t.Fatalf("gsc[0] = %d, want 0 after CS", pos[0])
	}
}

func TestHandleQSFormat(t *testing.T) {
	d, _ := newTestDispatcher()
	resp := d.Handle("QS")
	if resp != "0,0\n\rOK\n\r" {
		t.Fatalf("resp = %q, want 0,0\\n\\rOK\\n\\r", resp)
	}
}

func TestHandleQMFormat(t *testing.T) {
	d, _ := newTestDispatcher()
	resp := d.Handle("QM")
	if resp != "QM,0,0,0,0\n\r" {
		t.Fatalf("resp = %q, want idle QM response", resp)
	}
}

func TestHandleESFormat(t *testing.T) {
	d, _ := newTestDispatcher()
	resp := d.Handle("ES")
	if resp != "0,0,0,0,0\n\rOK\n\r" {
		t.Fatalf("resp = %q, want zeroed ES response", resp)
	}
}

func TestHandleLMDirectionComesFromStepsRemaining(t *testing.T) {
	d, ctrl := newTestDispatcher()
	// step_add is positive on axis1, but steps_remaining is negative:
	// direction must follow steps_remaining, not step_add.
	cmd := fmt.Sprintf("LM,%d,-5,0,0,0,0", motion.PhaseUnit)
	resp := d.Handle(cmd)
	if resp != "OK\n\r" {
		t.Fatalf("resp = %q, want OK\\n\\r", resp)
	}
	if ctrl.Fifo().Depth() != 1 {
		t.Fatalf("expected one entry queued")
	}

	for i := 0; i < 5; i++ {
		ctrl.Tick()
	}
	pos := ctrl.Position()
	if pos[0] != -5 {
		t.Fatalf("pos[0] = %d, want -5 (negative direction from steps_remaining sign)", pos[0])
	}
}

func TestHandleLMRejectsAllIdleAxes(t *testing.T) {
	d, ctrl := newTestDispatcher()
	resp := d.Handle("LM,0,0,0,0,0,0")
	if resp != "OK\n\r" {
		t.Fatalf("resp = %q, want OK\\n\\r", resp)
	}
	if ctrl.Fifo().Depth() != 0 {
		t.Fatalf("expected no entry queued for an all-idle LM command")
	}
}

func TestHandleAMRejectsOversizedSteps(t *testing.T) {
	d, _ := newTestDispatcher()
	resp := d.Handle("AM,100,5000,20000000,0")
	if !strings.HasPrefix(resp, "!0 Err:") {
		t.Fatalf("resp = %q, want a range error", resp)
	}
}

func TestHandleAckDisabled(t *testing.T) {
	ctrl := controller.New(controller.Config{TickHz: 25000, FifoDepth: 2, LimitChecks: true, AckEnable: false}, nil)
	d := NewDispatcher(ctrl)
	resp := d.Handle("SM,1000,100,0")
	if resp != "" {
		t.Fatalf("resp = %q, want empty with ack disabled", resp)
	}
}
