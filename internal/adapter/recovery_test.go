package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anniext/bolice/internal/console"
	"github.com/Anniext/bolice/pkg/bluetooth"
)

// fakeController 可编程的系统控制器
type fakeController struct {
	stopErr  error
	killN    int
	killErr  error
	resetErr error
	panicOn  RecoveryStep
	panics   bool

	calls []string
}

func (f *fakeController) StopService(ctx context.Context, name string) error {
	f.calls = append(f.calls, "stop:"+name)
	if f.panics && f.panicOn == StepStopService {
		panic("boom")
	}
	return f.stopErr
}

func (f *fakeController) KillProcess(ctx context.Context, name string) (int, error) {
	f.calls = append(f.calls, "kill:"+name)
	if f.panics && f.panicOn == StepKillDaemon {
		panic("boom")
	}
	return f.killN, f.killErr
}

func (f *fakeController) HardwareReset(ctx context.Context, adapter bluetooth.AdapterHandle) error {
	f.calls = append(f.calls, "reset:"+adapter.Name)
	if f.panics && f.panicOn == StepHardwareReset {
		panic("boom")
	}
	return f.resetErr
}

func newTestRecovery(ctl SystemController, enabled bool) (*Recovery, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cfg := bluetooth.DefaultConfig().Recovery
	cfg.Enabled = enabled
	return NewRecovery(ctl, cfg, console.New(strings.NewReader(""), out), nil), out
}

func TestRecovery_AllStepsSucceed(t *testing.T) {
	ctl := &fakeController{killN: 2}
	r, out := newTestRecovery(ctl, true)

	result := r.Reset(context.Background(), bluetooth.NewAdapterHandle(0))

	assert.True(t, result.OK())
	assert.False(t, result.Skipped)
	require.Len(t, result.Steps, 3)
	assert.Equal(t, 2, result.Steps[1].Killed)
	assert.Equal(t, []string{"stop:bluetooth", "kill:bluetoothd", "reset:hci0"}, ctl.calls)

	text := out.String()
	assert.Contains(t, text, "[SYSTEM] Attempting adapter reset on hci0...")
	assert.Contains(t, text, "Bluetooth service 'bluetooth' stopped.")
	assert.Contains(t, text, "Residual bluetoothd processes killed (2).")
	assert.Contains(t, text, "[SUCCESS] hci0 reset successful.")
}

func TestRecovery_NoResidualProcess(t *testing.T) {
	r, out := newTestRecovery(&fakeController{}, true)
	r.Reset(context.Background(), bluetooth.NewAdapterHandle(0))
	assert.Contains(t, out.String(), "No residual bluetoothd process found.")
}

func TestRecovery_AllStepsFail(t *testing.T) {
	ctl := &fakeController{
		stopErr:  fmt.Errorf("systemctl stop bluetooth: %w", &exec.ExitError{}),
		killErr:  errors.New("permission denied"),
		resetErr: errors.New("ioctl HCIDEVDOWN: no such device"),
	}
	r, out := newTestRecovery(ctl, true)

	var result RecoveryResult
	require.NotPanics(t, func() {
		result = r.Reset(context.Background(), bluetooth.NewAdapterHandle(0))
	})

	// 每一步都被执行，失败不会中断后续步骤
	assert.Len(t, ctl.calls, 3)
	assert.False(t, result.OK())

	failures := result.Failures()
	require.Len(t, failures, 3)
	assert.Equal(t, FailureNonZeroExit, failures[0].Kind)
	assert.Equal(t, FailureOSError, failures[1].Kind)
	assert.Equal(t, FailureOSError, failures[2].Kind)
	for _, f := range failures {
		assert.ErrorIs(t, f, bluetooth.NewBluetoothError(bluetooth.ErrCodeRecoveryFailed, ""))
	}

	text := out.String()
	assert.Contains(t, text, "[WARNING] Could not stop service 'bluetooth'")
	assert.Contains(t, text, "[ERROR] Could not kill residual bluetoothd processes")
	// 复位的系统错误只作为警告输出
	assert.Contains(t, text, "[WARNING] hci0 reset failed")
}

func TestRecovery_CommandMissing(t *testing.T) {
	ctl := &fakeController{
		resetErr: fmt.Errorf("hciconfig hci0 reset: %w", &exec.Error{Name: "hciconfig", Err: exec.ErrNotFound}),
	}
	r, out := newTestRecovery(ctl, true)

	result := r.Reset(context.Background(), bluetooth.NewAdapterHandle(0))

	failures := result.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, StepHardwareReset, failures[0].Step)
	assert.Equal(t, FailureCommandMissing, failures[0].Kind)
	assert.Contains(t, out.String(), "command not found")
	assert.Contains(t, out.String(), "Check system PATH.")
}

func TestRecovery_NotSupported(t *testing.T) {
	ctl := &fakeController{stopErr: bluetooth.ErrNotSupported}
	r, out := newTestRecovery(ctl, true)

	result := r.Reset(context.Background(), bluetooth.NewAdapterHandle(0))

	require.Len(t, result.Failures(), 1)
	assert.Equal(t, FailureNotSupported, result.Failures()[0].Kind)
	assert.Contains(t, out.String(), "not supported on this platform")
}

func TestRecovery_PanicIsContained(t *testing.T) {
	for _, step := range []RecoveryStep{StepStopService, StepKillDaemon, StepHardwareReset} {
		t.Run(step.String(), func(t *testing.T) {
			ctl := &fakeController{panics: true, panicOn: step}
			r, _ := newTestRecovery(ctl, true)

			var result RecoveryResult
			require.NotPanics(t, func() {
				result = r.Reset(context.Background(), bluetooth.NewAdapterHandle(0))
			})

			assert.Len(t, ctl.calls, 3)
			failures := result.Failures()
			require.Len(t, failures, 1)
			assert.Equal(t, step, failures[0].Step)
		})
	}
}

func TestRecovery_Disabled(t *testing.T) {
	ctl := &fakeController{}
	r, out := newTestRecovery(ctl, false)

	result := r.Reset(context.Background(), bluetooth.NewAdapterHandle(0))

	assert.True(t, result.Skipped)
	assert.True(t, result.OK())
	assert.Empty(t, ctl.calls)
	assert.Empty(t, out.String())
}

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"命令不存在", &exec.Error{Name: "systemctl", Err: exec.ErrNotFound}, FailureCommandMissing},
		{"非零退出", fmt.Errorf("run: %w", &exec.ExitError{}), FailureNonZeroExit},
		{"平台不支持", bluetooth.ErrNotSupported, FailureNotSupported},
		{"其他错误", errors.New("socket: address family not supported"), FailureOSError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := classifyFailure(StepHardwareReset, tt.err)
			assert.Equal(t, tt.want, re.Kind)
			assert.ErrorIs(t, re, tt.err)
		})
	}
}
