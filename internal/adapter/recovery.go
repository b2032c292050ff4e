package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/Anniext/bolice/internal/console"
	"github.com/Anniext/bolice/pkg/bluetooth"
)

// SystemController 操作系统进程控制接口。
// 每个方法都必须可重复调用，失败只通过返回值报告。
type SystemController interface {
	// StopService 停止系统服务
	StopService(ctx context.Context, name string) error
	// KillProcess 强制结束同名进程，返回结束的进程数
	KillProcess(ctx context.Context, name string) (int, error)
	// HardwareReset 对适配器执行硬件级复位
	HardwareReset(ctx context.Context, adapter bluetooth.AdapterHandle) error
}

// RecoveryStep 恢复步骤
type RecoveryStep int

const (
	StepStopService   RecoveryStep = iota // 停止蓝牙服务
	StepKillDaemon                        // 结束残留守护进程
	StepHardwareReset                     // 硬件复位
)

// String 返回恢复步骤的字符串表示
func (s RecoveryStep) String() string {
	switch s {
	case StepStopService:
		return "stop_service"
	case StepKillDaemon:
		return "kill_daemon"
	case StepHardwareReset:
		return "hardware_reset"
	default:
		return "unknown"
	}
}

// FailureKind 恢复失败类别
type FailureKind int

const (
	FailureOSError        FailureKind = iota // 意外的系统错误
	FailureCommandMissing                    // 命令不存在
	FailureNonZeroExit                       // 命令非零退出
	FailureNotSupported                      // 当前平台不支持
)

// String 返回失败类别的字符串表示
func (k FailureKind) String() string {
	switch k {
	case FailureCommandMissing:
		return "command_missing"
	case FailureNonZeroExit:
		return "non_zero_exit"
	case FailureNotSupported:
		return "not_supported"
	default:
		return "os_error"
	}
}

// RecoveryError 单个恢复步骤的失败
type RecoveryError struct {
	Step  RecoveryStep
	Kind  FailureKind
	Cause error
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("recovery step %s failed (%s): %v", e.Step, e.Kind, e.Cause)
}

func (e *RecoveryError) Unwrap() error {
	return e.Cause
}

// Is 让 RecoveryError 可以与恢复失败代码匹配
func (e *RecoveryError) Is(target error) bool {
	if t, ok := target.(*bluetooth.BluetoothError); ok {
		return t.Code == bluetooth.ErrCodeRecoveryFailed
	}
	return false
}

// classifyFailure 根据底层错误判断失败类别
func classifyFailure(step RecoveryStep, err error) *RecoveryError {
	re := &RecoveryError{Step: step, Kind: FailureOSError, Cause: err}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound):
		re.Kind = FailureCommandMissing
	case errors.As(err, &exitErr):
		re.Kind = FailureNonZeroExit
	case errors.Is(err, bluetooth.ErrNotSupported):
		re.Kind = FailureNotSupported
	}
	return re
}

// StepResult 单步执行结果
type StepResult struct {
	Step   RecoveryStep
	Err    *RecoveryError
	Killed int // 仅 StepKillDaemon 有效
}

// RecoveryResult 一次恢复的完整结果
type RecoveryResult struct {
	Adapter bluetooth.AdapterHandle
	Skipped bool // 配置禁用了恢复
	Steps   []StepResult
}

// OK 所有步骤是否都成功
func (r RecoveryResult) OK() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return false
		}
	}
	return true
}

// Failures 返回失败步骤的错误
func (r RecoveryResult) Failures() []*RecoveryError {
	var errs []*RecoveryError
	for _, s := range r.Steps {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errs
}

// Resetter 适配器恢复接口
type Resetter interface {
	Reset(ctx context.Context, adapter bluetooth.AdapterHandle) RecoveryResult
}

const stepTimeout = 10 * time.Second

// Recovery 在扫描前把适配器从锁定/拒绝状态中恢复出来
type Recovery struct {
	ctl     SystemController
	cfg     bluetooth.RecoveryConfig
	console *console.Console
	logger  *slog.Logger
}

// NewRecovery 创建适配器恢复组件
func NewRecovery(ctl SystemController, cfg bluetooth.RecoveryConfig, con *console.Console, logger *slog.Logger) *Recovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recovery{
		ctl:     ctl,
		cfg:     cfg,
		console: con,
		logger:  logger.With("component", "recovery"),
	}
}

// Reset 依次执行停止服务、结束守护进程、硬件复位。
// 所有失败都只记录并输出，不会中断调用方。
func (r *Recovery) Reset(ctx context.Context, adapter bluetooth.AdapterHandle) RecoveryResult {
	result := RecoveryResult{Adapter: adapter}

	if !r.cfg.Enabled {
		result.Skipped = true
		r.logger.Debug("适配器恢复已禁用", "adapter", adapter.Name)
		return result
	}

	r.console.Println()
	r.console.Line("", console.TagSystem, "Attempting adapter reset on %s...", adapter.Name)

	stop := r.runStep(ctx, StepStopService, func(ctx context.Context) (int, error) {
		return 0, r.ctl.StopService(ctx, r.cfg.ServiceName)
	})
	r.reportStopService(stop)
	result.Steps = append(result.Steps, stop)

	kill := r.runStep(ctx, StepKillDaemon, func(ctx context.Context) (int, error) {
		return r.ctl.KillProcess(ctx, r.cfg.DaemonName)
	})
	r.reportKillDaemon(kill)
	result.Steps = append(result.Steps, kill)

	reset := r.runStep(ctx, StepHardwareReset, func(ctx context.Context) (int, error) {
		return 0, r.ctl.HardwareReset(ctx, adapter)
	})
	r.reportHardwareReset(adapter, reset)
	result.Steps = append(result.Steps, reset)

	return result
}

// runStep 带超时执行单个步骤，并把 panic 转换为失败结果
func (r *Recovery) runStep(ctx context.Context, step RecoveryStep, fn func(context.Context) (int, error)) (res StepResult) {
	res.Step = step

	stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			res.Err = &RecoveryError{Step: step, Kind: FailureOSError, Cause: fmt.Errorf("panic: %v", p)}
		}
		if res.Err != nil {
			r.logger.Warn("恢复步骤失败", "step", step.String(), "kind", res.Err.Kind.String(), "error", res.Err.Cause)
		}
	}()

	n, err := fn(stepCtx)
	res.Killed = n
	if err != nil {
		res.Err = classifyFailure(step, err)
	}
	return res
}

func (r *Recovery) reportStopService(res StepResult) {
	if res.Err == nil {
		r.console.Tagged(console.TagInfo, "Bluetooth service '%s' stopped.", r.cfg.ServiceName)
		return
	}
	r.reportFailure(res.Err, fmt.Sprintf("Could not stop service '%s'", r.cfg.ServiceName))
}

func (r *Recovery) reportKillDaemon(res StepResult) {
	switch {
	case res.Err != nil:
		r.reportFailure(res.Err, fmt.Sprintf("Could not kill residual %s processes", r.cfg.DaemonName))
	case res.Killed == 0:
		r.console.Tagged(console.TagInfo, "No residual %s process found.", r.cfg.DaemonName)
	default:
		r.console.Tagged(console.TagInfo, "Residual %s processes killed (%d).", r.cfg.DaemonName, res.Killed)
	}
}

func (r *Recovery) reportHardwareReset(adapter bluetooth.AdapterHandle, res StepResult) {
	if res.Err == nil {
		r.console.Tagged(console.TagSuccess, "%s reset successful.", adapter.Name)
		return
	}
	// 复位失败时适配器可能仍可用，ioctl 错误同样只作为警告
	if res.Err.Kind == FailureOSError {
		r.console.Tagged(console.TagWarning, "%s reset failed (%v). Continuing...", adapter.Name, res.Err.Cause)
		return
	}
	r.reportFailure(res.Err, fmt.Sprintf("%s reset failed", adapter.Name))
}

// reportFailure 根据失败类别选择输出级别，非零退出只作为警告
func (r *Recovery) reportFailure(err *RecoveryError, what string) {
	switch err.Kind {
	case FailureNonZeroExit:
		r.console.Tagged(console.TagWarning, "%s (%v). Continuing...", what, err.Cause)
	case FailureCommandMissing:
		r.console.Tagged(console.TagError, "%s: command not found (%v). Check system PATH.", what, err.Cause)
	case FailureNotSupported:
		r.console.Tagged(console.TagWarning, "%s: not supported on this platform. Continuing...", what)
	default:
		r.console.Tagged(console.TagError, "%s: %v", what, err.Cause)
	}
}
