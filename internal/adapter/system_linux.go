//go:build linux

package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"

	"github.com/Anniext/bolice/pkg/bluetooth"
)

// HCI 设备控制 ioctl，_IOW('H', nr, int)
const (
	hciDevUp   = 0x400448c9
	hciDevDown = 0x400448ca
)

// LinuxController 基于 systemctl、进程表和 HCI ioctl 的系统控制器
type LinuxController struct {
	resetMethod string
	logger      *slog.Logger
}

// NewSystemController 创建当前平台的系统控制器
func NewSystemController(resetMethod string, logger *slog.Logger) SystemController {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinuxController{
		resetMethod: resetMethod,
		logger:      logger.With("component", "system"),
	}
}

// StopService 通过 systemctl 停止服务
func (lc *LinuxController) StopService(ctx context.Context, name string) error {
	return lc.run(ctx, "systemctl", "stop", name)
}

// KillProcess 遍历进程表，对同名进程发送 SIGKILL
func (lc *LinuxController) KillProcess(ctx context.Context, name string) (int, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	killed := 0
	var errs []error
	for _, p := range procs {
		pname, err := p.NameWithContext(ctx)
		if err != nil || pname != name {
			// 进程可能在遍历期间退出
			continue
		}
		if err := p.KillWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("kill %s (pid %d): %w", name, p.Pid, err))
			continue
		}
		lc.logger.Debug("已结束进程", "name", name, "pid", p.Pid)
		killed++
	}
	return killed, errors.Join(errs...)
}

// HardwareReset 按配置的方式复位适配器
func (lc *LinuxController) HardwareReset(ctx context.Context, adapter bluetooth.AdapterHandle) error {
	switch lc.resetMethod {
	case bluetooth.ResetMethodHciconfig:
		return lc.run(ctx, "hciconfig", adapter.Name, "reset")
	default:
		return ioctlReset(adapter.Index)
	}
}

// ioctlReset 在 HCI 原始套接字上依次执行 down/up，效果等同 hciconfig reset
func ioctlReset(index int) error {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.BTPROTO_HCI)
	if err != nil {
		return os.NewSyscallError("socket", err)
	}
	defer unix.Close(fd)

	if err := unix.IoctlSetInt(fd, hciDevDown, index); err != nil {
		return os.NewSyscallError("ioctl HCIDEVDOWN", err)
	}
	if err := unix.IoctlSetInt(fd, hciDevUp, index); err != nil && !errors.Is(err, unix.EALREADY) {
		return os.NewSyscallError("ioctl HCIDEVUP", err)
	}
	return nil
}

// run 执行外部命令，保留 exec 错误类型以便分类
func (lc *LinuxController) run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
		}
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, detail)
	}
	lc.logger.Debug("命令执行成功", "command", name, "args", args)
	return nil
}
