// Package session 维护交互式审计会话：菜单循环和当前选中的目标。
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/Anniext/bolice/internal/console"
	"github.com/Anniext/bolice/internal/device"
	"github.com/Anniext/bolice/internal/security"
	"github.com/Anniext/bolice/pkg/bluetooth"
)

// Discoverer 设备发现
type Discoverer interface {
	Discover(ctx context.Context, handle bluetooth.AdapterHandle) (bluetooth.Address, error)
}

// TargetAuditor 目标审计
type TargetAuditor interface {
	Audit(ctx context.Context, target bluetooth.Address, handle bluetooth.AdapterHandle) (*security.AuditReport, error)
}

// Command 菜单命令
type Command int

const (
	CommandUnknown  Command = iota // 无法识别
	CommandDiscover                // 扫描并选择设备
	CommandAudit                   // 审计当前目标
	CommandExit                    // 退出
)

// String 返回命令的字符串表示
func (c Command) String() string {
	switch c {
	case CommandDiscover:
		return "discover"
	case CommandAudit:
		return "audit"
	case CommandExit:
		return "exit"
	default:
		return "unknown"
	}
}

// ParseCommand 解析菜单输入，接受序号或命令名
func ParseCommand(input string) Command {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "scan", "discover":
		return CommandDiscover
	case "2", "audit":
		return CommandAudit
	case "3", "exit", "quit", "q":
		return CommandExit
	default:
		return CommandUnknown
	}
}

// Session 审计会话。目标地址只会被成功的发现流程替换，直到进程退出。
type Session struct {
	adapter   bluetooth.AdapterHandle
	discovery Discoverer
	auditor   TargetAuditor
	console   *console.Console
	logger    *slog.Logger
	target    bluetooth.Address
}

// New 创建审计会话
func New(handle bluetooth.AdapterHandle, discovery Discoverer, auditor TargetAuditor, con *console.Console, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		adapter:   handle,
		discovery: discovery,
		auditor:   auditor,
		console:   con,
		logger:    logger.With("component", "session"),
	}
}

// Target 返回当前选中的目标
func (s *Session) Target() (bluetooth.Address, bool) {
	return s.target, !s.target.IsZero()
}

// Run 运行菜单循环，直到操作员退出、输入结束或上下文取消
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printMenu()
		input, err := s.console.Prompt("Enter your choice (1, 2, or 3): ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.console.Println()
				s.console.Println("Exiting audit tool. Goodbye!")
				return nil
			}
			return err
		}

		if !s.Execute(ctx, ParseCommand(input)) {
			return nil
		}
	}
}

// Execute 执行一条命令，返回 false 表示会话结束
func (s *Session) Execute(ctx context.Context, cmd Command) bool {
	s.logger.Debug("执行命令", "command", cmd.String())

	switch cmd {
	case CommandDiscover:
		s.Discover(ctx)
	case CommandAudit:
		s.Audit(ctx)
	case CommandExit:
		s.console.Println("Exiting audit tool. Goodbye!")
		return false
	default:
		s.console.Println("Invalid choice. Please select 1, 2, or 3.")
	}
	return true
}

// Discover 运行发现流程，成功时替换当前目标
func (s *Session) Discover(ctx context.Context) {
	addr, err := s.discovery.Discover(ctx, s.adapter)
	if err != nil {
		if errors.Is(err, device.ErrNoDeviceSelected) {
			s.logger.Debug("未选择设备，保留原目标", "target", s.target)
			return
		}
		s.logger.Warn("发现流程失败", "error", err)
		return
	}

	s.target = addr
	s.logger.Info("已选择目标", "target", addr)
}

// Audit 审计当前目标；没有目标时只输出提示
func (s *Session) Audit(ctx context.Context) {
	target, ok := s.Target()
	if !ok {
		s.console.Println()
		s.console.Println("Please scan for devices first (Option 1) and select a target.")
		return
	}

	s.console.Printf("\n## Starting Security Audit for: %s ##\n", target)
	report, err := s.auditor.Audit(ctx, target, s.adapter)
	if err != nil {
		s.logger.Warn("审计失败", "target", target, "error", err)
		return
	}
	s.logger.Info("审计完成", "target", target, "status", report.Status.String(),
		"critical", report.CriticalFindings())
}

func (s *Session) printMenu() {
	s.console.Banner("BOLICE MENU")
	s.console.Println("1. Scan for devices (Resets adapter and kills processes)")
	s.console.Println("2. Run Full Security Audit (Connect & Enumerate)")
	s.console.Println("3. Exit")
}
