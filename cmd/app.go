package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Anniext/bolice/internal/adapter"
	"github.com/Anniext/bolice/internal/config"
	"github.com/Anniext/bolice/internal/console"
	"github.com/Anniext/bolice/internal/device"
	"github.com/Anniext/bolice/internal/security"
	"github.com/Anniext/bolice/internal/session"
	"github.com/Anniext/bolice/pkg/bluetooth"
)

// app 一次命令执行所需的全部组件
type app struct {
	cfg       *bluetooth.Config
	handle    bluetooth.AdapterHandle
	logger    *slog.Logger
	console   *console.Console
	recovery  *adapter.Recovery
	discovery *device.Discovery
	auditor   *security.Auditor
	session   *session.Session
}

// loadConfig 合并配置文件、环境变量和命令行标志
func loadConfig(cmd *cobra.Command) (*bluetooth.Config, error) {
	v := viper.GetViper()
	if cmd.Flags().Changed("no-recovery") {
		v.Set(config.KeyRecoveryEnabled, !noRecovery)
	}
	if cmd.Flags().Changed("read-only") {
		v.Set(config.KeyProbeWrites, !readOnly)
	}
	return config.Load(v)
}

// newApp 按配置装配组件
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := initLogger(cfg.LogLevel)
	con := console.New(cmd.InOrStdin(), cmd.OutOrStdout())
	handle := cfg.AdapterHandle()

	host := adapter.NewHost(cfg.Audit.ConnectTimeout, logger)
	ctl := adapter.NewSystemController(cfg.Recovery.ResetMethod, logger)
	recovery := adapter.NewRecovery(ctl, cfg.Recovery, con, logger)
	discovery := device.NewDiscovery(host, recovery, cfg.Scan, con, logger)
	auditor := security.NewAuditor(host, cfg.Audit, con, logger)

	logger.Debug("组件装配完成", "adapter", handle.Name, "reset_method", cfg.Recovery.ResetMethod,
		"recovery", cfg.Recovery.Enabled, "probe_writes", cfg.Audit.ProbeWrites)

	return &app{
		cfg:       cfg,
		handle:    handle,
		logger:    logger,
		console:   con,
		recovery:  recovery,
		discovery: discovery,
		auditor:   auditor,
		session:   session.New(handle, discovery, auditor, con, logger),
	}, nil
}

// banner 输出启动横幅，非 root 用户额外给出权限警告
func (a *app) banner() {
	a.console.Banner(AppName+" v"+AppVersion, "BLE Security Audit Tool", "Adapter: "+a.handle.Name)
	if os.Geteuid() != 0 {
		a.console.Tagged(console.TagWarning, "Not running as root. Adapter recovery and raw HCI access will likely fail.")
	}
	if !a.cfg.Audit.ProbeWrites {
		a.console.Tagged(console.TagInfo, "Read-only mode: write probes are disabled.")
	}
}

// signalContext 收到 SIGINT/SIGTERM 时取消上下文，用于中止长时间扫描
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
