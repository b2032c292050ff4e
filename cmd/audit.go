package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Anniext/bolice/pkg/bluetooth"
)

// auditCmd 对已知地址执行一次审计
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "审计指定地址的 BLE 设备",
	Long: `跳过扫描，直接连接 --target 指定的设备并执行连接与枚举测试。

对端拒绝连接视为良好的安全表现，命令正常退出；
其他连接失败或枚举中止时命令返回非零状态。`,
	RunE: runAudit,
}

var auditTarget string

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringVarP(&auditTarget, "target", "t", "", "目标设备 MAC 地址 (AA:BB:CC:DD:EE:FF)")
	auditCmd.MarkFlagRequired("target")
}

func runAudit(cmd *cobra.Command, args []string) error {
	target, err := bluetooth.ParseAddress(auditTarget)
	if err != nil {
		return err
	}

	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	app.banner()
	app.console.Printf("\n## Starting Security Audit for: %s ##\n", target)
	_, err = app.auditor.Audit(ctx, target, app.handle)
	return err
}
