package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Anniext/bolice/internal/config"
)

// resetCmd 单独执行适配器恢复
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "恢复 HCI 适配器",
	Long: `停止蓝牙服务、结束残留的守护进程并对适配器做硬件复位。

与扫描前的恢复相同，即使配置中关闭了恢复也会执行。
任一步骤失败时命令返回非零状态。`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	// 显式执行的 reset 不受 recovery.enabled 和 --no-recovery 影响
	viper.Set(config.KeyRecoveryEnabled, true)
	noRecovery = false

	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	app.banner()
	result := app.recovery.Reset(ctx, app.handle)
	if !result.OK() {
		return fmt.Errorf("adapter recovery finished with %d failed step(s)", len(result.Failures()))
	}
	return nil
}
