package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Anniext/bolice/internal/device"
)

// scanCmd 代表设备扫描命令
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "扫描并选择 BLE 设备",
	Long: `执行一次完整的发现流程：适配器恢复、定时扫描、交互式选择。

选中的设备地址会单独输出一行，便于传给 audit --target。`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	app.banner()
	addr, err := app.discovery.Discover(ctx, app.handle)
	if errors.Is(err, device.ErrNoDeviceSelected) {
		app.logger.Info("未选择设备")
		return nil
	}
	if err != nil {
		return err
	}

	app.console.Println(addr)
	return nil
}
