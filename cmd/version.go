package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd 代表版本命令
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Long: `显示 Bolice 的详细版本信息，包括：
• 应用程序版本
• Go 版本
• 构建信息`,
	Run: showVersion,
}

var (
	// 构建时注入的变量
	buildTime = "unknown"
	gitCommit = "unknown"
	gitBranch = "unknown"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

func showVersion(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s v%s\n", AppName, AppVersion)
	fmt.Fprintf(out, "%s\n\n", AppDesc)

	fmt.Fprintln(out, "版本信息:")
	fmt.Fprintf(out, "  应用版本: %s\n", AppVersion)
	fmt.Fprintf(out, "  Go 版本:  %s\n", runtime.Version())
	fmt.Fprintf(out, "  系统架构: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	fmt.Fprintln(out, "\n构建信息:")
	fmt.Fprintf(out, "  构建时间: %s\n", buildTime)
	fmt.Fprintf(out, "  Git 提交: %s\n", gitCommit)
	fmt.Fprintf(out, "  Git 分支: %s\n", gitBranch)

	fmt.Fprintln(out, "\n技术栈:")
	fmt.Fprintln(out, "  • go-ble - 原始 HCI 套接字上的 BLE 主机")
	fmt.Fprintln(out, "  • gopsutil - 进程管理")
	fmt.Fprintln(out, "  • Cobra CLI / Viper - 命令行与配置")
}
