package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Anniext/bolice/internal/config"
)

// 应用程序版本信息
const (
	AppName    = "Bolice"
	AppVersion = "1.0.0"
	AppDesc    = "BLE 安全审计工具"
)

var (
	// 全局配置文件路径
	cfgFile string
	// 全局日志级别
	logLevel string
	// 关闭扫描前的适配器恢复
	noRecovery bool
	// 只读模式，不执行写入探测
	readOnly bool
)

// rootCmd 不带子命令时启动交互式审计会话
var rootCmd = &cobra.Command{
	Use:   "bolice",
	Short: "Bolice - BLE 安全审计工具",
	Long: `Bolice 是一个交互式的低功耗蓝牙安全审计工具。

工作流程：
• 适配器恢复：停止蓝牙服务、结束残留守护进程、硬件复位 HCI 适配器
• 设备发现：定时扫描附近的 BLE 设备并由操作员选择目标
• 安全审计：连接目标，枚举 GATT 服务和特征，在未认证状态下探测读写权限

需要 root 权限才能访问原始 HCI 套接字。`,
	Version:       AppVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSession,
}

// Execute 添加所有子命令到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "配置文件路径 (默认为 $HOME/bolice.yaml)")
	flags.StringVar(&logLevel, "log-level", "info", "日志级别 (debug, info, warn, error)")
	flags.Int("adapter", 0, "HCI 适配器索引 (hciN)")
	flags.Duration("scan-duration", 0, "扫描持续时间 (默认 5m)")
	flags.Duration("connect-timeout", 0, "连接超时时间 (默认 5s)")
	flags.Duration("settle-delay", 0, "适配器复位后的等待时间 (默认 1s)")
	flags.String("reset-method", "", "硬件复位方式 (ioctl, hciconfig)")
	flags.BoolVar(&noRecovery, "no-recovery", false, "扫描前不执行适配器恢复")
	flags.BoolVar(&readOnly, "read-only", false, "只读模式，跳过写入探测")

	// 绑定标志到 viper，只有显式指定的标志才会覆盖配置
	viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	viper.BindPFlag(config.KeyAdapterIndex, flags.Lookup("adapter"))
	viper.BindPFlag(config.KeyScanDuration, flags.Lookup("scan-duration"))
	viper.BindPFlag(config.KeyConnectTimeout, flags.Lookup("connect-timeout"))
	viper.BindPFlag(config.KeyScanSettleDelay, flags.Lookup("settle-delay"))
	viper.BindPFlag(config.KeyRecoveryResetMethod, flags.Lookup("reset-method"))
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if cfgFile != "" {
		// 使用命令行指定的配置文件
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.SetConfigType("yaml")
		viper.SetConfigName("bolice")
	}

	// 环境变量形如 BOLICE_SCAN_DURATION
	viper.SetEnvPrefix("BOLICE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "使用配置文件:", viper.ConfigFileUsed())
	}
}

func runSession(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	app.banner()
	return app.session.Run(ctx)
}

// GetRootCommand 返回根命令，主要用于测试
func GetRootCommand() *cobra.Command {
	return rootCmd
}
