// Package config 负责从 viper 装配并校验运行配置。
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Anniext/bolice/pkg/bluetooth"
)

// 配置键
const (
	KeyAdapterIndex        = "adapter.index"
	KeyScanDuration        = "scan.duration"
	KeyScanSettleDelay     = "scan.settle_delay"
	KeyConnectTimeout      = "audit.connect_timeout"
	KeyProbeWrites         = "audit.probe_writes"
	KeyRecoveryEnabled     = "recovery.enabled"
	KeyRecoveryService     = "recovery.service"
	KeyRecoveryDaemon      = "recovery.daemon"
	KeyRecoveryResetMethod = "recovery.reset_method"
	KeyLogLevel            = "log_level"
)

// SetDefaults 注册全部默认值，未出现在配置文件、环境变量和命令行中的键取这里的值
func SetDefaults(v *viper.Viper) {
	def := bluetooth.DefaultConfig()

	v.SetDefault(KeyAdapterIndex, def.Adapter.Index)
	v.SetDefault(KeyScanDuration, def.Scan.Duration)
	v.SetDefault(KeyScanSettleDelay, def.Scan.SettleDelay)
	v.SetDefault(KeyConnectTimeout, def.Audit.ConnectTimeout)
	v.SetDefault(KeyProbeWrites, def.Audit.ProbeWrites)
	v.SetDefault(KeyRecoveryEnabled, def.Recovery.Enabled)
	v.SetDefault(KeyRecoveryService, def.Recovery.ServiceName)
	v.SetDefault(KeyRecoveryDaemon, def.Recovery.DaemonName)
	v.SetDefault(KeyRecoveryResetMethod, def.Recovery.ResetMethod)
	v.SetDefault(KeyLogLevel, def.LogLevel)
}

// Load 从 viper 读取配置并校验
func Load(v *viper.Viper) (*bluetooth.Config, error) {
	cfg := &bluetooth.Config{
		Adapter: bluetooth.AdapterConfig{
			Index: v.GetInt(KeyAdapterIndex),
		},
		Scan: bluetooth.ScanConfig{
			Duration:    v.GetDuration(KeyScanDuration),
			SettleDelay: v.GetDuration(KeyScanSettleDelay),
		},
		Audit: bluetooth.AuditConfig{
			ConnectTimeout: v.GetDuration(KeyConnectTimeout),
			ProbeWrites:    v.GetBool(KeyProbeWrites),
		},
		Recovery: bluetooth.RecoveryConfig{
			Enabled:     v.GetBool(KeyRecoveryEnabled),
			ServiceName: v.GetString(KeyRecoveryService),
			DaemonName:  v.GetString(KeyRecoveryDaemon),
			ResetMethod: v.GetString(KeyRecoveryResetMethod),
		},
		LogLevel: v.GetString(KeyLogLevel),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
