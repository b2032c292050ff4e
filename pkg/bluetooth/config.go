package bluetooth

import (
	"errors"
	"fmt"
	"time"
)

// Config 审计工具配置，进程生命周期内固定
type Config struct {
	Adapter  AdapterConfig  `json:"adapter"`   // 适配器配置
	Scan     ScanConfig     `json:"scan"`      // 扫描配置
	Audit    AuditConfig    `json:"audit"`     // 审计配置
	Recovery RecoveryConfig `json:"recovery"`  // 适配器恢复配置
	LogLevel string         `json:"log_level"` // 日志级别
}

// AdapterConfig 适配器配置
type AdapterConfig struct {
	Index int `json:"index"` // 适配器索引，对应 hciN
}

// ScanConfig 扫描配置
type ScanConfig struct {
	Duration    time.Duration `json:"duration"`     // 扫描时长
	SettleDelay time.Duration `json:"settle_delay"` // 复位后等待时间
}

// AuditConfig 审计配置
type AuditConfig struct {
	ConnectTimeout time.Duration `json:"connect_timeout"` // 连接超时时间
	ProbeWrites    bool          `json:"probe_writes"`    // 是否执行写入探测
}

// RecoveryConfig 适配器恢复配置
type RecoveryConfig struct {
	Enabled     bool   `json:"enabled"`      // 扫描前是否执行恢复
	ServiceName string `json:"service_name"` // 需要停止的系统服务
	DaemonName  string `json:"daemon_name"`  // 需要结束的守护进程
	ResetMethod string `json:"reset_method"` // 硬件复位方式
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Adapter: AdapterConfig{
			Index: DefaultAdapterIndex,
		},
		Scan: ScanConfig{
			Duration:    DefaultScanDuration,
			SettleDelay: DefaultSettleDelay,
		},
		Audit: AuditConfig{
			ConnectTimeout: DefaultConnectTimeout,
			ProbeWrites:    true,
		},
		Recovery: RecoveryConfig{
			Enabled:     true,
			ServiceName: DefaultServiceName,
			DaemonName:  DefaultDaemonName,
			ResetMethod: ResetMethodIoctl,
		},
		LogLevel: "info",
	}
}

// AdapterHandle 返回配置对应的适配器标识
func (c *Config) AdapterHandle() AdapterHandle {
	return NewAdapterHandle(c.Adapter.Index)
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Adapter.Index < 0 {
		return fmt.Errorf("adapter index must not be negative: %d", c.Adapter.Index)
	}
	if c.Scan.Duration <= 0 {
		return errors.New("scan duration must be positive")
	}
	if c.Scan.SettleDelay < 0 {
		return errors.New("settle delay must not be negative")
	}
	if c.Audit.ConnectTimeout <= 0 {
		return errors.New("connect timeout must be positive")
	}
	if c.Recovery.Enabled {
		if c.Recovery.ServiceName == "" {
			return errors.New("recovery service name must not be empty")
		}
		if c.Recovery.DaemonName == "" {
			return errors.New("recovery daemon name must not be empty")
		}
	}
	switch c.Recovery.ResetMethod {
	case ResetMethodIoctl, ResetMethodHciconfig:
	default:
		return fmt.Errorf("unsupported reset method: %q", c.Recovery.ResetMethod)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %q", c.LogLevel)
	}
	return nil
}
