package bluetooth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDefaultConfig 测试默认配置
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultScanDuration, cfg.Scan.Duration)
	assert.Equal(t, DefaultConnectTimeout, cfg.Audit.ConnectTimeout)
	assert.True(t, cfg.Audit.ProbeWrites)
	assert.True(t, cfg.Recovery.Enabled)
	assert.Equal(t, ResetMethodIoctl, cfg.Recovery.ResetMethod)
	assert.Equal(t, "hci0", cfg.AdapterHandle().Name)
}

// TestConfigValidation 测试配置验证
func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"负的适配器索引", func(c *Config) { c.Adapter.Index = -1 }},
		{"扫描时长为零", func(c *Config) { c.Scan.Duration = 0 }},
		{"负的等待时间", func(c *Config) { c.Scan.SettleDelay = -1 }},
		{"连接超时为零", func(c *Config) { c.Audit.ConnectTimeout = 0 }},
		{"服务名为空", func(c *Config) { c.Recovery.ServiceName = "" }},
		{"守护进程名为空", func(c *Config) { c.Recovery.DaemonName = "" }},
		{"未知复位方式", func(c *Config) { c.Recovery.ResetMethod = "usb" }},
		{"未知日志级别", func(c *Config) { c.LogLevel = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfigValidation_RecoveryDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Recovery.Enabled = false
	cfg.Recovery.ServiceName = ""
	cfg.Recovery.DaemonName = ""
	assert.NoError(t, cfg.Validate())
}
