//go:build !linux

package adapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/Anniext/bolice/pkg/bluetooth"
)

// unsupportedHost 非 Linux 平台没有原始 HCI 访问
type unsupportedHost struct{}

// NewHost 创建当前平台的 BLE 主机
func NewHost(connectTimeout time.Duration, logger *slog.Logger) bluetooth.Host {
	return unsupportedHost{}
}

func (unsupportedHost) Scan(ctx context.Context, adapter bluetooth.AdapterHandle, duration time.Duration, handler bluetooth.DiscoveryHandler) error {
	return bluetooth.WrapError(bluetooth.ErrNotSupported, bluetooth.ErrCodeScanFailed,
		"raw HCI scanning requires linux", adapter.Name, bluetooth.OperationScan.String())
}

func (unsupportedHost) Connect(ctx context.Context, adapter bluetooth.AdapterHandle, addr bluetooth.Address) (bluetooth.Connection, error) {
	return nil, &bluetooth.ConnectError{Kind: bluetooth.ConnectAdapterFault, Address: addr, Cause: bluetooth.ErrNotSupported}
}
