//go:build !linux

package adapter

import (
	"context"
	"log/slog"

	"github.com/Anniext/bolice/pkg/bluetooth"
)

// unsupportedController 非 Linux 平台的系统控制器，所有步骤都返回不支持
type unsupportedController struct{}

// NewSystemController 创建当前平台的系统控制器
func NewSystemController(resetMethod string, logger *slog.Logger) SystemController {
	return unsupportedController{}
}

func (unsupportedController) StopService(ctx context.Context, name string) error {
	return bluetooth.NewBluetoothErrorWithDevice(bluetooth.ErrCodeNotSupported,
		"service control not supported", name, bluetooth.OperationReset.String())
}

func (unsupportedController) KillProcess(ctx context.Context, name string) (int, error) {
	return 0, bluetooth.NewBluetoothErrorWithDevice(bluetooth.ErrCodeNotSupported,
		"process control not supported", name, bluetooth.OperationReset.String())
}

func (unsupportedController) HardwareReset(ctx context.Context, adapter bluetooth.AdapterHandle) error {
	return bluetooth.NewBluetoothErrorWithDevice(bluetooth.ErrCodeNotSupported,
		"hardware reset not supported", adapter.Name, bluetooth.OperationReset.String())
}
