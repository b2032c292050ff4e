//go:build linux

package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/go-ble/ble/linux/hci"

	"github.com/Anniext/bolice/pkg/bluetooth"
)

// disconnectWait 断开连接时等待链路关闭的最长时间
const disconnectWait = 2 * time.Second

// HCIHost 基于原始 HCI 套接字的 BLE 主机实现。
// 不依赖 bluetoothd，因此可以在恢复步骤停止守护进程后继续工作。
// 每次扫描和连接都重新打开设备，硬件复位会使旧套接字失效。
type HCIHost struct {
	connectTimeout time.Duration
	logger         *slog.Logger
}

// NewHost 创建当前平台的 BLE 主机
func NewHost(connectTimeout time.Duration, logger *slog.Logger) bluetooth.Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &HCIHost{
		connectTimeout: connectTimeout,
		logger:         logger.With("component", "hci_host"),
	}
}

func (h *HCIHost) openDevice(adapter bluetooth.AdapterHandle) (*linux.Device, error) {
	dev, err := linux.NewDevice(ble.OptDeviceID(adapter.Index))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", adapter.Name, err)
	}
	return dev, nil
}

func (h *HCIHost) closeDevice(dev *linux.Device) {
	if err := dev.Stop(); err != nil {
		h.logger.Debug("关闭HCI设备失败", "error", err)
	}
}

// Scan 扫描指定时长，每个广播调用一次 handler
func (h *HCIHost) Scan(ctx context.Context, adapter bluetooth.AdapterHandle, duration time.Duration, handler bluetooth.DiscoveryHandler) error {
	dev, err := h.openDevice(adapter)
	if err != nil {
		return bluetooth.WrapError(err, bluetooth.ErrCodeScanFailed, "adapter unavailable", adapter.Name, bluetooth.OperationScan.String())
	}
	defer h.closeDevice(dev)

	scanCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	h.logger.Debug("开始扫描", "adapter", adapter.Name, "duration", duration)
	err = dev.Scan(scanCtx, false, func(a ble.Advertisement) {
		handler.OnDeviceSeen(bluetooth.CanonicalAddress(a.Addr().String()), a.LocalName(), a.RSSI())
	})
	return scanResult(ctx, scanCtx, err, adapter)
}

// scanResult 扫描时长到期是正常结束，调用方取消或其他错误按扫描失败返回
func scanResult(ctx, scanCtx context.Context, err error, adapter bluetooth.AdapterHandle) error {
	if err == nil {
		return nil
	}
	if scanCtx.Err() != nil && ctx.Err() == nil {
		return nil
	}
	return bluetooth.WrapError(err, bluetooth.ErrCodeScanFailed, "scan failed", adapter.Name, bluetooth.OperationScan.String())
}

// Connect 连接目标设备，失败时返回分类后的 *bluetooth.ConnectError
func (h *HCIHost) Connect(ctx context.Context, adapter bluetooth.AdapterHandle, addr bluetooth.Address) (bluetooth.Connection, error) {
	dev, err := h.openDevice(adapter)
	if err != nil {
		return nil, &bluetooth.ConnectError{Kind: bluetooth.ConnectAdapterFault, Address: addr, Cause: err}
	}

	dialCtx, cancel := context.WithTimeout(ctx, h.connectTimeout)
	defer cancel()

	cln, err := dev.Dial(dialCtx, ble.NewAddr(addr.String()))
	if err != nil {
		h.closeDevice(dev)
		if errors.Is(dialCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &bluetooth.ConnectError{Kind: bluetooth.ConnectTimeout, Address: addr, Cause: err}
		}
		return nil, bluetooth.ClassifyConnectError(addr, withHCIStatus(err))
	}

	h.logger.Debug("连接建立", "address", addr)
	return &hciConnection{
		addr:     addr,
		dev:      dev,
		cln:      cln,
		services: make(map[uint16]*ble.Service),
		chars:    make(map[uint16]*ble.Characteristic),
		logger:   h.logger,
	}, nil
}

// withHCIStatus 控制器返回的命令状态码转换为 bluetooth.HCIStatus，保留原始错误
func withHCIStatus(err error) error {
	var cmdErr hci.ErrCommand
	if !errors.As(err, &cmdErr) {
		return err
	}
	return fmt.Errorf("%w (%w)", err, bluetooth.HCIStatus(cmdErr))
}

// stopper 连接持有的 HCI 设备
type stopper interface {
	Stop() error
}

// hciConnection go-ble 客户端之上的 GATT 连接
type hciConnection struct {
	addr     bluetooth.Address
	dev      stopper
	cln      ble.Client
	services map[uint16]*ble.Service        // 按起始句柄索引
	chars    map[uint16]*ble.Characteristic // 按值句柄索引
	once     sync.Once
	closeErr error
	logger   *slog.Logger
}

// Services 枚举主服务
func (c *hciConnection) Services(ctx context.Context) ([]bluetooth.ServiceNode, error) {
	svcs, err := c.cln.DiscoverServices(nil)
	if err != nil {
		return nil, c.linkError(err, bluetooth.OperationEnumerate, "service discovery failed")
	}

	nodes := make([]bluetooth.ServiceNode, 0, len(svcs))
	for _, s := range svcs {
		c.services[s.Handle] = s
		nodes = append(nodes, bluetooth.ServiceNode{
			UUID:      s.UUID.String(),
			Handle:    s.Handle,
			EndHandle: s.EndHandle,
		})
	}
	return nodes, nil
}

// Characteristics 枚举服务下的特征
func (c *hciConnection) Characteristics(ctx context.Context, service bluetooth.ServiceNode) ([]bluetooth.CharacteristicNode, error) {
	s, ok := c.services[service.Handle]
	if !ok {
		return nil, bluetooth.NewBluetoothErrorWithDevice(bluetooth.ErrCodeNotFound,
			fmt.Sprintf("unknown service %s", service.UUID), c.addr.String(), bluetooth.OperationEnumerate.String())
	}

	chars, err := c.cln.DiscoverCharacteristics(nil, s)
	if err != nil {
		return nil, c.linkError(err, bluetooth.OperationEnumerate, "characteristic discovery failed")
	}

	nodes := make([]bluetooth.CharacteristicNode, 0, len(chars))
	for _, ch := range chars {
		c.chars[ch.ValueHandle] = ch
		nodes = append(nodes, bluetooth.CharacteristicNode{
			UUID:        ch.UUID.String(),
			Handle:      ch.Handle,
			ValueHandle: ch.ValueHandle,
			Properties:  bluetooth.Property(ch.Property),
		})
	}
	return nodes, nil
}

// Read 读取特征值
func (c *hciConnection) Read(ctx context.Context, char bluetooth.CharacteristicNode) ([]byte, error) {
	ch, err := c.lookup(char)
	if err != nil {
		return nil, err
	}
	value, err := c.cln.ReadCharacteristic(ch)
	if err != nil {
		return nil, c.accessError(err, bluetooth.OperationRead, char)
	}
	return value, nil
}

// Write 写入特征值
func (c *hciConnection) Write(ctx context.Context, char bluetooth.CharacteristicNode, value []byte, withResponse bool) error {
	ch, err := c.lookup(char)
	if err != nil {
		return err
	}
	if err := c.cln.WriteCharacteristic(ch, value, !withResponse); err != nil {
		return c.accessError(err, bluetooth.OperationWrite, char)
	}
	return nil
}

// Disconnect 断开链路并关闭 HCI 设备，重复调用只生效一次
func (c *hciConnection) Disconnect() error {
	c.once.Do(func() {
		var errs []error
		if err := c.cln.CancelConnection(); err != nil {
			errs = append(errs, fmt.Errorf("cancel connection: %w", err))
		}
		select {
		case <-c.cln.Disconnected():
		case <-time.After(disconnectWait):
			c.logger.Warn("等待链路断开超时", "address", c.addr)
		}
		if err := c.dev.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop device: %w", err))
		}
		if len(errs) > 0 {
			c.closeErr = fmt.Errorf("%s %s: %w", bluetooth.OperationDisconnect, c.addr, errors.Join(errs...))
		}
	})
	return c.closeErr
}

func (c *hciConnection) lookup(char bluetooth.CharacteristicNode) (*ble.Characteristic, error) {
	ch, ok := c.chars[char.ValueHandle]
	if !ok {
		return nil, bluetooth.NewBluetoothErrorWithDevice(bluetooth.ErrCodeNotFound,
			fmt.Sprintf("unknown characteristic %s", char.UUID), c.addr.String(), bluetooth.OperationRead.String())
	}
	return ch, nil
}

// linked 链路是否仍然存在
func (c *hciConnection) linked() bool {
	select {
	case <-c.cln.Disconnected():
		return false
	default:
		return true
	}
}

// linkError 链路断开时返回 ErrCodeDisconnected，否则按枚举失败处理
func (c *hciConnection) linkError(err error, op bluetooth.Operation, msg string) error {
	if !c.linked() {
		return bluetooth.WrapError(err, bluetooth.ErrCodeDisconnected, "link lost", c.addr.String(), op.String())
	}
	return bluetooth.WrapError(err, bluetooth.ErrCodeEnumeration, msg, c.addr.String(), op.String())
}

// accessError 将读写失败转换为 AccessError；链路已断开时返回不可恢复错误
func (c *hciConnection) accessError(err error, op bluetooth.Operation, char bluetooth.CharacteristicNode) error {
	if !c.linked() {
		return bluetooth.WrapError(err, bluetooth.ErrCodeDisconnected, "link lost", c.addr.String(), op.String())
	}
	ae := &bluetooth.AccessError{Op: op, UUID: char.UUID, Cause: err}
	var attErr ble.ATTError
	if errors.As(err, &attErr) {
		ae.ATTCode = byte(attErr)
	}
	return ae
}
