package device

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Anniext/bolice/internal/adapter"
	"github.com/Anniext/bolice/internal/console"
	"github.com/Anniext/bolice/pkg/bluetooth"
)

// ErrNoDeviceSelected 扫描结束但没有得到目标设备（无设备或操作员退出）
var ErrNoDeviceSelected = errors.New("no device selected")

// quitSentinel 选择提示中的退出输入
const quitSentinel = "q"

const (
	reasonNotNumber  = "not a number"
	reasonOutOfRange = "out of range"
)

// Accumulator 单次扫描的设备集合，实现 bluetooth.DiscoveryHandler。
// 同一地址只保留首次发现的记录，后续广播被忽略。
type Accumulator struct {
	mu      sync.Mutex
	devices map[bluetooth.Address]bluetooth.DiscoveredDevice
	events  int
}

// NewAccumulator 创建空的设备集合
func NewAccumulator() *Accumulator {
	return &Accumulator{
		devices: make(map[bluetooth.Address]bluetooth.DiscoveredDevice),
	}
}

// OnDeviceSeen 记录一次发现事件。扫描回调可能来自 HCI 事件协程，需要加锁。
func (a *Accumulator) OnDeviceSeen(addr bluetooth.Address, name string, rssi int) {
	key := bluetooth.CanonicalAddress(addr.String())

	a.mu.Lock()
	defer a.mu.Unlock()

	a.events++
	if _, seen := a.devices[key]; seen {
		return
	}
	a.devices[key] = bluetooth.DiscoveredDevice{
		Address: key,
		Name:    name,
		RSSI:    rssi,
	}
}

// Len 返回不同设备的数量
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.devices)
}

// Events 返回收到的发现事件总数
func (a *Accumulator) Events() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.events
}

// Sorted 返回按地址排序的设备列表
func (a *Accumulator) Sorted() []bluetooth.DiscoveredDevice {
	a.mu.Lock()
	devices := make([]bluetooth.DiscoveredDevice, 0, len(a.devices))
	for _, d := range a.devices {
		devices = append(devices, d)
	}
	a.mu.Unlock()

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Address < devices[j].Address
	})
	return devices
}

// Discovery 设备发现：恢复适配器、定时扫描、交互选择目标
type Discovery struct {
	host     bluetooth.Host
	recovery adapter.Resetter
	cfg      bluetooth.ScanConfig
	console  *console.Console
	logger   *slog.Logger
}

// NewDiscovery 创建设备发现组件
func NewDiscovery(host bluetooth.Host, recovery adapter.Resetter, cfg bluetooth.ScanConfig, con *console.Console, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{
		host:     host,
		recovery: recovery,
		cfg:      cfg,
		console:  con,
		logger:   logger.With("component", "discovery"),
	}
}

// Discover 执行一次完整的发现流程并返回操作员选择的设备地址。
// 没有设备或操作员退出时返回 ErrNoDeviceSelected；扫描失败返回 ErrCodeScanFailed 错误。
func (d *Discovery) Discover(ctx context.Context, handle bluetooth.AdapterHandle) (bluetooth.Address, error) {
	d.console.Section("1. Device Discovery")

	d.recovery.Reset(ctx, handle)
	if err := d.settle(ctx); err != nil {
		d.logger.Warn("等待适配器就绪时被取消", "adapter", handle.Name, "error", err)
		d.console.Tagged(console.TagWarning, "Discovery cancelled before scanning: %v", err)
		return "", err
	}

	acc := NewAccumulator()
	d.console.Line(" ", console.TagInfo, "Scanning for %s on %s...", d.cfg.Duration, handle.Name)

	if err := d.host.Scan(ctx, handle, d.cfg.Duration, acc); err != nil {
		if !errors.Is(err, bluetooth.ErrScanFailed) {
			err = bluetooth.WrapError(err, bluetooth.ErrCodeScanFailed, "scan failed", handle.Name, bluetooth.OperationScan.String())
		}
		d.logger.Error("扫描失败", "adapter", handle.Name, "error", err)
		d.console.Println()
		d.console.Line("", console.TagError, "Scanner failed: %v", err)
		return "", err
	}

	d.logger.Info("扫描完成", "adapter", handle.Name, "devices", acc.Len(), "events", acc.Events())

	devices := acc.Sorted()
	if len(devices) == 0 {
		d.console.Tagged(console.TagInfo, "No devices found.")
		return "", ErrNoDeviceSelected
	}

	PrintDevices(d.console, devices)
	return SelectDevice(d.console, devices)
}

// settle 复位后等待适配器重新初始化
func (d *Discovery) settle(ctx context.Context) error {
	if d.cfg.SettleDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(d.cfg.SettleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PrintDevices 以 1 开始的序号列出设备
func PrintDevices(con *console.Console, devices []bluetooth.DiscoveredDevice) {
	con.Section("Discovered Devices")
	for i, dev := range devices {
		con.Printf(" %d. MAC: %s | Name: %s | RSSI: %d dB\n", i+1, dev.Address, dev.DisplayName(), dev.RSSI)
	}
}

// ParseSelection 解析选择输入。返回 0 起始的索引；quit 为 true 表示操作员退出。
func ParseSelection(input string, count int) (index int, quit bool, err error) {
	input = strings.TrimSpace(input)
	if strings.EqualFold(input, quitSentinel) {
		return 0, true, nil
	}

	n, convErr := strconv.Atoi(input)
	if convErr != nil {
		return 0, false, &bluetooth.InputError{Input: input, Reason: reasonNotNumber}
	}
	if n < 1 || n > count {
		return 0, false, &bluetooth.InputError{Input: input, Reason: reasonOutOfRange}
	}
	return n - 1, false, nil
}

// SelectDevice 循环提示直到得到有效序号或退出。输入结束按退出处理。
func SelectDevice(con *console.Console, devices []bluetooth.DiscoveredDevice) (bluetooth.Address, error) {
	for {
		input, err := con.Prompt("\nSelect device number to test (e.g., 1) or 'q' to quit: ")
		if err != nil {
			return "", ErrNoDeviceSelected
		}

		index, quit, err := ParseSelection(input, len(devices))
		if quit {
			return "", ErrNoDeviceSelected
		}
		if err != nil {
			var inErr *bluetooth.InputError
			if errors.As(err, &inErr) && inErr.Reason == reasonOutOfRange {
				con.Println("Invalid choice. Please enter a valid number.")
			} else {
				con.Println("Invalid input. Please enter a number or 'q'.")
			}
			continue
		}

		selected := devices[index]
		con.Tagged(console.TagSelected, "Testing device: %s", selected.Address)
		return selected.Address, nil
	}
}
