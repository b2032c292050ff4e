package bluetooth

//go:generate mockgen -destination=mock_host.go -package=bluetooth github.com/Anniext/bolice/pkg/bluetooth Host,Connection

import (
	"context"
	"time"
)

// DiscoveryHandler 扫描事件消费者
type DiscoveryHandler interface {
	// OnDeviceSeen 每收到一次广播调用一次
	OnDeviceSeen(addr Address, name string, rssi int)
}

// DiscoveryHandlerFunc 函数形式的 DiscoveryHandler
type DiscoveryHandlerFunc func(addr Address, name string, rssi int)

// OnDeviceSeen 实现 DiscoveryHandler
func (f DiscoveryHandlerFunc) OnDeviceSeen(addr Address, name string, rssi int) {
	f(addr, name, rssi)
}

// Host BLE 主机接口，封装扫描与连接
type Host interface {
	// Scan 在指定适配器上扫描 duration 时长，阻塞直到扫描结束
	Scan(ctx context.Context, adapter AdapterHandle, duration time.Duration, handler DiscoveryHandler) error
	// Connect 连接到目标设备，失败时返回 *ConnectError
	Connect(ctx context.Context, adapter AdapterHandle, addr Address) (Connection, error)
}

// Connection 一条活动的 GATT 连接
type Connection interface {
	// Services 枚举全部主服务
	Services(ctx context.Context) ([]ServiceNode, error)
	// Characteristics 枚举服务下的特征
	Characteristics(ctx context.Context, service ServiceNode) ([]CharacteristicNode, error)
	// Read 读取特征值，访问被拒绝时返回 *AccessError
	Read(ctx context.Context, char CharacteristicNode) ([]byte, error)
	// Write 写入特征值，withResponse 为 true 时使用带确认的写请求
	Write(ctx context.Context, char CharacteristicNode, value []byte, withResponse bool) error
	// Disconnect 断开连接并释放适配器
	Disconnect() error
}
