package bluetooth

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AdapterHandle 本地 BLE 适配器标识
type AdapterHandle struct {
	Index int    `json:"index"` // 适配器索引
	Name  string `json:"name"`  // 设备名称，如 hci0
}

// NewAdapterHandle 根据索引创建适配器标识
func NewAdapterHandle(index int) AdapterHandle {
	return AdapterHandle{Index: index, Name: fmt.Sprintf("hci%d", index)}
}

func (a AdapterHandle) String() string {
	return a.Name
}

// DiscoveredDevice 扫描期间发现的外设
type DiscoveredDevice struct {
	Address Address `json:"address"` // 规范化的设备地址
	Name    string  `json:"name"`    // 广播名称，可能为空
	RSSI    int     `json:"rssi"`    // 信号强度 (dB)
}

// DisplayName 返回用于展示的名称
func (d DiscoveredDevice) DisplayName() string {
	if d.Name == "" {
		return "N/A"
	}
	return d.Name
}

// Property GATT 特征属性位
type Property uint8

// 属性位取值与 GATT 特征声明一致 [Vol 3, Part G, 3.3.1.1]
const (
	PropBroadcast       Property = 0x01
	PropRead            Property = 0x02
	PropWriteNoResponse Property = 0x04
	PropWrite           Property = 0x08
	PropNotify          Property = 0x10
	PropIndicate        Property = 0x20
	PropSignedWrite     Property = 0x40
	PropExtended        Property = 0x80
)

var propertyNames = []struct {
	flag Property
	name string
}{
	{PropBroadcast, "BROADCAST"},
	{PropRead, "READ"},
	{PropWriteNoResponse, "WRITE NO RESPONSE"},
	{PropWrite, "WRITE"},
	{PropNotify, "NOTIFY"},
	{PropIndicate, "INDICATE"},
	{PropSignedWrite, "AUTHENTICATED SIGNED WRITES"},
	{PropExtended, "EXTENDED PROPERTIES"},
}

// Has 检查是否包含指定属性位
func (p Property) Has(flag Property) bool {
	return p&flag != 0
}

// Readable 是否可读
func (p Property) Readable() bool {
	return p.Has(PropRead)
}

// Writable 是否可写（带或不带响应）
func (p Property) Writable() bool {
	return p.Has(PropWrite) || p.Has(PropWriteNoResponse)
}

// String 以空格分隔的大写名称表示属性集合
func (p Property) String() string {
	names := make([]string, 0, len(propertyNames))
	for _, pn := range propertyNames {
		if p.Has(pn.flag) {
			names = append(names, pn.name)
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, " ")
}

// CharacteristicNode GATT 特征
type CharacteristicNode struct {
	UUID        string   `json:"uuid"`         // 特征UUID
	Handle      uint16   `json:"handle"`       // 声明句柄
	ValueHandle uint16   `json:"value_handle"` // 值句柄
	Properties  Property `json:"properties"`   // 属性集合
}

// ServiceNode GATT 服务
type ServiceNode struct {
	UUID            string               `json:"uuid"`            // 服务UUID
	Handle          uint16               `json:"handle"`          // 起始句柄
	EndHandle       uint16               `json:"end_handle"`      // 结束句柄
	Characteristics []CharacteristicNode `json:"characteristics"` // 特征列表
}

// ProbeKind 探测结果类型
type ProbeKind int

const (
	ProbeNotApplicable ProbeKind = iota // 特征不支持该探测
	ProbeReadSuccess                    // 未认证读取成功
	ProbeReadDenied                     // 读取被拒绝
	ProbeWriteSuccess                   // 未认证写入成功
	ProbeWriteDenied                    // 写入被拒绝
)

// String 返回探测结果类型的字符串表示
func (k ProbeKind) String() string {
	switch k {
	case ProbeReadSuccess:
		return "read_success"
	case ProbeReadDenied:
		return "read_denied"
	case ProbeWriteSuccess:
		return "write_success"
	case ProbeWriteDenied:
		return "write_denied"
	default:
		return "not_applicable"
	}
}

// ProbeOutcome 单次探测的结果
type ProbeOutcome struct {
	Kind  ProbeKind
	Value []byte // 仅 ProbeReadSuccess 时有值
	Err   error  // 被拒绝时的原因
}

// Critical 是否为严重发现（未认证写入被接受）
func (o ProbeOutcome) Critical() bool {
	return o.Kind == ProbeWriteSuccess
}

// HexValue 返回读取值的十六进制编码
func (o ProbeOutcome) HexValue() string {
	return hex.EncodeToString(o.Value)
}
