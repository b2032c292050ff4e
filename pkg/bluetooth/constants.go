package bluetooth

import "time"

// Operation 操作类型枚举
type Operation int

const (
	OperationRead       Operation = iota // 读取操作
	OperationWrite                       // 写入操作
	OperationConnect                     // 连接操作
	OperationDisconnect                  // 断开操作
	OperationScan                        // 扫描操作
	OperationEnumerate                   // 服务枚举操作
	OperationReset                       // 适配器复位操作
)

// String 返回操作类型的字符串表示
func (op Operation) String() string {
	switch op {
	case OperationRead:
		return "read"
	case OperationWrite:
		return "write"
	case OperationConnect:
		return "connect"
	case OperationDisconnect:
		return "disconnect"
	case OperationScan:
		return "scan"
	case OperationEnumerate:
		return "enumerate"
	case OperationReset:
		return "reset"
	default:
		return "unknown"
	}
}

// 默认配置常量
const (
	DefaultAdapterIndex   = 0                 // 默认适配器索引 (hci0)
	DefaultScanDuration   = 300 * time.Second // 默认扫描时长
	DefaultSettleDelay    = 1 * time.Second   // 复位后等待适配器重新初始化的时间
	DefaultConnectTimeout = 5 * time.Second   // 默认连接超时时间

	DefaultServiceName = "bluetooth"  // 系统蓝牙服务名
	DefaultDaemonName  = "bluetoothd" // 持有适配器锁的守护进程名
)

// WriteProbeValue 写入探测使用的单字节负载
var WriteProbeValue = []byte{0x01}

// 硬件复位方式
const (
	ResetMethodIoctl     = "ioctl"     // 通过 HCI 原始套接字 ioctl 复位
	ResetMethodHciconfig = "hciconfig" // 调用 hciconfig 命令复位
)

// 错误代码常量
const (
	ErrCodeInvalidParameter = 1001 // 无效参数
	ErrCodeNotFound         = 1003 // 未找到
	ErrCodeNotSupported     = 1007 // 不支持
	ErrCodeInvalidInput     = 1008 // 交互输入无效
	ErrCodeConnectionFailed = 2000 // 连接失败
	ErrCodeDisconnected     = 2001 // 连接断开
	ErrCodeConnectionDenied = 2005 // 对端拒绝连接
	ErrCodeEnumeration      = 2006 // 服务枚举失败
	ErrCodeAccessDenied     = 2007 // 特征访问被拒绝
	ErrCodeNoTarget         = 3004 // 未选择目标设备
	ErrCodeScanFailed       = 4000 // 扫描失败
	ErrCodeRecoveryFailed   = 4001 // 适配器恢复失败
)

// ATT 协议错误码 [Vol 3, Part F, 3.4.1.1]
const (
	ATTErrInvalidHandle          byte = 0x01 // 无效句柄
	ATTErrReadNotPermitted       byte = 0x02 // 不允许读取
	ATTErrWriteNotPermitted      byte = 0x03 // 不允许写入
	ATTErrInsufficientAuthen     byte = 0x05 // 认证不足
	ATTErrRequestNotSupported    byte = 0x06 // 请求不支持
	ATTErrInsufficientAuthor     byte = 0x08 // 授权不足
	ATTErrInsufficientEncryption byte = 0x0F // 加密不足
)

// ATTErrorName 返回 ATT 错误码的可读名称
func ATTErrorName(code byte) string {
	switch code {
	case ATTErrInvalidHandle:
		return "invalid handle"
	case ATTErrReadNotPermitted:
		return "read not permitted"
	case ATTErrWriteNotPermitted:
		return "write not permitted"
	case ATTErrInsufficientAuthen:
		return "insufficient authentication"
	case ATTErrRequestNotSupported:
		return "request not supported"
	case ATTErrInsufficientAuthor:
		return "insufficient authorization"
	case ATTErrInsufficientEncryption:
		return "insufficient encryption"
	default:
		return "unknown"
	}
}
