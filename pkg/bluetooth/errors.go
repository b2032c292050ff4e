package bluetooth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// BluetoothError 蓝牙错误类型
type BluetoothError struct {
	Code      int                    `json:"code"`      // 错误代码
	Message   string                 `json:"message"`   // 错误消息
	DeviceID  string                 `json:"device_id"` // 设备地址
	Operation string                 `json:"operation"` // 操作类型
	Timestamp time.Time              `json:"timestamp"` // 错误时间戳
	Cause     error                  `json:"-"`         // 原始错误
	Context   map[string]interface{} `json:"context"`   // 错误上下文
}

// Error 实现 error 接口
func (e *BluetoothError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.DeviceID != "" {
		return fmt.Sprintf("bluetooth error [%d]: %s (device: %s, operation: %s)",
			e.Code, msg, e.DeviceID, e.Operation)
	}
	return fmt.Sprintf("bluetooth error [%d]: %s (operation: %s)",
		e.Code, msg, e.Operation)
}

// Unwrap 实现错误包装接口
func (e *BluetoothError) Unwrap() error {
	return e.Cause
}

// Is 按错误代码比较
func (e *BluetoothError) Is(target error) bool {
	if t, ok := target.(*BluetoothError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext 添加错误上下文
func (e *BluetoothError) WithContext(key string, value interface{}) *BluetoothError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewBluetoothError 创建新的蓝牙错误
func NewBluetoothError(code int, message string) *BluetoothError {
	return &BluetoothError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Context:   make(map[string]interface{}),
	}
}

// NewBluetoothErrorWithDevice 创建带设备信息的蓝牙错误
func NewBluetoothErrorWithDevice(code int, message, deviceID, operation string) *BluetoothError {
	return &BluetoothError{
		Code:      code,
		Message:   message,
		DeviceID:  deviceID,
		Operation: operation,
		Timestamp: time.Now(),
		Context:   make(map[string]interface{}),
	}
}

// WrapError 包装现有错误
func WrapError(err error, code int, message, deviceID, operation string) *BluetoothError {
	return &BluetoothError{
		Code:      code,
		Message:   message,
		DeviceID:  deviceID,
		Operation: operation,
		Timestamp: time.Now(),
		Cause:     err,
		Context:   make(map[string]interface{}),
	}
}

// 预定义的错误变量，用于 errors.Is 按代码匹配
var (
	ErrInvalidParameter = NewBluetoothError(ErrCodeInvalidParameter, "invalid parameter")
	ErrNotSupported     = NewBluetoothError(ErrCodeNotSupported, "operation not supported on this platform")
	ErrScanFailed       = NewBluetoothError(ErrCodeScanFailed, "scan failed")
	ErrConnectionFailed = NewBluetoothError(ErrCodeConnectionFailed, "connection failed")
	ErrConnectionDenied = NewBluetoothError(ErrCodeConnectionDenied, "connection denied by peer")
	ErrDisconnected     = NewBluetoothError(ErrCodeDisconnected, "link lost")
	ErrEnumeration      = NewBluetoothError(ErrCodeEnumeration, "enumeration failed")
	ErrAccessDenied     = NewBluetoothError(ErrCodeAccessDenied, "characteristic access denied")
	ErrInvalidInput     = NewBluetoothError(ErrCodeInvalidInput, "invalid input")
	ErrNoTarget         = NewBluetoothError(ErrCodeNoTarget, "no target selected")
)

// ConnectErrorKind 连接失败分类
type ConnectErrorKind int

const (
	ConnectOther        ConnectErrorKind = iota // 其他连接错误
	ConnectRefused                              // 对端主动拒绝（通常需要绑定/配对）
	ConnectTimeout                              // 连接超时
	ConnectAdapterFault                         // 本地适配器故障
)

// String 返回连接失败分类的字符串表示
func (k ConnectErrorKind) String() string {
	switch k {
	case ConnectRefused:
		return "refused"
	case ConnectTimeout:
		return "timeout"
	case ConnectAdapterFault:
		return "adapter_fault"
	default:
		return "other"
	}
}

// ConnectError 连接失败，携带分类结果
type ConnectError struct {
	Kind    ConnectErrorKind
	Address Address
	Cause   error
}

func (e *ConnectError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("connect %s: %s", e.Address, e.Kind)
	}
	return fmt.Sprintf("connect %s: %s: %v", e.Address, e.Kind, e.Cause)
}

func (e *ConnectError) Unwrap() error {
	return e.Cause
}

// Is 让 ConnectError 可以与 ErrConnectionFailed 匹配，对端拒绝时同时匹配 ErrConnectionDenied
func (e *ConnectError) Is(target error) bool {
	t, ok := target.(*BluetoothError)
	if !ok {
		return false
	}
	switch t.Code {
	case ErrCodeConnectionFailed:
		return true
	case ErrCodeConnectionDenied:
		return e.Kind == ConnectRefused
	}
	return false
}

// IsConnectionDenied 判断错误是否为对端拒绝连接
func IsConnectionDenied(err error) bool {
	return errors.Is(err, ErrConnectionDenied)
}

// HCIStatus HCI 层返回的状态码 [Vol 2, Part D, 1.3]
type HCIStatus byte

// 对端拒绝链路时常见的 HCI 状态码
const (
	HCIAuthenticationFailure    HCIStatus = 0x05
	HCIPinOrKeyMissing          HCIStatus = 0x06
	HCIRejectedLimitedResources HCIStatus = 0x0D
	HCIRejectedSecurity         HCIStatus = 0x0E
	HCIRejectedBadAddress       HCIStatus = 0x0F
	HCIRemoteUserTerminated     HCIStatus = 0x13
	HCIPairingNotAllowed        HCIStatus = 0x18
	HCIInsufficientSecurity     HCIStatus = 0x2F
)

func (s HCIStatus) Error() string {
	return fmt.Sprintf("hci status 0x%02X", byte(s))
}

// refused 判断状态码是否代表对端主动拒绝
func (s HCIStatus) refused() bool {
	switch s {
	case HCIAuthenticationFailure, HCIPinOrKeyMissing, HCIRejectedLimitedResources,
		HCIRejectedSecurity, HCIRejectedBadAddress, HCIRemoteUserTerminated,
		HCIPairingNotAllowed, HCIInsufficientSecurity:
		return true
	}
	return false
}

// refusalHints 无结构化状态码时用于识别拒绝的消息片段（启发式）
var refusalHints = []string{
	"failed to connect",
	"rejected",
	"refused",
	"authentication failure",
	"pin or key missing",
	"pairing not allowed",
	"insufficient security",
	"remote user terminated",
}

// adapterFaultHints 指向本地适配器问题的消息片段
var adapterFaultHints = []string{
	"no such device",
	"operation not permitted",
	"permission denied",
	"device or resource busy",
	"network is down",
}

// ClassifyConnectError 将底层连接错误归类为 ConnectError。
// 优先使用结构化的 HCIStatus，其次是上下文超时，最后退化为消息匹配。
func ClassifyConnectError(addr Address, err error) *ConnectError {
	if err == nil {
		return nil
	}

	var ce *ConnectError
	if errors.As(err, &ce) {
		return ce
	}

	result := &ConnectError{Kind: ConnectOther, Address: addr, Cause: err}

	var status HCIStatus
	if errors.As(err, &status) {
		if status.refused() {
			result.Kind = ConnectRefused
		}
		return result
	}

	if errors.Is(err, context.DeadlineExceeded) {
		result.Kind = ConnectTimeout
		return result
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range refusalHints {
		if strings.Contains(msg, hint) {
			result.Kind = ConnectRefused
			return result
		}
	}
	for _, hint := range adapterFaultHints {
		if strings.Contains(msg, hint) {
			result.Kind = ConnectAdapterFault
			return result
		}
	}
	return result
}

// AccessError 单个特征的读写被拒绝
type AccessError struct {
	Op      Operation
	UUID    string
	ATTCode byte // 0 表示对端未给出 ATT 错误码
	Cause   error
}

func (e *AccessError) Error() string {
	if e.ATTCode != 0 {
		return fmt.Sprintf("%s %s denied: %s (0x%02X)", e.Op, e.UUID, ATTErrorName(e.ATTCode), e.ATTCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s %s denied: %v", e.Op, e.UUID, e.Cause)
	}
	return fmt.Sprintf("%s %s denied", e.Op, e.UUID)
}

func (e *AccessError) Unwrap() error {
	return e.Cause
}

// Is 匹配 ErrAccessDenied
func (e *AccessError) Is(target error) bool {
	t, ok := target.(*BluetoothError)
	return ok && t.Code == ErrCodeAccessDenied
}

// IsLinkLost 判断错误是否表示连接已断开（不可恢复）
func IsLinkLost(err error) bool {
	return errors.Is(err, ErrDisconnected)
}

// InputError 交互输入无效
type InputError struct {
	Input  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Input, e.Reason)
}

func (e *InputError) Is(target error) bool {
	t, ok := target.(*BluetoothError)
	return ok && t.Code == ErrCodeInvalidInput
}
