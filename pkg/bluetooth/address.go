package bluetooth

import (
	"strings"

	tinybt "tinygo.org/x/bluetooth"
)

// Address 规范化后的 48 位设备地址，形如 AA:BB:CC:DD:EE:FF
type Address string

// addressLen XX:XX:XX:XX:XX:XX 的长度
const addressLen = 17

// ParseAddress 严格解析设备地址并转换为规范形式
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !wellFormed(s) {
		return "", NewBluetoothErrorWithDevice(ErrCodeInvalidParameter,
			"invalid device address: expected XX:XX:XX:XX:XX:XX", s, OperationConnect.String())
	}
	mac, err := tinybt.ParseMAC(strings.ToUpper(s))
	if err != nil {
		return "", WrapError(err, ErrCodeInvalidParameter, "invalid device address", s, OperationConnect.String())
	}
	return Address(strings.ToUpper(mac.String())), nil
}

// wellFormed 检查冒号分隔的六段格式，ParseMAC 本身会忽略冒号位置
func wellFormed(s string) bool {
	if len(s) != addressLen {
		return false
	}
	for i := 0; i < addressLen; i++ {
		if (i%3 == 2) != (s[i] == ':') {
			return false
		}
	}
	return true
}

// CanonicalAddress 将任意大小写的地址转换为规范形式。
// 无法解析时退化为去空白后转大写，保证作为 map 键时大小写无关。
func CanonicalAddress(s string) Address {
	if addr, err := ParseAddress(s); err == nil {
		return addr
	}
	return Address(strings.ToUpper(strings.TrimSpace(s)))
}

// IsZero 地址是否为空
func (a Address) IsZero() bool {
	return a == ""
}

func (a Address) String() string {
	return string(a)
}
