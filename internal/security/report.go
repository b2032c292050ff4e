package security

import "github.com/Anniext/bolice/pkg/bluetooth"

// ConnectionStatus 审计连接阶段的结论
type ConnectionStatus int

const (
	ConnectionFailed      ConnectionStatus = iota // 工具或环境故障
	ConnectionEstablished                         // 连接成功
	ConnectionDenied                              // 对端拒绝，需要绑定/配对
)

// String 返回连接结论的字符串表示
func (s ConnectionStatus) String() string {
	switch s {
	case ConnectionEstablished:
		return "established"
	case ConnectionDenied:
		return "denied"
	default:
		return "failed"
	}
}

// CharacteristicReport 单个特征的探测结果
type CharacteristicReport struct {
	Characteristic bluetooth.CharacteristicNode
	Read           bluetooth.ProbeOutcome
	Write          bluetooth.ProbeOutcome
}

// ServiceReport 单个服务的探测结果
type ServiceReport struct {
	UUID            string
	Characteristics []CharacteristicReport
}

// AuditReport 一次审计的结果，只用于输出和测试，不落盘
type AuditReport struct {
	Target   bluetooth.Address
	Status   ConnectionStatus
	Services []ServiceReport
	Err      error // 导致枚举中止的错误
}

// CharacteristicCount 已探测的特征数量
func (r *AuditReport) CharacteristicCount() int {
	n := 0
	for _, s := range r.Services {
		n += len(s.Characteristics)
	}
	return n
}

// CriticalFindings 未认证写入成功的数量
func (r *AuditReport) CriticalFindings() int {
	return r.count(func(c CharacteristicReport) bool { return c.Write.Critical() })
}

// ReadableWithoutAuth 未认证读取成功的数量
func (r *AuditReport) ReadableWithoutAuth() int {
	return r.count(func(c CharacteristicReport) bool { return c.Read.Kind == bluetooth.ProbeReadSuccess })
}

func (r *AuditReport) count(match func(CharacteristicReport) bool) int {
	n := 0
	for _, s := range r.Services {
		for _, c := range s.Characteristics {
			if match(c) {
				n++
			}
		}
	}
	return n
}
