// Package security 实现对已选目标的 GATT 暴露面审计。
package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Anniext/bolice/internal/console"
	"github.com/Anniext/bolice/pkg/bluetooth"
)

// Auditor 连接目标、枚举服务特征，并按属性对每个特征做读/写探测
type Auditor struct {
	host    bluetooth.Host
	cfg     bluetooth.AuditConfig
	console *console.Console
	logger  *slog.Logger
}

// NewAuditor 创建安全审计组件
func NewAuditor(host bluetooth.Host, cfg bluetooth.AuditConfig, con *console.Console, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		host:    host,
		cfg:     cfg,
		console: con,
		logger:  logger.With("component", "auditor"),
	}
}

// Audit 对目标执行连接与枚举测试。
// 对端拒绝连接被视为良好的安全表现，不返回错误；其他连接失败和枚举失败会返回错误。
func (a *Auditor) Audit(ctx context.Context, target bluetooth.Address, handle bluetooth.AdapterHandle) (*AuditReport, error) {
	if target.IsZero() {
		return nil, bluetooth.ErrNoTarget
	}

	a.console.Section("2. Connection and Enumeration Test")
	report := &AuditReport{Target: target}

	conn, err := a.host.Connect(ctx, handle, target)
	if err != nil {
		ce := bluetooth.ClassifyConnectError(target, err)
		if bluetooth.IsConnectionDenied(ce) {
			report.Status = ConnectionDenied
			a.logger.Info("目标拒绝连接", "target", target, "error", ce.Cause)
			a.console.Tagged(console.TagFail, "Failed to connect. (Good: Device requires bonding/pairing.)")
			return report, nil
		}
		report.Status = ConnectionFailed
		a.logger.Error("连接失败", "target", target, "kind", ce.Kind.String(), "error", ce.Cause)
		a.console.Tagged(console.TagError, "Connection failed (%s): %v", ce.Kind, ce.Cause)
		return report, ce
	}

	report.Status = ConnectionEstablished
	a.console.Tagged(console.TagPass, "Successfully connected to device.")

	if err := a.inspect(ctx, conn, report); err != nil {
		report.Err = err
		a.logger.Error("枚举中止", "target", target, "error", err)
		a.printSummary(report)
		return report, err
	}

	a.printSummary(report)
	return report, nil
}

// inspect 在连接的生命周期内完成枚举和探测，任何返回路径都会断开连接
func (a *Auditor) inspect(ctx context.Context, conn bluetooth.Connection, report *AuditReport) (err error) {
	defer a.disconnect(conn)
	defer func() {
		if err != nil {
			a.console.Tagged(console.TagError, "Connection/Enumeration Test failed: %v", err)
		}
	}()

	services, err := conn.Services(ctx)
	if err != nil {
		return wrapEnumeration(err, report.Target, "service discovery")
	}
	a.console.Tagged(console.TagInfo, "Enumerated %d services:", len(services))

	for _, svc := range services {
		a.console.Printf("\n  [Service] UUID: %s\n", svc.UUID)

		chars, err := conn.Characteristics(ctx, svc)
		if err != nil {
			return wrapEnumeration(err, report.Target, "characteristic discovery")
		}

		sr := ServiceReport{UUID: svc.UUID}
		for _, ch := range chars {
			cr, err := a.probe(ctx, conn, ch)
			sr.Characteristics = append(sr.Characteristics, cr)
			if err != nil {
				report.Services = append(report.Services, sr)
				return err
			}
		}
		report.Services = append(report.Services, sr)
	}
	return nil
}

// probe 按特征属性执行相互独立的读、写探测。
// 访问被拒绝是预期结果；只有链路断开等不可恢复错误才会返回。
func (a *Auditor) probe(ctx context.Context, conn bluetooth.Connection, ch bluetooth.CharacteristicNode) (CharacteristicReport, error) {
	cr := CharacteristicReport{Characteristic: ch}
	info := fmt.Sprintf("    [Char] UUID: %s, Props: %s", ch.UUID, ch.Properties)

	if ch.Properties.Readable() {
		value, err := conn.Read(ctx, ch)
		switch {
		case err == nil:
			cr.Read = bluetooth.ProbeOutcome{Kind: bluetooth.ProbeReadSuccess, Value: value}
			a.console.Line(info+" -> ", console.TagInfo, "READ SUCCESS: %s", cr.Read.HexValue())
		case fatal(ctx, err):
			return cr, err
		default:
			cr.Read = bluetooth.ProbeOutcome{Kind: bluetooth.ProbeReadDenied, Err: err}
			a.logger.Debug("读取被拒绝", "uuid", ch.UUID, "access_denied", errors.Is(err, bluetooth.ErrAccessDenied), "error", err)
			a.console.Line(info+" -> ", console.TagPass, "READ FAIL (Auth needed?)")
		}
	}

	if ch.Properties.Writable() {
		if !a.cfg.ProbeWrites {
			a.console.Line(info+" -> ", console.TagInfo, "WRITE SKIPPED (read-only mode)")
			return cr, nil
		}

		withResponse := ch.Properties.Has(bluetooth.PropWrite)
		err := conn.Write(ctx, ch, bluetooth.WriteProbeValue, withResponse)
		switch {
		case err == nil:
			cr.Write = bluetooth.ProbeOutcome{Kind: bluetooth.ProbeWriteSuccess}
			a.logger.Warn("未认证写入被接受", "uuid", ch.UUID, "with_response", withResponse)
			a.console.Line(info+" -> ", console.TagCritical, "WRITE SUCCESS (CRITICAL VULNERABILITY!)")
		case fatal(ctx, err):
			return cr, err
		default:
			cr.Write = bluetooth.ProbeOutcome{Kind: bluetooth.ProbeWriteDenied, Err: err}
			a.logger.Debug("写入被拒绝", "uuid", ch.UUID, "access_denied", errors.Is(err, bluetooth.ErrAccessDenied), "error", err)
			a.console.Line(info+" -> ", console.TagPass, "WRITE FAIL (Good: Requires authentication.)")
		}
	}

	return cr, nil
}

// disconnect 释放连接
func (a *Auditor) disconnect(conn bluetooth.Connection) {
	if err := conn.Disconnect(); err != nil {
		a.logger.Warn("断开连接失败", "error", err)
		a.console.Tagged(console.TagWarning, "Disconnect failed: %v", err)
		return
	}
	a.console.Println()
	a.console.Tagged(console.TagInfo, "Disconnected successfully.")
}

// printSummary 输出审计汇总
func (a *Auditor) printSummary(report *AuditReport) {
	a.console.Tagged(console.TagInfo, "Summary for %s: %d services, %d characteristics, %d readable without auth, %d critical findings.",
		report.Target, len(report.Services), report.CharacteristicCount(),
		report.ReadableWithoutAuth(), report.CriticalFindings())
}

// fatal 判断探测错误是否不可恢复
func fatal(ctx context.Context, err error) bool {
	return bluetooth.IsLinkLost(err) || ctx.Err() != nil
}

func wrapEnumeration(err error, target bluetooth.Address, what string) error {
	if bluetooth.IsLinkLost(err) || errors.Is(err, bluetooth.ErrEnumeration) {
		return err
	}
	return bluetooth.WrapError(err, bluetooth.ErrCodeEnumeration, what+" failed", target.String(), bluetooth.OperationEnumerate.String())
}
