package security

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Anniext/bolice/internal/console"
	"github.com/Anniext/bolice/pkg/bluetooth"
)

const target bluetooth.Address = "AA:BB:CC:DD:EE:FF"

var (
	handle = bluetooth.NewAdapterHandle(0)

	gapService = bluetooth.ServiceNode{UUID: "1800", Handle: 1, EndHandle: 7}
	ctlService = bluetooth.ServiceNode{UUID: "fff0", Handle: 8, EndHandle: 20}

	deviceName = bluetooth.CharacteristicNode{UUID: "2a00", Handle: 2, ValueHandle: 3, Properties: bluetooth.PropRead}
	secret     = bluetooth.CharacteristicNode{UUID: "fff1", Handle: 9, ValueHandle: 10, Properties: bluetooth.PropRead | bluetooth.PropWrite}
	command    = bluetooth.CharacteristicNode{UUID: "fff2", Handle: 11, ValueHandle: 12, Properties: bluetooth.PropWriteNoResponse}
	notifyOnly = bluetooth.CharacteristicNode{UUID: "fff3", Handle: 13, ValueHandle: 14, Properties: bluetooth.PropNotify}
)

func denied(op bluetooth.Operation, ch bluetooth.CharacteristicNode) error {
	return &bluetooth.AccessError{Op: op, UUID: ch.UUID, ATTCode: bluetooth.ATTErrInsufficientAuthen}
}

type auditFixture struct {
	host    *bluetooth.MockHost
	conn    *bluetooth.MockConnection
	auditor *Auditor
	out     *bytes.Buffer
}

func newFixture(t *testing.T, probeWrites bool) *auditFixture {
	ctrl := gomock.NewController(t)
	host := bluetooth.NewMockHost(ctrl)
	out := &bytes.Buffer{}
	cfg := bluetooth.AuditConfig{ConnectTimeout: time.Second, ProbeWrites: probeWrites}
	return &auditFixture{
		host:    host,
		conn:    bluetooth.NewMockConnection(ctrl),
		auditor: NewAuditor(host, cfg, console.New(strings.NewReader(""), out), nil),
		out:     out,
	}
}

func TestAudit_NoTarget(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.auditor.Audit(context.Background(), "", handle)
	assert.ErrorIs(t, err, bluetooth.ErrNoTarget)
	assert.Empty(t, f.out.String())
}

func TestAudit_ConnectionDenied(t *testing.T) {
	f := newFixture(t, true)
	f.host.EXPECT().Connect(gomock.Any(), handle, target).
		Return(nil, bluetooth.ClassifyConnectError(target, bluetooth.HCIRejectedSecurity))

	report, err := f.auditor.Audit(context.Background(), target, handle)

	require.NoError(t, err)
	assert.Equal(t, ConnectionDenied, report.Status)
	assert.Empty(t, report.Services)
	assert.Contains(t, f.out.String(), "[FAIL] Failed to connect. (Good: Device requires bonding/pairing.)")
	assert.NotContains(t, f.out.String(), "[Service]")
}

func TestAudit_ConnectionTimeout(t *testing.T) {
	f := newFixture(t, true)
	f.host.EXPECT().Connect(gomock.Any(), handle, target).
		Return(nil, &bluetooth.ConnectError{Kind: bluetooth.ConnectTimeout, Address: target, Cause: context.DeadlineExceeded})

	report, err := f.auditor.Audit(context.Background(), target, handle)

	require.Error(t, err)
	assert.ErrorIs(t, err, bluetooth.ErrConnectionFailed)
	assert.False(t, bluetooth.IsConnectionDenied(err))
	assert.Equal(t, ConnectionFailed, report.Status)
	assert.Contains(t, f.out.String(), "[ERROR] Connection failed (timeout)")
}

func TestAudit_FullEnumeration(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	f.host.EXPECT().Connect(gomock.Any(), handle, target).Return(f.conn, nil)
	f.conn.EXPECT().Services(gomock.Any()).Return([]bluetooth.ServiceNode{gapService, ctlService}, nil)
	f.conn.EXPECT().Characteristics(gomock.Any(), gapService).Return([]bluetooth.CharacteristicNode{deviceName}, nil)
	f.conn.EXPECT().Characteristics(gomock.Any(), ctlService).Return([]bluetooth.CharacteristicNode{secret, command, notifyOnly}, nil)

	f.conn.EXPECT().Read(gomock.Any(), deviceName).Return([]byte("Lock"), nil)
	f.conn.EXPECT().Read(gomock.Any(), secret).Return(nil, denied(bluetooth.OperationRead, secret))
	f.conn.EXPECT().Write(gomock.Any(), secret, bluetooth.WriteProbeValue, true).Return(denied(bluetooth.OperationWrite, secret))
	f.conn.EXPECT().Write(gomock.Any(), command, bluetooth.WriteProbeValue, false).Return(nil)
	f.conn.EXPECT().Disconnect().Return(nil).Times(1)

	report, err := f.auditor.Audit(ctx, target, handle)

	require.NoError(t, err)
	assert.Equal(t, ConnectionEstablished, report.Status)
	require.Len(t, report.Services, 2)
	assert.Equal(t, 4, report.CharacteristicCount())
	assert.Equal(t, 1, report.ReadableWithoutAuth())
	assert.Equal(t, 1, report.CriticalFindings())

	text := f.out.String()
	assert.Equal(t, 1, strings.Count(text, "[CRITICAL]"))
	assert.Contains(t, text, "[PASS] Successfully connected to device.")
	assert.Contains(t, text, "  [Service] UUID: 1800")
	assert.Contains(t, text, "    [Char] UUID: 2a00, Props: READ -> [INFO] READ SUCCESS: 4c6f636b")
	assert.Contains(t, text, "    [Char] UUID: fff1, Props: READ WRITE -> [PASS] READ FAIL (Auth needed?)")
	assert.Contains(t, text, "    [Char] UUID: fff1, Props: READ WRITE -> [PASS] WRITE FAIL (Good: Requires authentication.)")
	assert.Contains(t, text, "    [Char] UUID: fff2, Props: WRITE NO RESPONSE -> [CRITICAL] WRITE SUCCESS (CRITICAL VULNERABILITY!)")
	assert.NotContains(t, text, "fff3")
	assert.Contains(t, text, "[INFO] Disconnected successfully.")
	assert.Contains(t, text, "Summary for AA:BB:CC:DD:EE:FF: 2 services, 4 characteristics, 1 readable without auth, 1 critical findings.")
}

func TestAudit_ReadOnlyCharacteristicNeverWritten(t *testing.T) {
	f := newFixture(t, true)

	f.host.EXPECT().Connect(gomock.Any(), handle, target).Return(f.conn, nil)
	f.conn.EXPECT().Services(gomock.Any()).Return([]bluetooth.ServiceNode{gapService}, nil)
	f.conn.EXPECT().Characteristics(gomock.Any(), gapService).Return([]bluetooth.CharacteristicNode{deviceName}, nil)
	f.conn.EXPECT().Read(gomock.Any(), deviceName).Return([]byte{0x00}, nil)
	f.conn.EXPECT().Write(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	f.conn.EXPECT().Disconnect().Return(nil)

	_, err := f.auditor.Audit(context.Background(), target, handle)
	require.NoError(t, err)
}

func TestAudit_ReadOnlyMode(t *testing.T) {
	f := newFixture(t, false)

	f.host.EXPECT().Connect(gomock.Any(), handle, target).Return(f.conn, nil)
	f.conn.EXPECT().Services(gomock.Any()).Return([]bluetooth.ServiceNode{ctlService}, nil)
	f.conn.EXPECT().Characteristics(gomock.Any(), ctlService).Return([]bluetooth.CharacteristicNode{secret, command}, nil)
	f.conn.EXPECT().Read(gomock.Any(), secret).Return([]byte{0x2a}, nil)
	f.conn.EXPECT().Write(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	f.conn.EXPECT().Disconnect().Return(nil)

	report, err := f.auditor.Audit(context.Background(), target, handle)

	require.NoError(t, err)
	assert.Equal(t, 0, report.CriticalFindings())
	assert.Equal(t, 2, strings.Count(f.out.String(), "WRITE SKIPPED (read-only mode)"))
}

func TestAudit_EnumerationFailureStillDisconnects(t *testing.T) {
	f := newFixture(t, true)

	f.host.EXPECT().Connect(gomock.Any(), handle, target).Return(f.conn, nil)
	f.conn.EXPECT().Services(gomock.Any()).Return(nil, errors.New("att: request timed out"))
	f.conn.EXPECT().Disconnect().Return(nil).Times(1)

	report, err := f.auditor.Audit(context.Background(), target, handle)

	require.Error(t, err)
	assert.ErrorIs(t, err, bluetooth.ErrEnumeration)
	assert.Equal(t, ConnectionEstablished, report.Status)
	assert.Same(t, err, report.Err)
	assert.Contains(t, f.out.String(), "[ERROR] Connection/Enumeration Test failed")
	assert.Contains(t, f.out.String(), "[INFO] Disconnected successfully.")
}

func TestAudit_LinkLostAbortsEnumeration(t *testing.T) {
	f := newFixture(t, true)
	lost := bluetooth.WrapError(errors.New("eof"), bluetooth.ErrCodeDisconnected, "link lost", target.String(), bluetooth.OperationRead.String())

	f.host.EXPECT().Connect(gomock.Any(), handle, target).Return(f.conn, nil)
	f.conn.EXPECT().Services(gomock.Any()).Return([]bluetooth.ServiceNode{gapService, ctlService}, nil)
	f.conn.EXPECT().Characteristics(gomock.Any(), gapService).Return([]bluetooth.CharacteristicNode{deviceName}, nil)
	f.conn.EXPECT().Read(gomock.Any(), deviceName).Return(nil, lost)
	f.conn.EXPECT().Disconnect().Return(nil).Times(1)

	report, err := f.auditor.Audit(context.Background(), target, handle)

	require.Error(t, err)
	assert.True(t, bluetooth.IsLinkLost(err))
	assert.Len(t, report.Services, 1)
	assert.NotContains(t, f.out.String(), "fff0")
}

func TestAudit_DisconnectFailureIsWarning(t *testing.T) {
	f := newFixture(t, true)

	f.host.EXPECT().Connect(gomock.Any(), handle, target).Return(f.conn, nil)
	f.conn.EXPECT().Services(gomock.Any()).Return(nil, nil)
	f.conn.EXPECT().Disconnect().Return(errors.New("already closed"))

	report, err := f.auditor.Audit(context.Background(), target, handle)

	require.NoError(t, err)
	assert.Equal(t, 0, report.CharacteristicCount())
	assert.Contains(t, f.out.String(), "[WARNING] Disconnect failed: already closed")
}
