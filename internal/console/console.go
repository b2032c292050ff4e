// Package console 提供交互式命令行界面：逐行提示输入，带标签的彩色输出。
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tag 输出行标签
type Tag int

const (
	TagInfo Tag = iota
	TagSystem
	TagPass
	TagFail
	TagWarning
	TagError
	TagCritical
	TagSelected
	TagSuccess
)

// String 返回标签文本
func (t Tag) String() string {
	switch t {
	case TagSystem:
		return "[SYSTEM]"
	case TagPass:
		return "[PASS]"
	case TagFail:
		return "[FAIL]"
	case TagWarning:
		return "[WARNING]"
	case TagError:
		return "[ERROR]"
	case TagCritical:
		return "[CRITICAL]"
	case TagSelected:
		return "[SELECTED]"
	case TagSuccess:
		return "[SUCCESS]"
	default:
		return "[INFO]"
	}
}

// Console 交互式终端
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	styles map[Tag]lipgloss.Style
	title  lipgloss.Style
}

// New 创建终端，颜色能力根据 out 自动检测
func New(in io.Reader, out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
		styles: map[Tag]lipgloss.Style{
			TagInfo:     r.NewStyle().Foreground(lipgloss.Color("12")),
			TagSystem:   r.NewStyle().Foreground(lipgloss.Color("13")),
			TagPass:     r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
			TagFail:     r.NewStyle().Foreground(lipgloss.Color("10")),
			TagWarning:  r.NewStyle().Foreground(lipgloss.Color("11")),
			TagError:    r.NewStyle().Foreground(lipgloss.Color("9")),
			TagCritical: r.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9")).Bold(true),
			TagSelected: r.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
			TagSuccess:  r.NewStyle().Foreground(lipgloss.Color("10")),
		},
		title: r.NewStyle().Bold(true),
	}
}

// Printf 原样输出
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Println 原样输出一行
func (c *Console) Println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

// Line 输出一行带标签的消息，prefix 为缩进或上下文前缀
func (c *Console) Line(prefix string, tag Tag, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(c.out, "%s%s %s\n", prefix, c.styles[tag].Render(tag.String()), msg)
}

// Tagged 输出带标签的消息，使用默认缩进
func (c *Console) Tagged(tag Tag, format string, args ...any) {
	c.Line(" ", tag, format, args...)
}

// Section 输出分节标题
func (c *Console) Section(title string) {
	fmt.Fprintf(c.out, "\n%s\n", c.title.Render("--- "+title+" ---"))
}

// Banner 输出横幅
func (c *Console) Banner(lines ...string) {
	rule := strings.Repeat("=", 46)
	fmt.Fprintf(c.out, "\n%s\n", rule)
	for _, l := range lines {
		fmt.Fprintf(c.out, "  %s\n", c.title.Render(l))
	}
	fmt.Fprintln(c.out, rule)
}

// Prompt 输出提示并读取一行输入（已去除首尾空白）。
// 输入结束时返回 io.EOF；最后一行没有换行符时仍返回该行。
func (c *Console) Prompt(msg string) (string, error) {
	fmt.Fprint(c.out, msg)
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
