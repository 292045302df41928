package terminal

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"github.com/vovakirdan/mockchat/internal/core"
	"github.com/vovakirdan/mockchat/internal/session"
)

const clockLayout = "3:04 PM"

// Renderer writes chat output for a terminal. Plain renderers emit no ANSI codes.
type Renderer struct {
	out   io.Writer
	plain bool
	loc   *time.Location
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer, plain bool) *Renderer {
	return &Renderer{out: out, plain: plain, loc: time.Local}
}

func (r *Renderer) paint(style color.Style, s string) string {
	if r.plain {
		return s
	}
	return style.Render(s)
}

// Header prints the active room banner.
func (r *Renderer) Header(room string) {
	fmt.Fprintln(r.out, r.paint(color.New(color.FgCyan, color.OpBold), "#"+room))
}

// History prints the banner and the visible messages of st.
func (r *Renderer) History(st session.State) {
	r.Header(st.CurrentRoom)
	if len(st.Messages) == 0 {
		fmt.Fprintf(r.out, "No messages in %s yet. Start the conversation!\n", st.CurrentRoom)
		return
	}
	for _, m := range st.Messages {
		r.Message(st, m)
	}
}

// Message prints one message. Messages by the local username are marked as own.
func (r *Renderer) Message(st session.State, m core.Message) {
	stamp := r.paint(color.New(color.FgGray), m.Time().In(r.loc).Format(clockLayout))

	var author string
	switch {
	case st.CurrentUser != nil && st.CurrentUser.Username == m.Username:
		author = r.paint(color.New(color.FgGreen, color.OpBold), m.Username+" (you)")
	case m.Username == "System":
		author = r.paint(color.New(color.FgYellow), m.Username)
	default:
		author = r.paint(color.New(color.FgBlue, color.OpBold), m.Username)
	}
	fmt.Fprintf(r.out, "[%s] %s: %s\n", stamp, author, m.Text)
}

// Notification prints a toast. Destructive ones are highlighted in red.
func (r *Renderer) Notification(n session.Notification) {
	style := color.New(color.FgGreen)
	if n.Variant == session.VariantDestructive {
		style = color.New(color.FgRed, color.OpBold)
	}
	fmt.Fprintf(r.out, "%s %s\n", r.paint(style, "["+n.Title+"]"), n.Description)
}

// Error prints err as a destructive line.
func (r *Renderer) Error(err error) {
	fmt.Fprintln(r.out, r.paint(color.New(color.FgRed), "error: "+err.Error()))
}

// Info prints a plain line.
func (r *Renderer) Info(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Users prints the roster with the local user marked.
func (r *Renderer) Users(st session.State) {
	fmt.Fprintf(r.out, "Online Users (%d)\n", len(st.Users))

	table := r.table([]string{"ID", "Username"})
	for _, u := range st.Users {
		name := u.Username
		if st.IsCurrentUser(u) {
			name += " (you)"
		}
		table.Append([]string{u.ID, name})
	}
	table.Render()
}

// Rooms prints the room set with message counts, marking current.
func (r *Renderer) Rooms(rooms []string, counts map[string]int, current string) {
	table := r.table([]string{"Room", "Messages", "Current"})
	for _, room := range rooms {
		marker := ""
		if room == current {
			marker = "*"
		}
		table.Append([]string{room, strconv.Itoa(counts[room]), marker})
	}
	table.Render()
}

func (r *Renderer) table(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(r.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

// Help prints the command reference.
func (r *Renderer) Help() {
	fmt.Fprintln(r.out, "Commands:")
	for _, line := range helpLines {
		fmt.Fprintln(r.out, "  "+line)
	}
}

var helpLines = []string{
	"/connect <name>   connect under a username",
	"/disconnect       leave the chat",
	"/join <room>      switch room",
	"/rooms            list rooms",
	"/users            list online users",
	"/history          reprint the current room",
	"/help             show this help",
	"/quit             exit",
	"anything else is sent as a message",
}
