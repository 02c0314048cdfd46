package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/samber/lo"

	"github.com/yuizumi/chatspace/internal/client/api"
	clientsync "github.com/yuizumi/chatspace/internal/client/sync"
)

// jumpWindow is how many trailing messages a snap-to-bottom reprints.
const jumpWindow = 20

// View renders the chat room to a terminal. The scroll policy maps onto a
// line UI as: jump reprints the tail of the list, animate prints only the
// newly arrived messages, none prints nothing.
type View struct {
	mu            sync.Mutex
	out           io.Writer
	policy        ScrollPolicy
	currentUserID string
	rendered      int
}

func NewView(out io.Writer, currentUserID string) *View {
	return &View{out: out, currentUserID: currentUserID}
}

func (v *View) Render(snap clientsync.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()

	count := len(snap.Messages)
	switch v.policy.Next(count) {
	case ScrollNone:
	case ScrollJump:
		start := count - jumpWindow
		if start < 0 {
			start = 0
		}
		if start > 0 {
			fmt.Fprintf(v.out, "--- %d earlier messages ---\n", start)
		}
		v.printMessages(snap.Messages[start:])
	case ScrollAnimate:
		if v.rendered <= count {
			v.printMessages(snap.Messages[v.rendered:])
		}
	}
	v.rendered = count
}

func (v *View) printMessages(messages []api.Message) {
	for _, m := range messages {
		name := m.User.Name
		if m.User.ID == v.currentUserID {
			name = name + " (you)"
		}
		fmt.Fprintf(v.out, "[%s] %s: %s\n", m.CreatedAt.Local().Format("15:04:05"), name, m.Content)
	}
}

// RenderUsers prints the user list most recently seen first, as the server
// returns it.
func (v *View) RenderUsers(snap clientsync.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()

	names := lo.Map(snap.Users, func(u api.User, _ int) string {
		if u.ID == v.currentUserID {
			return u.Name + " (you)"
		}
		return u.Name
	})

	fmt.Fprintf(v.out, "users online (%d):\n", len(names))
	for _, name := range names {
		fmt.Fprintf(v.out, "  %s\n", name)
	}
}

func (v *View) Printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}

// Reset clears render state so re-entering the chat behaves like a first
// render again.
func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.policy = ScrollPolicy{}
	v.rendered = 0
}
