package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yuizumi/chatspace/internal/client/api"
	"github.com/yuizumi/chatspace/internal/client/identity"
	"github.com/yuizumi/chatspace/internal/client/session"
	clientsync "github.com/yuizumi/chatspace/internal/client/sync"
	"github.com/yuizumi/chatspace/internal/client/ui"
	"github.com/yuizumi/chatspace/internal/common/clock"
	"github.com/yuizumi/chatspace/internal/common/config"
	"github.com/yuizumi/chatspace/internal/common/logger"
)

func main() {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogDir, "client", cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	store, err := identity.NewStore(cfg.IdentityFile)
	if err != nil {
		log.Fatalf("failed to open identity store: %v", err)
	}

	apiClient := api.NewClient(cfg.ServerURL, cfg.RequestTimeout)
	sess := session.NewSession(apiClient, store, clock.NewRealClock(), log)
	stdin := bufio.NewScanner(os.Stdin)

	for {
		switch sess.State() {
		case session.StateLogin:
			runLogin(sess, stdin)
		case session.StateSelection:
			runSelection(sess, stdin)
		case session.StateChat:
			runChat(cfg, sess, apiClient, stdin, log)
		}
	}
}

func runLogin(sess *session.Session, stdin *bufio.Scanner) {
	fmt.Print("choose a display name: ")
	if !stdin.Scan() {
		os.Exit(0)
	}
	name := stdin.Text()

	if err := sess.Register(context.Background(), name); err != nil {
		fmt.Printf("registration failed: %s\n", sess.LastError())
	}
}

func runSelection(sess *session.Session, stdin *bufio.Scanner) {
	saved := sess.Saved()
	fmt.Printf("welcome back, %s (last seen %s)\n", saved.Name, saved.LastSeen)
	fmt.Print("[u]se this identity, create a [n]ew one, or [d]elete it: ")
	if !stdin.Scan() {
		os.Exit(0)
	}

	switch strings.TrimSpace(strings.ToLower(stdin.Text())) {
	case "u", "use":
		_ = sess.UseExisting(context.Background())
		if msg := sess.LastError(); msg != "" {
			fmt.Println(msg)
		}
	case "n", "new":
		sess.CreateNew()
	case "d", "delete":
		sess.DeleteSaved()
	default:
		fmt.Println("unrecognized choice")
	}
}

func runChat(cfg config.ClientConfig, sess *session.Session, apiClient *api.Client, stdin *bufio.Scanner, log *logger.Logger) {
	user := sess.CurrentUser()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	view := ui.NewView(os.Stdout, user.ID)
	var store *clientsync.Store
	store = clientsync.NewStore(func() { view.Render(store.Snapshot()) })

	poller := clientsync.NewPoller(apiClient, store, clientsync.Intervals{
		Messages: cfg.MessagesInterval,
		Users:    cfg.UsersInterval,
	}, log)

	var strategy clientsync.Strategy = poller
	if cfg.SyncStrategy == "push" {
		strategy = clientsync.NewPusher(apiClient, store, subscriptionURL(cfg.ServerURL), log)
	}

	go func() {
		if err := strategy.Run(ctx); err != nil && ctx.Err() == nil {
			log.Errorf("sync stopped: %v", err)
		}
	}()

	liveness := clientsync.NewLiveness(apiClient, user.ID, cfg.LastSeenInterval, log)
	go func() { _ = liveness.Run(ctx) }()

	view.Printf("joined as %s. type a message, or /users, /logout, /quit\n", user.Name)

	for stdin.Scan() {
		line := strings.TrimSpace(stdin.Text())
		switch {
		case line == "":
		case line == "/quit":
			os.Exit(0)
		case line == "/logout":
			sess.Logout()
			return
		case line == "/users":
			view.RenderUsers(store.Snapshot())
		default:
			if _, err := apiClient.CreateMessage(ctx, line, user.ID); err != nil {
				view.Printf("send failed: %v\n", err)
				continue
			}
			// Out-of-band refresh so the sent message shows up right away
			// instead of waiting for the next poll tick.
			if cfg.SyncStrategy != "push" {
				poller.RefreshNow(ctx)
			}
		}
	}

	os.Exit(0)
}

func subscriptionURL(serverURL string) string {
	wsURL := serverURL
	if strings.HasPrefix(wsURL, "https://") {
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	} else if strings.HasPrefix(wsURL, "http://") {
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}
	return strings.TrimSuffix(wsURL, "/") + "/ws"
}
