package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"qms/queue-client/internal/models"
	"qms/queue-client/internal/notify"
	"qms/queue-client/internal/router"
	"qms/queue-client/internal/session"
	"qms/queue-client/internal/ticketwatch"
	"qms/queue-client/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type execFunc func(ctx context.Context, c *client, args []string) error

type command struct {
	name    string
	summary string
	setup   func(flags *pflag.FlagSet) execFunc
}

var commands = []command{
	{name: "ui", summary: "interactive terminal UI (default)", setup: uiCommand},
	{name: "login", summary: "sign in and store the credential", setup: loginCommand},
	{name: "logout", summary: "discard the stored credential", setup: logoutCommand},
	{name: "whoami", summary: "show the current session", setup: whoamiCommand},
	{name: "join", summary: "take a ticket at a counter", setup: joinCommand},
	{name: "watch", summary: "follow a ticket until interrupted", setup: watchCommand},
	{name: "export", summary: "download the queue report as xlsx", setup: exportCommand},
}

func lookupCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s [command] [flags]\n\nCommands:\n", serviceName)
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", cmd.name, cmd.summary)
	}
}

func uiCommand(flags *pflag.FlagSet) execFunc {
	start := flags.String("start", router.PathHome, "path to open first, e.g. /queue-status/12")
	return func(ctx context.Context, c *client, _ []string) error {
		bridge := ui.NewPermissionBridge()
		app := ui.NewApp(ctx, ui.Deps{
			Backend:      c.api,
			Session:      c.session,
			Watcher:      c.watcher(bridge),
			Permissions:  bridge,
			PublicURL:    c.cfg.PublicURL,
			ReportDir:    c.cfg.ReportDir,
			PollInterval: c.cfg.PollInterval,
			Logger:       c.logger.Named("ui"),
		}, *start)
		program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
}

func loginCommand(flags *pflag.FlagSet) execFunc {
	username := flags.StringP("username", "u", "", "account username")
	password := flags.StringP("password", "p", os.Getenv("QMS_PASSWORD"), "account password (or QMS_PASSWORD)")
	return func(ctx context.Context, c *client, _ []string) error {
		if *username == "" || *password == "" {
			return errors.New("username and password are required")
		}
		result, err := c.api.Login(ctx, models.LoginInput{Username: *username, Password: *password})
		if err != nil {
			return err
		}
		token := result.Credential()
		if err := session.CheckCredential(token, time.Now()); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		current, ok := c.session.SetFromCredential(ctx, token)
		if !ok {
			return errors.New("login: unable to store credential")
		}
		role := current.Role
		if result.Role != "" {
			role = session.ParseRole(result.Role)
		}
		fmt.Printf("Logged in as %s (%s). Home: %s\n", current.Username, role, router.LoginTarget(role, ""))
		return nil
	}
}

func logoutCommand(*pflag.FlagSet) execFunc {
	return func(ctx context.Context, c *client, _ []string) error {
		c.session.Clear(ctx)
		fmt.Println("Logged out.")
		return nil
	}
}

func whoamiCommand(*pflag.FlagSet) execFunc {
	return func(_ context.Context, c *client, _ []string) error {
		current, ok := c.session.Current()
		if !ok {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("%s (%s)\n", current.Username, current.Role)
		return nil
	}
}

func joinCommand(flags *pflag.FlagSet) execFunc {
	counterID := flags.Int64("counter", 0, "counter id")
	name := flags.String("name", "", "name shown on the ticket")
	return func(ctx context.Context, c *client, _ []string) error {
		if *counterID == 0 || strings.TrimSpace(*name) == "" {
			counters, err := c.api.PublicCounters(ctx)
			if err != nil {
				return err
			}
			fmt.Println("Available counters:")
			for _, counter := range counters {
				fmt.Printf("  %-4d %s\n", counter.ID, counter.Name)
			}
			return errors.New("--counter and --name are required")
		}
		entry, err := c.api.JoinQueue(ctx, models.JoinQueueInput{UserName: strings.TrimSpace(*name), CounterID: *counterID})
		if err != nil {
			return err
		}
		link := ui.StatusURL(c.cfg.PublicURL, entry.ID)
		fmt.Printf("Ticket ID: %d\nStatus:    %s\n", entry.ID, link)
		if code, err := qrcode.New(link, qrcode.Medium); err == nil {
			fmt.Print(code.ToSmallString(false))
		}
		return nil
	}
}

// ticketID accepts whatever ParseTicketRef does and returns the bare id.
func ticketID(ref string) (string, bool) {
	target, ok := router.ParseTicketRef(ref)
	if !ok {
		return "", false
	}
	id, err := url.PathUnescape(strings.TrimPrefix(target, "/queue-status/"))
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

func watchCommand(*pflag.FlagSet) execFunc {
	return func(ctx context.Context, c *client, args []string) error {
		if len(args) != 1 {
			return errors.New("usage: watch <ticket id or status URL>")
		}
		id, ok := ticketID(args[0])
		if !ok {
			return fmt.Errorf("unrecognised ticket reference %q", args[0])
		}
		w := c.watcher(&notify.TerminalPrompter{In: os.Stdin, Out: os.Stdout})
		var last string
		w.Run(ctx, id, func(s ticketwatch.State) {
			line := describeState(id, s)
			if line == last {
				return
			}
			last = line
			fmt.Println(line)
		})
		c.logger.Info("watch ended", zap.String("ticket_id", id))
		return nil
	}
}

func describeState(id string, s ticketwatch.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ticket %s", time.Now().Format("15:04:05"), id)
	if s.Ticket != nil {
		fmt.Fprintf(&b, " %s at %s, position %s", ticketwatch.StatusLabel(s.Ticket), s.Ticket.CounterName(), s.Ticket.PositionLabel())
	}
	if s.Err != "" {
		fmt.Fprintf(&b, " (%s)", s.Err)
	}
	if s.Notify {
		b.WriteString(" - " + ticketwatch.NotificationBody)
	}
	return b.String()
}

func exportCommand(flags *pflag.FlagSet) execFunc {
	from := flags.String("from", "", "start date, YYYY-MM-DD")
	to := flags.String("to", "", "end date, YYYY-MM-DD")
	out := flags.StringP("out", "o", "", "output file (default <report dir>/"+ui.ReportFileName+")")
	return func(ctx context.Context, c *client, _ []string) error {
		for _, d := range []string{*from, *to} {
			if d == "" {
				continue
			}
			if _, err := time.Parse("2006-01-02", d); err != nil {
				return fmt.Errorf("invalid date %q: want YYYY-MM-DD", d)
			}
		}
		path := *out
		if path == "" {
			path = filepath.Join(c.cfg.ReportDir, ui.ReportFileName)
		}
		data, err := c.api.DownloadReport(ctx, models.ReportFilter{StartDate: *from, EndDate: *to})
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("Report saved to %s (%d bytes)\n", path, len(data))
		return nil
	}
}
