// Terminal consumer of the taskdeck API: loads the owner's tasks and projects
// into the sync cache, prints the dashboard numbers and keeps reminders armed
// until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskdeck/internal/client"
	"taskdeck/internal/config"
	"taskdeck/internal/logger"
	"taskdeck/internal/middleware"
	"taskdeck/internal/reminder"
	"taskdeck/internal/syncstore"

	"go.uber.org/zap"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "API base URL")
	owner := flag.String("owner", "", "owner identity to sign a token for")
	token := flag.String("token", "", "bearer token (overrides -owner)")
	withReminders := flag.Bool("reminders", true, "arm due-date reminders")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := logger.Init(cfg.Logging.Development); err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	bearer := *token
	if bearer == "" {
		if *owner == "" {
			log.Fatal("either -token or -owner is required")
		}
		bearer, err = middleware.IssueToken(cfg.Auth.JWTSecret, *owner)
		if err != nil {
			log.Fatalf("signing token: %v", err)
		}
	}

	api := client.New(*serverURL, bearer)

	var scheduler *reminder.Scheduler
	var sink syncstore.ReminderSink
	if *withReminders {
		scheduler = reminder.New(
			&reminder.ConsoleNotifier{Out: os.Stdout},
			reminder.NewClock(),
			cfg.Reminders.SettingsPath,
		)
		if !scheduler.Enable() {
			fmt.Println("reminders unavailable on this host")
		}
		sink = scheduler
	}

	store := syncstore.New(api, sink)
	unsubscribe := store.Subscribe(func(e syncstore.Event) {
		logger.Info("cache changed",
			zap.String("entity", string(e.Entity)),
			zap.String("kind", string(e.Kind)),
			zap.String("id", e.ID.String()))
	})
	defer unsubscribe()

	ctx := context.Background()
	if err := store.LoadTasks(ctx); err != nil {
		log.Fatalf("loading tasks: %v", err)
	}
	if err := store.LoadProjects(ctx); err != nil {
		log.Fatalf("loading projects: %v", err)
	}

	if scheduler != nil && scheduler.Enabled() {
		for _, t := range store.Tasks() {
			if t.DueDate != nil {
				scheduler.Schedule(*t)
			}
		}
	}

	printDashboard(store)

	if scheduler != nil && scheduler.TotalArmed() > 0 {
		fmt.Printf("\n%d reminder timer(s) armed, waiting (Ctrl-C to exit)...\n", scheduler.TotalArmed())
		waitCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-waitCtx.Done()
	}
}

func printDashboard(store *syncstore.Store) {
	stats := store.Stats()
	now := time.Now()

	fmt.Printf("\nTasks: %d total | %d todo | %d in progress | %d completed (%.1f%%)\n",
		stats.Total, stats.Todo, stats.InProgress, stats.Completed, stats.CompletionRate)
	fmt.Printf("Priority: %d high | %d medium | %d low\n",
		stats.ByPriority.High, stats.ByPriority.Medium, stats.ByPriority.Low)

	fmt.Println("\nDue today:")
	for _, t := range store.TodayTasks(now) {
		fmt.Printf("  [%s] %s (due %s)\n", t.Status, t.Title, t.DueDate.Local().Format("15:04"))
	}

	fmt.Println("Upcoming:")
	for _, t := range store.UpcomingTasks(now) {
		fmt.Printf("  [%s] %s (due %s)\n", t.Status, t.Title, t.DueDate.Local().Format("2006-01-02"))
	}

	fmt.Println("\nProjects:")
	for _, p := range store.Projects() {
		fmt.Printf("  %s (%d tasks)\n", p.Name, len(p.Tasks))
	}
}
