package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/unimeet/scheduler/internal/app"
	"github.com/unimeet/scheduler/internal/config"
	"github.com/unimeet/scheduler/internal/model"
	"github.com/unimeet/scheduler/internal/repository"
	"github.com/unimeet/scheduler/internal/service"
	"github.com/unimeet/scheduler/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	eventRepo := repository.NewEventRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	availRepo := repository.NewAvailabilityRepository(pool)
	prefRepo := repository.NewPreferenceRepository(pool)
	meetingRepo := repository.NewMeetingRepository(pool)

	matchingService := service.NewMatchingService(eventRepo, availRepo, prefRepo, meetingRepo, logger)
	eventService := service.NewEventService(eventRepo, logger)
	submissionService := service.NewSubmissionService(eventRepo, userRepo, availRepo, prefRepo, logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "migrate":
		// Миграции уже применены выше
		version, err := migrator.Version(ctx)
		if err != nil {
			logger.Fatal("Failed to get migration version", zap.Error(err))
		}
		logger.Info("Database is up to date", zap.Int64("version", version))

	case "run":
		eventID := parseID(argAt(2))
		run, result, err := matchingService.RunScheduler(ctx, eventID)
		if err != nil {
			logger.Fatal("Scheduler run failed", zap.Int64("event_id", eventID), zap.Error(err))
		}
		logger.Info("Scheduler run finished",
			zap.Int64("event_id", eventID),
			zap.Int64("run_id", run.RunID),
			zap.Int("meetings", len(result.Meetings)),
			zap.Int("under_served", len(result.UnderServed)),
		)

	case "addevent":
		date, err := time.Parse("2006-01-02", argAt(3))
		if err != nil {
			logger.Fatal("Date must be YYYY-MM-DD", zap.Error(err))
		}
		event := &model.Event{
			Name:       argAt(2),
			Date:       date,
			StartTime:  argAt(4),
			EndTime:    argAt(5),
			SlotLen:    int(parseID(argAt(6))),
			MinFaculty: 3,
			MaxFaculty: 5,
		}
		if len(os.Args) > 7 {
			event.MinFaculty = int(parseID(os.Args[7]))
		}
		if len(os.Args) > 8 {
			event.MaxFaculty = int(parseID(os.Args[8]))
		}
		if err := eventService.CreateEvent(ctx, event); err != nil {
			logger.Fatal("Failed to create event", zap.Error(err))
		}
		logger.Info("Event created", zap.Int64("event_id", event.ID))

	case "status":
		eventID := parseID(argAt(2))
		target := model.EventStatus(argAt(3))
		if err := eventService.UpdateStatus(ctx, eventID, target); err != nil {
			logger.Fatal("Status change failed", zap.Int64("event_id", eventID), zap.Error(err))
		}

	case "meetings":
		eventID := parseID(argAt(2))

		var meetings []*model.Meeting
		if len(os.Args) > 3 {
			meetings, err = meetingRepo.GetMeetingsByRun(ctx, eventID, parseID(os.Args[3]))
		} else {
			meetings, err = meetingRepo.GetCurrentMeetings(ctx, eventID)
		}
		if err != nil {
			logger.Fatal("Failed to load meetings", zap.Int64("event_id", eventID), zap.Error(err))
		}

		run, err := meetingRepo.GetLatestRun(ctx, eventID)
		if err != nil {
			logger.Fatal("Failed to load latest run", zap.Int64("event_id", eventID), zap.Error(err))
		}
		if run != nil {
			fmt.Printf("latest run %d: %d meetings, %d under-served\n",
				run.RunID, run.MeetingCount, run.UnderServedCount)
		}
		for _, m := range meetings {
			fmt.Printf("%s  professor=%d student=%d (run %d)\n", m.Slot, m.ProfessorID, m.StudentID, m.RunID)
		}

	case "avail":
		facultyID := parseID(argAt(2))
		eventID := parseID(argAt(3))

		// Без списка слотов показываем текущую запись
		if len(os.Args) < 5 {
			av, err := availRepo.Get(ctx, facultyID, eventID)
			if err != nil {
				logger.Fatal("Failed to load availability", zap.Error(err))
			}
			if av == nil {
				fmt.Println("no availability submitted")
				break
			}
			fmt.Printf("%s\n", strings.Join(av.AvailableSlots, ","))
			break
		}

		slots := splitCSV(argAt(4))
		if err := submissionService.SubmitAvailability(ctx, facultyID, eventID, slots, ""); err != nil {
			logger.Fatal("Availability submission failed", zap.Error(err))
		}

	case "prefer":
		studentID := parseID(argAt(2))
		eventID := parseID(argAt(3))

		if len(os.Args) < 5 {
			pref, err := prefRepo.Get(ctx, studentID, eventID)
			if err != nil {
				logger.Fatal("Failed to load preference", zap.Error(err))
			}
			if pref == nil {
				fmt.Println("no preference submitted")
				break
			}
			fmt.Printf("professors: %v\nslots: %s\n", pref.ProfessorIDs, strings.Join(pref.AvailableSlots, ","))
			break
		}

		var profIDs []int64
		for _, raw := range splitCSV(argAt(4)) {
			profIDs = append(profIDs, parseID(raw))
		}
		var slots []string
		if len(os.Args) > 5 {
			slots = splitCSV(os.Args[5])
		}
		if err := submissionService.SubmitPreference(ctx, studentID, eventID, profIDs, slots, ""); err != nil {
			logger.Fatal("Preference submission failed", zap.Error(err))
		}

	case "adduser":
		user := &model.User{
			Role:   model.UserRole(argAt(2)),
			Name:   argAt(3),
			Email:  argAt(4),
			Status: model.UserStatusActive,
		}
		if len(os.Args) > 5 {
			user.Department = os.Args[5]
		}
		if user.Role != model.UserRoleFaculty && user.Role != model.UserRoleStudent {
			logger.Fatal("Role must be faculty or student", zap.String("role", string(user.Role)))
		}
		if err := userRepo.Create(ctx, user); err != nil {
			logger.Fatal("Failed to create user", zap.Error(err))
		}
		logger.Info("User created", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))

	case "roster":
		faculty, err := userRepo.GetActiveByRole(ctx, model.UserRoleFaculty)
		if err != nil {
			logger.Fatal("Failed to load faculty roster", zap.Error(err))
		}
		for _, u := range faculty {
			fmt.Printf("%d  %s <%s> %s\n", u.ID, u.Name, u.Email, u.Department)
		}

	case "watch":
		watcher := app.NewWatcher(eventRepo, matchingService, cfg.WatchInterval, logger)
		watcher.Start(ctx)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		watcher.Stop()

	default:
		usage()
		os.Exit(2)
	}
}

func parseID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Fatalf("Invalid id %q", raw)
	}
	return id
}

func argAt(i int) string {
	if len(os.Args) <= i {
		usage()
		os.Exit(2)
	}
	return os.Args[i]
}

func splitCSV(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage:
  scheduler migrate                                 apply migrations and print version
  scheduler run <event-id>                          run the matching engine for an event
  scheduler addevent <name> <date> <start> <end> <slot-len> [min] [max]
                                                    create an event (date YYYY-MM-DD, times HH:MM)
  scheduler status <event-id> <to>                  transition event status
  scheduler meetings <event-id> [run-id]            print meetings of a run (default: latest)
  scheduler avail <faculty-id> <event-id> [slots]   submit faculty availability (csv of labels),
                                                    without slots prints the current record
  scheduler prefer <student-id> <event-id> [profs] [slots]
                                                    submit student preferences, without profs
                                                    prints the current record
  scheduler adduser <role> <name> <email> [dept]    create a faculty or student user
  scheduler roster                                  list active faculty
  scheduler watch                                   auto-run matching for pending events`)
}
