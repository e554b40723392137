package scheduler

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"MissionSentinel/internal/cache"
	"MissionSentinel/internal/model"
	"MissionSentinel/internal/notifier"

	"github.com/robfig/cron/v3"
)

// Announcer delivers scheduled-refresh announcements to the configured chat.
type Announcer interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the per-dataset refresh cadences, announces refresh results
// and dispatches chat commands against the cached snapshots.
type Scheduler struct {
	Cron      *cron.Cron
	Missions  *cache.MissionCache
	DeepDives *cache.DeepDiveCache
	Notifier  Announcer
	Ctx       context.Context
	Now       func() time.Time
}

// NewScheduler creates a new Scheduler. Cron entries run in UTC since both
// refresh boundaries are defined against UTC clock time.
func NewScheduler(ctx context.Context, mc *cache.MissionCache, ddc *cache.DeepDiveCache, tn Announcer) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		Missions:  mc,
		DeepDives: ddc,
		Notifier:  tn,
		Ctx:       ctx,
		Now:       time.Now,
	}
}

// RegisterAll registers the daily mission refresh and the deep dive tick.
// The deep dive tick fires daily and acts only on the rotation weekday.
func (s *Scheduler) RegisterAll(missionsCron, deepDiveCron string) error {
	if _, err := s.Cron.AddFunc(missionsCron, s.refreshMissions); err != nil {
		return fmt.Errorf("register missions refresh: %w", err)
	}
	if _, err := s.Cron.AddFunc(deepDiveCron, s.deepDiveTick); err != nil {
		return fmt.Errorf("register deep dive tick: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunRefreshNow warms both caches immediately (for RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshMissions()
	s.refreshDeepDives()
}

func (s *Scheduler) refreshMissions() {
	now := s.Now().UTC()
	log.Println("[INFO] running mission refresh")
	if err := s.Missions.Refresh(s.Ctx, now); err != nil {
		log.Printf("[ERROR] mission refresh: %v", err)
		return
	}
	snap, err := s.Missions.Current(s.Ctx, now)
	if err != nil {
		return
	}
	s.trySend("Today's deal: " + notifier.FormatDailyDeal(&snap.Deal))
}

func (s *Scheduler) refreshDeepDives() {
	now := s.Now().UTC()
	log.Println("[INFO] running deep dive refresh")
	if err := s.DeepDives.Refresh(s.Ctx, now); err != nil {
		log.Printf("[ERROR] deep dive refresh: %v", err)
		return
	}
	snap, err := s.DeepDives.Current(s.Ctx, now)
	if err != nil {
		return
	}
	s.trySend(fmt.Sprintf("New deep dive rotation!\nDeep Dive: %s\nElite Deep Dive: %s",
		snap.Dives.Normal.CodeName, snap.Dives.Elite.CodeName))
}

// deepDiveTick fires every day; the rotation only advances on its weekday.
func (s *Scheduler) deepDiveTick() {
	if s.Now().UTC().Weekday() != model.RotationWeekday {
		return
	}
	s.refreshDeepDives()
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

const (
	defaultSeason = "s0"
	notReadyMsg   = "Mission data is not ready yet, try again in a minute."
	helpMsg       = "Available commands:\n" +
		"/current [season] - missions in the active slot\n" +
		"/upcoming [season] - missions in the next slot\n" +
		"/goldrush [season] - next Gold Rush missions\n" +
		"/doublexp [season] - next Double XP missions\n" +
		"/primary <objective> [season]\n" +
		"/secondary <objective> [season]\n" +
		"/warnings <tag> [season]\n" +
		"/doublewarning [season] - missions with two warnings\n" +
		"/summary [season] - aggregate of upcoming missions\n" +
		"/daily - today's deal\n" +
		"/deepdive, /elitedeepdive"
)

var seasonRe = regexp.MustCompile(`^s\d+$`)

// parseCommand splits a message into command, filter value and season. The
// season defaults to s0 when the trailing argument is not a season code.
func parseCommand(text string) (cmd, value, season string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", "", defaultSeason
	}
	cmd = strings.ToLower(fields[0])
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	args := fields[1:]
	season = defaultSeason
	if len(args) > 0 && seasonRe.MatchString(args[len(args)-1]) {
		season = args[len(args)-1]
		args = args[:len(args)-1]
	}
	value = strings.Join(args, " ")
	return cmd, value, season
}

// HandleCommand processes one user command and returns the reply text.
// Queries run against the best available snapshot; raw errors are logged at
// the cache boundary, never surfaced here.
func (s *Scheduler) HandleCommand(text string) string {
	cmd, value, season := parseCommand(text)
	now := s.Now().UTC()

	switch cmd {
	case "/deepdive":
		snap, err := s.DeepDives.Current(s.Ctx, now)
		if err != nil {
			return notReadyMsg
		}
		return notifier.FormatDeepDive("Deep Dive", &snap.Dives.Normal)
	case "/elitedeepdive":
		snap, err := s.DeepDives.Current(s.Ctx, now)
		if err != nil {
			return notReadyMsg
		}
		return notifier.FormatDeepDive("Elite Deep Dive", &snap.Dives.Elite)
	case "/current", "/upcoming", "/goldrush", "/doublexp", "/primary",
		"/secondary", "/warnings", "/doublewarning", "/summary", "/daily":
	default:
		return helpMsg
	}

	snap, err := s.Missions.Current(s.Ctx, now)
	if err != nil {
		return notReadyMsg
	}
	if cmd == "/daily" {
		return notifier.FormatDailyDeal(&snap.Deal)
	}

	set := snap.Missions.ExcludePast(now).FilterSeason(season)

	switch cmd {
	case "/current":
		return notifier.FormatMissionBullets(set.FilterCurrent(now), now)
	case "/upcoming":
		return notifier.FormatMissionBullets(set.FilterUpcoming(now), now)
	case "/goldrush":
		return notifier.FormatMissionTable(
			set.FilterMutator("Gold Rush").TopN(notifier.MaxMissionDisplay),
			now, []string{"Season", "Mutator"})
	case "/doublexp":
		return notifier.FormatMissionTable(
			set.FilterMutator("Double XP").TopN(notifier.MaxMissionDisplay),
			now, []string{"Season", "Mutator"})
	case "/primary":
		if value == "" {
			return "Usage: /primary <objective> [season]"
		}
		return notifier.FormatMissionTable(
			set.FilterPrimary(value).TopN(notifier.MaxMissionDisplay),
			now, []string{"Season", "Primary"})
	case "/secondary":
		if value == "" {
			return "Usage: /secondary <objective> [season]"
		}
		return notifier.FormatMissionTable(
			set.FilterSecondary(value).TopN(notifier.MaxMissionDisplay),
			now, []string{"Season", "Secondary"})
	case "/warnings":
		if value == "" {
			return "Usage: /warnings <tag> [season]"
		}
		return notifier.FormatMissionTable(
			set.FilterWarning(value).TopN(notifier.MaxMissionDisplay),
			now, []string{"Season"})
	case "/doublewarning":
		return notifier.FormatMissionTable(
			set.FilterDoubleWarning().TopN(notifier.MaxMissionDisplay),
			now, []string{"Season"})
	case "/summary":
		return notifier.FormatSummary(set.Summary())
	default:
		return helpMsg
	}
}
