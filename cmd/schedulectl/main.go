package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/batch-scheduler-api/internal/fixtures"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
	"github.com/noah-isme/batch-scheduler-api/internal/scheduler"
	"github.com/noah-isme/batch-scheduler-api/internal/service"
	"github.com/noah-isme/batch-scheduler-api/pkg/export"
)

type options struct {
	scenario  string
	out       string
	onlineCap int
	buffer    int
	expertise string
	optimize  bool
	verbose   bool
}

type result struct {
	sessions []models.ScheduleSession
	summary  models.ScheduleSummary
	endDate  string
	filled   int
}

func main() {
	var opts options
	flag.StringVar(&opts.scenario, "scenario", "", "Path to YAML scenario file")
	flag.StringVar(&opts.out, "out", "", "Write the schedule to this .csv or .pdf file")
	flag.IntVar(&opts.onlineCap, "online-cap", scheduler.DefaultOnlineDailyCap, "Online sessions a trainer may take per day")
	flag.IntVar(&opts.buffer, "buffer-days", scheduler.DefaultEndDateBufferDays, "Working days added to the curriculum for the end date")
	flag.StringVar(&opts.expertise, "expertise", string(scheduler.StrategySubjectID), "Optimizer expertise matching: subject_id or synonym")
	flag.BoolVar(&opts.optimize, "optimize", true, "Fill unassigned sessions after generation")
	flag.BoolVar(&opts.verbose, "v", false, "Log engine decisions")
	flag.Parse()

	if opts.scenario == "" {
		flag.Usage()
		os.Exit(2)
	}

	logr := zap.NewNop()
	if opts.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("failed to init logger: %v", err)
		}
		logr = l
	}
	defer logr.Sync() //nolint:errcheck

	res, err := run(opts, logr)
	if err != nil {
		log.Fatalf("schedulectl: %v", err)
	}
	printSummary(os.Stdout, res)

	if opts.out != "" {
		if err := writeSchedule(opts.out, res.sessions, res.summary.BatchID); err != nil {
			log.Fatalf("schedulectl: %v", err)
		}
		fmt.Fprintf(os.Stdout, "schedule written to %s\n", opts.out)
	}
}

// run plans the scenario: generate, optionally optimise, then annotate conflicts
// against the sessions already booked by other batches.
func run(opts options, logr *zap.Logger) (*result, error) {
	scenario, err := fixtures.Load(opts.scenario)
	if err != nil {
		return nil, err
	}
	in, err := scenario.Input()
	if err != nil {
		return nil, err
	}

	engine := scheduler.New(scheduler.Config{
		OnlineDailyCap:     opts.onlineCap,
		EndDateBufferDays:  opts.buffer,
		OptimizerExpertise: scheduler.ExpertiseStrategy(opts.expertise),
	}, logr)

	sessions := engine.Generate(in)

	res := &result{}
	if opts.optimize {
		before := countAssigned(sessions)
		combined := append(append([]models.ScheduleSession{}, in.Existing...), sessions...)
		optimized := engine.Optimize(combined, in.Trainers, in.Subjects)
		sessions = optimized[len(in.Existing):]
		res.filled = countAssigned(sessions) - before
	}

	combined := append(append([]models.ScheduleSession{}, in.Existing...), sessions...)
	annotated := engine.DetectConflicts(combined, in.Trainers)
	res.sessions = annotated[len(in.Existing):]
	res.summary = models.Summarize(in.Batch.ID, res.sessions)

	end := engine.CalculateEndDate(in.Batch.StartDate, in.Course, in.Subjects, in.Batch.Cadence, models.HolidaySet(in.Holidays))
	res.endDate = end.String()
	return res, nil
}

func countAssigned(sessions []models.ScheduleSession) int {
	n := 0
	for _, s := range sessions {
		if s.IsAssigned() {
			n++
		}
	}
	return n
}

func printSummary(w io.Writer, res *result) {
	s := res.summary
	fmt.Fprintf(w, "batch %s: %d sessions, %d assigned, %d unassigned\n", s.BatchID, s.TotalSessions, s.Assigned, s.Unassigned)
	if s.TotalSessions > 0 {
		fmt.Fprintf(w, "dates: %s .. %s\n", s.FirstDate, s.LastDate)
	}
	fmt.Fprintf(w, "projected end date: %s\n", res.endDate)
	if res.filled > 0 {
		fmt.Fprintf(w, "optimizer filled %d sessions\n", res.filled)
	}

	trainers := make([]string, 0, len(s.TrainerLoad))
	for id := range s.TrainerLoad {
		trainers = append(trainers, id)
	}
	sort.Strings(trainers)
	for _, id := range trainers {
		fmt.Fprintf(w, "  trainer %s: %d sessions\n", id, s.TrainerLoad[id])
	}

	codes := make([]string, 0, len(s.ConflictCounts))
	for code := range s.ConflictCounts {
		codes = append(codes, string(code))
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  conflict %s: %d\n", code, s.ConflictCounts[models.ConflictCode(code)])
	}
}

func writeSchedule(path string, sessions []models.ScheduleSession, batchID string) error {
	data := service.ScheduleDataset(sessions)

	var (
		content []byte
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		content, err = export.NewCSVExporter().Render(data)
	case ".pdf":
		content, err = export.NewPDFExporter().Render(data, fmt.Sprintf("Schedule for batch %s", batchID))
	default:
		return errors.New("output must end in .csv or .pdf")
	}
	if err != nil {
		return fmt.Errorf("render schedule: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
