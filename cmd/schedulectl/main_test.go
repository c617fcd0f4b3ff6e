package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/batch-scheduler-api/internal/scheduler"
)

const scenario = `
batch:
  id: b1
  location: Bangalore
  start_date: "2024-01-01"
course:
  id: c1
  subjects: [javascript]
subjects:
  - id: javascript
    duration_days: 3
trainers:
  - id: t1
    locations: [Bangalore]
    expertise: [JavaScript]
    work_start: "08:00"
    work_end: "18:00"
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func defaultOptions(path string) options {
	return options{
		scenario:  path,
		onlineCap: scheduler.DefaultOnlineDailyCap,
		buffer:    scheduler.DefaultEndDateBufferDays,
		expertise: string(scheduler.StrategySubjectID),
		optimize:  true,
	}
}

func TestRunScenario(t *testing.T) {
	res, err := run(defaultOptions(writeScenario(t, scenario)), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 3, res.summary.TotalSessions)
	assert.Equal(t, 3, res.summary.Assigned)
	assert.Equal(t, "2024-01-03", res.summary.LastDate.String())
	assert.Equal(t, "2024-01-10", res.endDate)
	assert.Equal(t, 3, res.summary.TrainerLoad["t1"])

	var out bytes.Buffer
	printSummary(&out, res)
	assert.Contains(t, out.String(), "batch b1: 3 sessions, 3 assigned, 0 unassigned")
	assert.Contains(t, out.String(), "projected end date: 2024-01-10")
	assert.Contains(t, out.String(), "trainer t1: 3 sessions")
}

func TestRunScenarioRespectsBookedSessions(t *testing.T) {
	body := scenario + `
booked:
  - batch_id: b2
    date: "2024-01-02"
    subject_id: javascript
    trainer_id: t1
`
	res, err := run(defaultOptions(writeScenario(t, body)), zap.NewNop())
	require.NoError(t, err)

	require.Len(t, res.sessions, 3)
	for _, s := range res.sessions {
		assert.Equal(t, "b1", s.BatchID)
		if s.Date.String() == "2024-01-02" {
			assert.False(t, s.IsAssigned())
		}
	}
	assert.GreaterOrEqual(t, res.summary.Unassigned, 1)
}

func TestRunScenarioMissingFile(t *testing.T) {
	_, err := run(defaultOptions(filepath.Join(t.TempDir(), "nope.yaml")), zap.NewNop())
	assert.Error(t, err)
}

func TestWriteSchedule(t *testing.T) {
	res, err := run(defaultOptions(writeScenario(t, scenario)), zap.NewNop())
	require.NoError(t, err)

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "schedule.csv")
	require.NoError(t, writeSchedule(csvPath, res.sessions, "b1"))
	content, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "date,day,subject,trainer,time_slot,status,conflicts", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2024-01-01,"))

	pdfPath := filepath.Join(dir, "schedule.pdf")
	require.NoError(t, writeSchedule(pdfPath, res.sessions, "b1"))
	content, err = os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))

	assert.Error(t, writeSchedule(filepath.Join(dir, "schedule.txt"), res.sessions, "b1"))
}
