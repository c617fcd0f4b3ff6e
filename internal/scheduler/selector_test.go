package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

func trainerPtrs(trainers ...models.Trainer) []*models.Trainer {
	out := make([]*models.Trainer, 0, len(trainers))
	for i := range trainers {
		out = append(out, &trainers[i])
	}
	return out
}

func TestSelectByPriority(t *testing.T) {
	candidates := trainerPtrs(
		newTrainer("a", withPriority(models.TrainerPriorityCore)),
		newTrainer("b", withPriority(models.TrainerPrioritySenior)),
		newTrainer("c", withPriority(models.TrainerPrioritySenior)),
	)
	assert.Equal(t, "b", selectByPriority(candidates).ID)
	assert.Nil(t, selectByPriority(nil))
}

func TestSelectRoundRobinPrefersLeastLoaded(t *testing.T) {
	candidates := trainerPtrs(
		newTrainer("a", withPriority(models.TrainerPrioritySenior)),
		newTrainer("b", withPriority(models.TrainerPriorityJunior)),
		newTrainer("c", withPriority(models.TrainerPriorityCore)),
	)
	l := newLedger([]models.ScheduleSession{
		assigned("x", "2024-01-01", "s", "a", DefaultOnlineSlot),
		assigned("x", "2024-01-02", "s", "a", DefaultOnlineSlot),
		assigned("x", "2024-01-01", "s", "b", DefaultOnlineSlot),
		assigned("x", "2024-01-01", "s", "c", DefaultOnlineSlot),
	})

	assert.Equal(t, "c", selectRoundRobin(candidates, l).ID, "tie on load goes to the higher priority")
}

func TestSelectTrainerModes(t *testing.T) {
	candidates := trainerPtrs(
		newTrainer("busy", withPriority(models.TrainerPrioritySenior)),
		newTrainer("idle", withPriority(models.TrainerPriorityJunior)),
	)
	l := newLedger([]models.ScheduleSession{assigned("x", "2024-01-01", "s", "busy", DefaultOnlineSlot)})

	assert.Equal(t, "busy", selectTrainer(candidates, false, l).ID)
	assert.Equal(t, "idle", selectTrainer(candidates, true, l).ID)
	assert.Equal(t, "busy", selectTrainer(candidates[:1], true, l).ID)
	assert.Nil(t, selectTrainer(nil, true, l))
}
