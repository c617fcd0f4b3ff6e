package scheduler

import "github.com/noah-isme/batch-scheduler-api/internal/models"

// selectTrainer picks round-robin for online batches with a real choice and
// by priority otherwise. It returns nil for an empty candidate list.
func selectTrainer(candidates []*models.Trainer, online bool, l *ledger) *models.Trainer {
	if online && len(candidates) > 1 {
		return selectRoundRobin(candidates, l)
	}
	return selectByPriority(candidates)
}

// selectByPriority returns the highest-ranked trainer; ties keep input order.
func selectByPriority(candidates []*models.Trainer) *models.Trainer {
	var best *models.Trainer
	for _, t := range candidates {
		if best == nil || t.Priority.Rank() > best.Priority.Rank() {
			best = t
		}
	}
	return best
}

// selectRoundRobin returns the least-loaded trainer, breaking ties by
// priority and then input order.
func selectRoundRobin(candidates []*models.Trainer, l *ledger) *models.Trainer {
	var best *models.Trainer
	bestLoad := 0
	for _, t := range candidates {
		load := l.sessionCount(t.ID)
		switch {
		case best == nil:
		case load < bestLoad:
		case load == bestLoad && t.Priority.Rank() > best.Priority.Rank():
		default:
			continue
		}
		best = t
		bestLoad = load
	}
	return best
}
