package pirep

import "github.com/zulandar/hangar/internal/models"

// ValidTransitions maps each state to the states a report may move to.
// Moving to the current state is a no-op and is not listed.
var ValidTransitions = map[models.PirepState][]models.PirepState{
	models.PirepPending: {
		models.PirepInProgress, models.PirepPendingAccept, models.PirepAccepted,
		models.PirepRejected, models.PirepCancelled, models.PirepDeleted,
	},
	models.PirepInProgress: {
		models.PirepPendingAccept, models.PirepAccepted, models.PirepRejected,
		models.PirepCancelled, models.PirepDeleted,
	},
	models.PirepPendingAccept: {
		models.PirepAccepted, models.PirepRejected, models.PirepCancelled, models.PirepDeleted,
	},
	models.PirepAccepted:  {models.PirepRejected, models.PirepDeleted},
	models.PirepRejected:  {models.PirepAccepted, models.PirepDeleted},
	models.PirepCancelled: {models.PirepDeleted},
	models.PirepDeleted:   {},
}

func isValidTransition(from, to models.PirepState) bool {
	for _, v := range ValidTransitions[from] {
		if v == to {
			return true
		}
	}
	return false
}

// openStates are the states of a report that is still being flown or waits
// for review.
var openStates = []models.PirepState{
	models.PirepPending,
	models.PirepInProgress,
	models.PirepPendingAccept,
}
