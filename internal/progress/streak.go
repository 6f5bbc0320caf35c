package progress

// PassStreak is the number of consecutive passed sessions that passes a goal.
const PassStreak = 3

// ConsecutivePasses counts passed sessions backward from the most recent one,
// stopping at the first failure.
func ConsecutivePasses(sessions []SessionOutcome) int {
	n := 0
	for i := len(sessions) - 1; i >= 0; i-- {
		if !sessions[i].IsPassed {
			break
		}
		n++
	}
	return n
}

// Status derives the streak view of a goal. A passed goal is terminal and
// never reports a broken streak.
func Status(gp GoalProgress) StreakStatus {
	st := StreakStatus{
		ConsecutivePasses: ConsecutivePasses(gp.Sessions),
		TotalSessions:     len(gp.Sessions),
		Passed:            gp.Passed,
	}
	if !gp.Passed && len(gp.Sessions) > 0 && !gp.Sessions[len(gp.Sessions)-1].IsPassed {
		st.StreakBroken = true
	}
	return st
}
