package ddqn

// Schedule determines at which timesteps the agent updates and after
// which updates the target network is synchronized
type Schedule struct {
	start         int
	frequency     int
	syncFrequency int
}

// Schedule returns the update Schedule described by the Config
func (c Config) Schedule() Schedule {
	return Schedule{
		start:         c.StartAt(),
		frequency:     c.UpdateEvery(),
		syncFrequency: c.TargetSyncFrequency,
	}
}

// ShouldUpdate returns whether an update is due once the argument
// number of timesteps have been observed
func (s Schedule) ShouldUpdate(timesteps int) bool {
	return timesteps >= s.start && (timesteps-s.start)%s.frequency == 0
}

// ShouldSync returns whether the target network should be synchronized
// after the argument number of updates
func (s Schedule) ShouldSync(updates int) bool {
	return updates > 0 && updates%s.syncFrequency == 0
}
