package parameter

// Action tiers, primary resolution key (higher wins a contested cell)
const (
	TierWait   = 0
	TierMove   = 1
	TierDash   = 2
	TierAttack = 3
)

// Intent defaults
const (
	// AttackRange is the Chebyshev distance at which a chaser attacks instead of stepping
	AttackRange = 1

	// DashRange is the maximum straight-line length of a dash (cells)
	DashRange = 2

	// PlayerPriority is the base priority given to submitted player commands
	PlayerPriority = 100

	// ChaserPriority is the base priority of default chase intents
	ChaserPriority = 10
)
