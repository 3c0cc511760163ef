package card

import "math"

// Burst is one confetti call for the browser's canvas-confetti library.
// Zero fields are left to the library's defaults.
type Burst struct {
	ParticleCount int     `json:"particleCount"`
	Spread        float64 `json:"spread"`
	StartVelocity float64 `json:"startVelocity,omitempty"`
	Decay         float64 `json:"decay,omitempty"`
	Scalar        float64 `json:"scalar,omitempty"`
	OriginY       float64 `json:"originY"`
}

const (
	confettiParticles = 200
	confettiOriginY   = 0.7
)

// ConfettiPlan returns the bursts fired on a bingo: a 200-particle budget
// split across five spreads.
func ConfettiPlan() []Burst {
	fire := func(ratio float64, b Burst) Burst {
		b.ParticleCount = int(math.Floor(confettiParticles * ratio))
		b.OriginY = confettiOriginY
		return b
	}
	return []Burst{
		fire(0.25, Burst{Spread: 26, StartVelocity: 55}),
		fire(0.2, Burst{Spread: 60}),
		fire(0.35, Burst{Spread: 100, Decay: 0.91, Scalar: 0.8}),
		fire(0.1, Burst{Spread: 120, StartVelocity: 25, Decay: 0.92, Scalar: 1.2}),
		fire(0.1, Burst{Spread: 120, StartVelocity: 45}),
	}
}
