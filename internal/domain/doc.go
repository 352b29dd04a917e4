// Package domain models a meteor's atmospheric entry and ground impact.
//
// # Entry Sampler
//
// [Sampler] draws a statistically plausible [MeteorDescription]:
//
//	Composition: STONE 0.85 | IRON 0.12 | MIXED 0.03
//	Site:        0.71 open ocean (whole grid), else one of seven named
//	             regions chosen uniformly, sampled inside its bounding box
//	Weather:     conditioned on region; STORM is never sampled
//	Speed:       Box–Muller normal, mean 20 km/s, sigma 4.5, clamped to [12, 30]
//	Angle:       uniform integer in [12, 68] degrees from horizontal
//	Diameter:    log-uniform over [0.2, 200] m, plus a 2% chance of an
//	             additive [300, 20000] m large-body tail
//	Year:        0.7 historical [-3000, current year], else deep time
//	             [-2.5e9, -1e6]
//
// Mass is never sampled. It always comes from the diameter and the
// composition density through the sphere volume (see [MassFromDiameter]).
//
// # Units
//
// Speed is km/s on every exported type. The single conversion to m/s
// happens in [KineticEnergy], which both the physics calculator and the
// casualty estimator use. Energy is joules and lengths are meters.
//
// # Impact physics
//
//	angle coefficient   max(0.3, sin θ)
//	base crater radius  0.00158740105 · E^(1/3) · angle · weather
//	crater depth        0.2 · base crater radius
//	crater diameter     0.01 km · max(E_Mt, 0.001)^(1/3.4) · material factor
//	blast radius        0.1 · E^(1/5) · t^(2/5) · angle · weather
//	zoom                clamp(12 − log2(r / 1000), 5, 18)
//
// An event is an airburst when the angle is below 20° or the mass is below
// 1.5e7 kg. Airbursts leave no surface crater.
//
// # Casualties
//
// The estimator is illustrative and independent of the crater model. It
// uses an unfloored sin θ and regional multipliers (0.01 sparse, 1.3 dense).
// It clamps the estimate to [0, 8e9].
//
// Every engine function is total. Degenerate input such as zero or negative
// mass yields zero energy, not an error. Validation of user-typed values
// happens in [ImpactRequest.Validate], before the engine is called.
package domain
