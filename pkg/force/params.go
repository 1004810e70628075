package force

// Params holds the tunables of the galaxy simulation.
type Params struct {
	AlphaMin      float64 `yaml:"alpha_min"`      // settle threshold
	AlphaDecay    float64 `yaml:"alpha_decay"`    // fraction of the gap to alphaTarget closed per tick
	VelocityDecay float64 `yaml:"velocity_decay"` // fraction of velocity lost per tick

	LinkDistance float64 `yaml:"link_distance"`

	ChargeStrength float64 `yaml:"charge_strength"`
	Theta          float64 `yaml:"theta"`        // Barnes-Hut opening criterion
	DistanceMin    float64 `yaml:"distance_min"` // floor applied to pair distance

	CollideStrength float64 `yaml:"collide_strength"`
	CollidePadding  float64 `yaml:"collide_padding"`
	LabelFactor     float64 `yaml:"label_factor"` // exclusion added per label cell

	RadialGain  float64 `yaml:"radial_gain"`
	OrbitFactor float64 `yaml:"orbit_factor"` // orbit radius as a fraction of min(width, height)

	ReheatTarget float64 `yaml:"reheat_target"` // alphaTarget while a node is dragged
}

// DefaultParams returns the tuning that produces the galaxy-sector layout.
func DefaultParams() Params {
	return Params{
		AlphaMin:        0.001,
		AlphaDecay:      0.02,
		VelocityDecay:   0.55,
		LinkDistance:    180,
		ChargeStrength:  -1200,
		Theta:           0.9,
		DistanceMin:     1,
		CollideStrength: 0.6,
		CollidePadding:  10,
		LabelFactor:     4,
		RadialGain:      0.15,
		OrbitFactor:     0.35,
		ReheatTarget:    0.3,
	}
}

// withDefaults replaces out-of-range fields with their defaults. A zero
// Params yields DefaultParams.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p == (Params{}) {
		return d
	}
	if p.AlphaMin <= 0 {
		p.AlphaMin = d.AlphaMin
	}
	if p.AlphaDecay <= 0 || p.AlphaDecay >= 1 {
		p.AlphaDecay = d.AlphaDecay
	}
	if p.VelocityDecay < 0 || p.VelocityDecay >= 1 {
		p.VelocityDecay = d.VelocityDecay
	}
	if p.LinkDistance <= 0 {
		p.LinkDistance = d.LinkDistance
	}
	if p.Theta < 0 {
		p.Theta = d.Theta
	}
	if p.DistanceMin <= 0 {
		p.DistanceMin = d.DistanceMin
	}
	if p.CollideStrength < 0 || p.CollideStrength > 1 {
		p.CollideStrength = d.CollideStrength
	}
	if p.OrbitFactor <= 0 {
		p.OrbitFactor = d.OrbitFactor
	}
	if p.ReheatTarget <= 0 {
		p.ReheatTarget = d.ReheatTarget
	}
	return p
}
