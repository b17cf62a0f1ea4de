// Package settings holds the tunable parameters of a simulation: the fixed
// timestep, the solver iteration counts, the various numerical tolerances
// used by the contact and joint solvers, and the sleep thresholds.
//
// A Settings value is always constructed through NewSettings (or loaded
// from YAML through LoadYAML) so that it starts from the documented
// defaults; setters validate their arguments and return a classified error
// instead of silently accepting an invalid configuration.
package settings

import (
	"io/ioutil"
	"math"

	"gopkg.in/yaml.v2"

	"github.com/rigid2d/engine/physics/perr"
)

// ContinuousMode selects which bodies participate in continuous collision
// detection (CCD) substepping.
type ContinuousMode int

const (
	// CCDNone disables continuous collision detection entirely.
	CCDNone ContinuousMode = iota
	// CCDBulletsOnly runs CCD only for bodies flagged as bullets.
	CCDBulletsOnly
	// CCDAll runs CCD for every dynamic body.
	CCDAll
)

// Settings groups every tunable of the simulation, with the defaults
// documented alongside each field.
type Settings struct {
	StepFrequency float64 `yaml:"stepFrequency"` // Integration timestep, in seconds. Default 1/60.

	MaxTranslation float64 `yaml:"maxTranslation"` // Clamp on per-step linear movement. Default 2.0.
	MaxRotation    float64 `yaml:"maxRotation"`    // Clamp on per-step angular movement. Default Pi/2.

	AtRestDetectionEnabled bool    `yaml:"atRestDetectionEnabled"` // Sleep detection switch. Default true.
	AtRestLinearVelocity   float64 `yaml:"atRestLinearVelocity"`   // Sleep linear velocity threshold. Default 0.01.
	AtRestAngularVelocity  float64 `yaml:"atRestAngularVelocity"`  // Sleep angular velocity threshold. Default ~0.035.
	AtRestTime             float64 `yaml:"atRestTime"`             // Dwell time before sleeping. Default 0.5.

	VelocityIterations int `yaml:"velocityIterations"` // Default 10.
	PositionIterations int `yaml:"positionIterations"` // Default 10.

	WarmStartDistance   float64 `yaml:"warmStartDistance"`   // Reuse impulse if the previous point lies within this distance. Default 0.01.
	RestitutionVelocity float64 `yaml:"restitutionVelocity"` // Minimum closing speed to produce a bounce. Default 1.0.

	LinearTolerance  float64 `yaml:"linearTolerance"`  // Position solve slop. Default 0.005.
	AngularTolerance float64 `yaml:"angularTolerance"` // Position solve angular slop. Default ~0.035.

	MaxLinearCorrection  float64 `yaml:"maxLinearCorrection"`  // Clamp per-iteration linear position fix. Default 0.2.
	MaxAngularCorrection float64 `yaml:"maxAngularCorrection"` // Clamp per-iteration angular position fix. Default ~0.14.

	Baumgarte float64 `yaml:"baumgarte"` // Position-correction bias factor. Default 0.2.

	ContinuousMode ContinuousMode `yaml:"continuousMode"` // Default CCDAll.
}

// NewSettings returns a Settings populated with the documented defaults.
func NewSettings() *Settings {

	return &Settings{
		StepFrequency: 1.0 / 60.0,

		MaxTranslation: 2.0,
		MaxRotation:    math.Pi / 2,

		AtRestDetectionEnabled: true,
		AtRestLinearVelocity:   0.01,
		AtRestAngularVelocity:  2.0 * math.Pi / 180.0,
		AtRestTime:             0.5,

		VelocityIterations: 10,
		PositionIterations: 10,

		WarmStartDistance:   0.01,
		RestitutionVelocity: 1.0,

		LinearTolerance:  0.005,
		AngularTolerance: 2.0 * math.Pi / 180.0,

		MaxLinearCorrection:  0.2,
		MaxAngularCorrection: 8.0 * math.Pi / 180.0,

		Baumgarte: 0.2,

		ContinuousMode: CCDAll,
	}
}

// SetStepFrequency sets the fixed timestep, in seconds. Must be > 0.
func (s *Settings) SetStepFrequency(dt float64) error {

	if dt <= 0 {
		return perr.InvalidArgument("stepFrequency must be > 0")
	}
	s.StepFrequency = dt
	return nil
}

// SetMaxTranslation sets the per-step linear movement clamp. Must be >= 0.
func (s *Settings) SetMaxTranslation(v float64) error {

	if v < 0 {
		return perr.InvalidArgument("maxTranslation must be >= 0")
	}
	s.MaxTranslation = v
	return nil
}

// SetMaxRotation sets the per-step angular movement clamp. Must be >= 0.
func (s *Settings) SetMaxRotation(v float64) error {

	if v < 0 {
		return perr.InvalidArgument("maxRotation must be >= 0")
	}
	s.MaxRotation = v
	return nil
}

// SetAtRestLinearVelocity sets the sleep linear velocity threshold. Must be >= 0.
func (s *Settings) SetAtRestLinearVelocity(v float64) error {

	if v < 0 {
		return perr.InvalidArgument("atRestLinearVelocity must be >= 0")
	}
	s.AtRestLinearVelocity = v
	return nil
}

// SetAtRestAngularVelocity sets the sleep angular velocity threshold. Must be >= 0.
func (s *Settings) SetAtRestAngularVelocity(v float64) error {

	if v < 0 {
		return perr.InvalidArgument("atRestAngularVelocity must be >= 0")
	}
	s.AtRestAngularVelocity = v
	return nil
}

// SetAtRestTime sets the dwell time before sleeping. Must be >= 0.
func (s *Settings) SetAtRestTime(v float64) error {

	if v < 0 {
		return perr.InvalidArgument("atRestTime must be >= 0")
	}
	s.AtRestTime = v
	return nil
}

// SetVelocityIterations sets the number of velocity solver iterations. Must be >= 1.
func (s *Settings) SetVelocityIterations(n int) error {

	if n < 1 {
		return perr.InvalidArgument("velocityIterations must be >= 1")
	}
	s.VelocityIterations = n
	return nil
}

// SetPositionIterations sets the number of position solver iterations. Must be >= 1.
func (s *Settings) SetPositionIterations(n int) error {

	if n < 1 {
		return perr.InvalidArgument("positionIterations must be >= 1")
	}
	s.PositionIterations = n
	return nil
}

// SetWarmStartDistance sets the warm-start matching distance. Must be >= 0.
func (s *Settings) SetWarmStartDistance(v float64) error {

	if v < 0 {
		return perr.InvalidArgument("warmStartDistance must be >= 0")
	}
	s.WarmStartDistance = v
	return nil
}

// SetRestitutionVelocity sets the minimum closing speed that produces a bounce. Must be >= 0.
func (s *Settings) SetRestitutionVelocity(v float64) error {

	if v < 0 {
		return perr.InvalidArgument("restitutionVelocity must be >= 0")
	}
	s.RestitutionVelocity = v
	return nil
}

// SetLinearTolerance sets the position-solve linear slop. Must be >= 0.
func (s *Settings) SetLinearTolerance(v float64) error {

	if v < 0 {
		return perr.InvalidArgument("linearTolerance must be >= 0")
	}
	s.LinearTolerance = v
	return nil
}

// SetAngularTolerance sets the position-solve angular slop. Must be >= 0.
func (s *Settings) SetAngularTolerance(v float64) error {

	if v < 0 {
		return perr.InvalidArgument("angularTolerance must be >= 0")
	}
	s.AngularTolerance = v
	return nil
}

// SetMaxLinearCorrection sets the per-iteration linear correction clamp. Must be >= 0.
func (s *Settings) SetMaxLinearCorrection(v float64) error {

	if v < 0 {
		return perr.InvalidArgument("maxLinearCorrection must be >= 0")
	}
	s.MaxLinearCorrection = v
	return nil
}

// SetMaxAngularCorrection sets the per-iteration angular correction clamp. Must be >= 0.
func (s *Settings) SetMaxAngularCorrection(v float64) error {

	if v < 0 {
		return perr.InvalidArgument("maxAngularCorrection must be >= 0")
	}
	s.MaxAngularCorrection = v
	return nil
}

// SetBaumgarte sets the position-correction bias factor. Must be in [0, 1].
func (s *Settings) SetBaumgarte(v float64) error {

	if v < 0 || v > 1 {
		return perr.InvalidArgument("baumgarte must be in [0, 1]")
	}
	s.Baumgarte = v
	return nil
}

// SetContinuousMode sets the CCD mode.
func (s *Settings) SetContinuousMode(mode ContinuousMode) error {

	if mode < CCDNone || mode > CCDAll {
		return perr.InvalidArgument("unknown continuous collision mode")
	}
	s.ContinuousMode = mode
	return nil
}

// LoadYAML parses a YAML document (as produced by SaveYAML) into a new
// Settings, starting from the defaults for any field the document omits.
func LoadYAML(data []byte) (*Settings, error) {

	s := NewSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, perr.InvalidArgument("settings: " + err.Error())
	}
	return s, nil
}

// LoadYAMLFile reads and parses a YAML settings file.
func LoadYAMLFile(path string) (*Settings, error) {

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadYAML(data)
}

// SaveYAML serializes these settings to YAML.
func (s *Settings) SaveYAML() ([]byte, error) {

	return yaml.Marshal(s)
}
