package resampler

import "fmt"

// QualityPreset enumerates predefined filter configurations.
type QualityPreset int

const (
	// QualityQuick uses a short filter with nearest-phase selection.
	// Suitable for previews and non-critical monitoring.
	QualityQuick QualityPreset = iota

	// QualityLow gives about 40 dB of image and alias rejection.
	QualityLow

	// QualityMedium matches DefaultConfig: semi-length 13, -60 dB, 32 phases.
	QualityMedium

	// QualityHigh gives about 80 dB of rejection with cubic interpolation.
	QualityHigh

	// QualityVeryHigh gives about 120 dB of rejection for measurement work.
	QualityVeryHigh
)

// Preset filter parameters
const (
	quickSemiLength  = 4
	quickAttenuation = -40.0
	quickPhases      = 16

	lowSemiLength  = 7
	lowAttenuation = -40.0
	lowPhases      = 32

	highSemiLength  = 20
	highAttenuation = -80.0
	highPhases      = 64

	veryHighSemiLength  = 32
	veryHighAttenuation = -120.0
	veryHighPhases      = 256
)

// String returns the preset name.
func (q QualityPreset) String() string {
	switch q {
	case QualityQuick:
		return "quick"
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	case QualityVeryHigh:
		return "veryhigh"
	default:
		return fmt.Sprintf("QualityPreset(%d)", int(q))
	}
}

// ParseQuality returns the preset with the given name.
func ParseQuality(name string) (QualityPreset, error) {
	for q := QualityQuick; q <= QualityVeryHigh; q++ {
		if q.String() == name {
			return q, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown quality preset %q", ErrInvalidConfig, name)
}

// PresetConfig returns the configuration of preset for rate. The bandwidth is
// 0.5 for rate >= 1 and rate/2 otherwise, so decimation rejects aliases.
func PresetConfig(rate float64, preset QualityPreset) Config {
	config := DefaultConfig(rate)
	if rate > 0 && rate < 1 {
		config.Bandwidth = rate * maxBandwidth
	}

	switch preset {
	case QualityQuick:
		config.SemiLength = quickSemiLength
		config.StopbandAttenuationDB = quickAttenuation
		config.NumPhases = quickPhases
		config.Interpolation = InterpNearest

	case QualityLow:
		config.SemiLength = lowSemiLength
		config.StopbandAttenuationDB = lowAttenuation
		config.NumPhases = lowPhases

	case QualityHigh:
		config.SemiLength = highSemiLength
		config.StopbandAttenuationDB = highAttenuation
		config.NumPhases = highPhases
		config.Interpolation = InterpCubic

	case QualityVeryHigh:
		config.SemiLength = veryHighSemiLength
		config.StopbandAttenuationDB = veryHighAttenuation
		config.NumPhases = veryHighPhases
		config.Interpolation = InterpCubic
	}

	return config
}
