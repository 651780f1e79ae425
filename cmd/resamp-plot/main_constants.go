package main

// Default command-line flag values
const (
	defaultRate      = 0.9 // output/input
	defaultSamples   = 128 // input length
	defaultNFFT      = 512 // PSD length
	defaultOutputDir = "."
	defaultWAVRate   = 100000 // nominal input rate for -wav
)

// Test signal: sum of two complex tones
const (
	toneFrequency1 = 0.04
	toneAmplitude1 = 1.0
	toneFrequency2 = 0.07
	toneAmplitude2 = 1.4
)

// Output files
const (
	timeScriptName = "filter_resamp_crcf.gnu"
	psdScriptName  = "filter_resamp_crcf_psd.gnu"
	outputDirPerm  = 0o755
)

// WAV export
const (
	wavBitDepth  = 16
	wavChannels  = 2 // I and Q
	wavFormatPCM = 1
	wavFullScale = 32767.0
)
