package model

import "math"

func clampInt(lo, hi, v int) int {
	return int(math.Max(float64(lo), math.Min(float64(hi), float64(v))))
}

// Dataset
func BoundSamples(v int) int {
	return clampInt(16, 1_000_000, v) // Default: 1200
}

func BoundChannels(v int) int {
	return clampInt(1, 256, v) // Default: 8
}

func BoundLength(v int) int {
	return clampInt(4, 4096, v) // Default: 64
}

func BoundClasses(v int) int {
	return clampInt(2, 100, v) // Default: 4
}

func BoundSignalNoise(v float64) float64 {
	return math.Max(0, math.Min(5, v))
}

func BoundTrainFraction(v float64) float64 {
	return math.Max(0.1, math.Min(0.95, v)) // Default: 0.8
}

// Augmentation
func BoundSmoothingGamma(v float64) float64 {
	return math.Max(0, math.Min(1, v)) // Default: 0.1
}

func BoundShuffleProbability(v float64) float64 {
	return math.Max(0, math.Min(1, v)) // Default: 0.1
}

// BoundMixupRate allows 0, which disables mixup.
func BoundMixupRate(v float64) float64 {
	return math.Max(0, math.Min(10, v)) // Default: 0.2
}

func BoundAugmentNoise(v float64) float64 {
	return math.Max(0, math.Min(1, v)) // Default: 0.02
}

// Training
func BoundEpochs(v int) int {
	return clampInt(1, 10_000, v) // Default: 50
}

func BoundBatchSize(v int) int {
	return clampInt(2, 4096, v) // Default: 32
}

func BoundHiddenSize(v int) int {
	return clampInt(2, 4096, v)
}

func BoundPatience(v int) int {
	return clampInt(1, 1000, v) // Default: 10
}

func BoundValidateEvery(v int) int {
	return clampInt(1, 100, v) // Default: 5
}

func BoundL2Penalty(v float64) float64 {
	return math.Max(0, math.Min(0.1, v))
}

func BoundDropoutRate(v float64) float64 {
	return math.Max(0, math.Min(0.5, v))
}

func BoundLearnRate(v float64) float64 {
	return math.Max(1e-5, math.Min(1e-1, v))
}

func BoundWorkers(v int) int {
	return clampInt(0, 1024, v)
}

func BoundMetricsPort(v int) int {
	return clampInt(0, 65535, v)
}
