package dataset

import (
	"fmt"
	"sort"
	"time"

	"github.com/SangMin316/dn3/pkg/transform"
	"golang.org/x/exp/rand"
)

// Balance oversamples every minority class up to the majority class size.
// Extra samples are noisy copies of randomly chosen members of the class.
func Balance(samples []transform.Sample, noise *transform.Noise, rng *rand.Rand) ([]transform.Sample, error) {
	if noise == nil {
		return nil, fmt.Errorf("%w: balancing needs a noise transform", transform.ErrInvalidConfiguration)
	}
	if rng == nil {
		rng = transform.NewRand(uint64(time.Now().UnixNano()))
	}

	// Group samples by class
	classSamples := make(map[int][]int)
	for i, s := range samples {
		class, err := transform.ClassIndex(s.Label)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		classSamples[class] = append(classSamples[class], i)
	}

	majoritySize := 0
	classes := make([]int, 0, len(classSamples))
	for class, members := range classSamples {
		if len(members) > majoritySize {
			majoritySize = len(members)
		}
		classes = append(classes, class)
	}
	sort.Ints(classes)

	balanced := make([]transform.Sample, 0, majoritySize*len(classes))
	for _, class := range classes {
		members := classSamples[class]
		for _, idx := range members {
			balanced = append(balanced, samples[idx])
		}

		for i := len(members); i < majoritySize; i++ {
			original := samples[members[rng.Intn(len(members))]]
			augmented, err := noise.Apply(original)
			if err != nil {
				return nil, fmt.Errorf("augmenting class %d: %w", class, err)
			}
			balanced = append(balanced, augmented)
		}
	}

	return balanced, nil
}

// Counts returns the number of samples per class index.
func Counts(samples []transform.Sample) (map[int]int, error) {
	counts := make(map[int]int)
	for i, s := range samples {
		class, err := transform.ClassIndex(s.Label)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		counts[class]++
	}
	return counts, nil
}
