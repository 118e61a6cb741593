package model

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

type ModelMetrics struct {
	Accuracy        float64
	ConfusionMatrix [][]float64
	ClassPrecision  []float64
	ClassRecall     []float64
	F1Scores        []float64

	Samples []int
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func (m ModelMetrics) MacroF1() float64 {
	return mean(m.F1Scores)
}

func (m ModelMetrics) Write(w io.Writer) error {
	numClasses := len(m.ConfusionMatrix)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Confusion Matrix")
	header := table.Row{""}
	for j := range numClasses {
		header = append(header, fmt.Sprintf("CLASS %d", j))
	}
	t.AppendHeader(header)
	for i := range numClasses {
		row := table.Row{fmt.Sprintf("CLASS %d", i)}
		for j := range numClasses {
			if m.Samples[i] == 0 {
				row = append(row, "")
			} else {
				row = append(row, fmt.Sprintf("%6.2f%%", m.ConfusionMatrix[i][j]))
			}
		}
		t.AppendRow(row)
	}
	footer := make(table.Row, numClasses+1)
	footer[0] = "ACCURACY"
	footer[numClasses] = fmt.Sprintf("%0.02f%%", m.Accuracy)
	t.AppendFooter(footer)
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Class Metrics")
	t.AppendHeader(table.Row{"CLASS", "PRECISION", "RECALL", "F1 SCORE", "SAMPLES"})
	total := 0
	for i := range numClasses {
		t.AppendRow(table.Row{
			fmt.Sprintf("CLASS %d", i),
			fmt.Sprintf("%6.2f%%", m.ClassPrecision[i]),
			fmt.Sprintf("%6.2f%%", m.ClassRecall[i]),
			fmt.Sprintf("%6.2f%%", m.F1Scores[i]),
			fmt.Sprintf("%d", m.Samples[i]),
		})
		total += m.Samples[i]
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{
		"",
		fmt.Sprintf("%6.2f%%", mean(m.ClassPrecision)),
		fmt.Sprintf("%6.2f%%", mean(m.ClassRecall)),
		fmt.Sprintf("%6.2f%%", m.MacroF1()),
		fmt.Sprintf("%d", total),
	})
	t.Render()

	return nil
}

func calculateMetrics(confusionMatrix [][]int, total int) ModelMetrics {
	numClasses := len(confusionMatrix)
	metrics := ModelMetrics{
		ConfusionMatrix: make([][]float64, numClasses),
		ClassPrecision:  make([]float64, numClasses),
		ClassRecall:     make([]float64, numClasses),
		F1Scores:        make([]float64, numClasses),
		Samples:         make([]int, numClasses),
	}

	// Row percentages
	for i := range numClasses {
		metrics.ConfusionMatrix[i] = make([]float64, numClasses)
		for j := range numClasses {
			metrics.Samples[i] += confusionMatrix[i][j]
		}
		for j := range numClasses {
			if metrics.Samples[i] > 0 {
				metrics.ConfusionMatrix[i][j] = float64(confusionMatrix[i][j]) / float64(metrics.Samples[i]) * 100
			}
		}
	}

	for i := range numClasses {
		truePositives := confusionMatrix[i][i]
		falsePositives := 0
		falseNegatives := 0

		for j := range numClasses {
			if i != j {
				falsePositives += confusionMatrix[j][i]
				falseNegatives += confusionMatrix[i][j]
			}
		}

		if truePositives+falsePositives > 0 {
			metrics.ClassPrecision[i] = float64(truePositives) / float64(truePositives+falsePositives) * 100
		}

		if truePositives+falseNegatives > 0 {
			metrics.ClassRecall[i] = float64(truePositives) / float64(truePositives+falseNegatives) * 100
		}

		if metrics.ClassPrecision[i]+metrics.ClassRecall[i] > 0 {
			metrics.F1Scores[i] = 2 * (metrics.ClassPrecision[i] * metrics.ClassRecall[i]) /
				(metrics.ClassPrecision[i] + metrics.ClassRecall[i])
		}
	}

	correct := 0
	for i := range numClasses {
		correct += confusionMatrix[i][i]
	}
	if total > 0 {
		metrics.Accuracy = float64(correct) / float64(total) * 100
	}

	return metrics
}
