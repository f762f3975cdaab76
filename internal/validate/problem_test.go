package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectProblemType(t *testing.T) {
	tests := []struct {
		name    string
		problem string
		want    ProblemType
	}{
		{
			"inline option markers",
			"Which gas is most abundant in Earth's atmosphere? a) oxygen b) nitrogen c) argon d) carbon dioxide",
			ProblemMultipleChoice,
		},
		{
			"option lines",
			"Pick the best data structure:\na) stack\nb) queue\nc) heap\nd) trie",
			ProblemMultipleChoice,
		},
		{
			"dotted markers",
			"Choose one: A. red B. green C. blue D. yellow",
			ProblemMultipleChoice,
		},
		{
			"calculate keyword",
			"Calculate the total distance travelled after three laps.",
			ProblemMath,
		},
		{
			"trinket trading",
			"If 3 blinkets trade for 2 trinkets, how many trinkets do 9 blinkets buy?",
			ProblemMath,
		},
		{
			"solve for keyword",
			"Solve for x: 2x + 6 = 18",
			ProblemMath,
		},
		{
			"plain question",
			"Explain why the sky appears blue at noon.",
			ProblemGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectProblemType(tt.problem))
		})
	}
}

func TestDetectProblemType_MarkersWinOverKeywords(t *testing.T) {
	problem := "What is the capital of France? a) Paris b) Lyon c) Nice d) Lille"
	assert.Equal(t, ProblemMultipleChoice, DetectProblemType(problem))
}
