package loadtest

import (
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
)

var certTypes = []string{"professional", "short_program", "workshop", "conference", "student_coordinator"}

// generate builds n unique outcomes and interleaves resubmissions of earlier
// feedback ids so that about dupPct percent of the stream are duplicates.
func generate(n, dupPct int, seed uint64) []Outcome {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	stream := make([]Outcome, 0, n+n*dupPct/100)
	for i := 0; i < n; i++ {
		o := Outcome{
			FeedbackID: uuid.NewString(),
			ID:         "lt-" + strconv.Itoa(i),
			CertType:   certTypes[rng.IntN(len(certTypes))],
			Placed:     "no",
			Salary:     "0",
			Days:       strconv.Itoa(10 + rng.IntN(171)),
		}
		if rng.IntN(2) == 0 {
			o.Placed = "yes"
			o.Salary = strconv.Itoa(250_000 + 10_000*rng.IntN(96))
		}
		stream = append(stream, o)
		if dupPct > 0 && rng.IntN(100) < dupPct {
			stream = append(stream, stream[rng.IntN(len(stream))])
		}
	}
	return stream
}
