package qr

// Penalty weights from ISO/IEC 18004, section 7.8.3.
const (
	penaltyRun     = 3  // N1, plus one per module beyond five
	penaltyBlock   = 3  // N2
	penaltyFinder  = 40 // N3
	penaltyBalance = 10 // N4, per 5% deviation from half dark
)

var finderLike = [...][11]bool{
	{true, false, true, true, true, false, true, false, false, false, false},
	{false, false, false, false, true, false, true, true, true, false, true},
}

// penalty scores the symbol; lower scores are easier to scan.
func (s *Symbol) penalty() int {
	score := 0
	for i := 0; i < s.Size; i++ {
		score += s.runPenalty(i, true) + s.runPenalty(i, false)
	}

	for y := 0; y < s.Size-1; y++ {
		for x := 0; x < s.Size-1; x++ {
			c := s.Black(x, y)
			if c == s.Black(x+1, y) && c == s.Black(x, y+1) && c == s.Black(x+1, y+1) {
				score += penaltyBlock
			}
		}
	}

	for i := 0; i < s.Size; i++ {
		for j := 0; j+len(finderLike[0]) <= s.Size; j++ {
			for _, pattern := range finderLike {
				if s.matches(pattern[:], i, j, true) {
					score += penaltyFinder
				}
				if s.matches(pattern[:], i, j, false) {
					score += penaltyFinder
				}
			}
		}
	}

	dark := 0
	for _, m := range s.modules {
		if m {
			dark++
		}
	}
	deviation := dark*100/len(s.modules) - 50
	if deviation < 0 {
		deviation = -deviation
	}
	score += deviation / 5 * penaltyBalance

	return score
}

// at reads line i at position j, walking a row when horizontal is set and a
// column otherwise.
func (s *Symbol) at(i, j int, horizontal bool) bool {
	if horizontal {
		return s.Black(j, i)
	}
	return s.Black(i, j)
}

func (s *Symbol) runPenalty(i int, horizontal bool) int {
	score := 0
	run := 1
	for j := 1; j <= s.Size; j++ {
		if j < s.Size && s.at(i, j, horizontal) == s.at(i, j-1, horizontal) {
			run++
			continue
		}
		if run >= 5 {
			score += penaltyRun + run - 5
		}
		run = 1
	}
	return score
}

func (s *Symbol) matches(pattern []bool, i, j int, horizontal bool) bool {
	for k, want := range pattern {
		if s.at(i, j+k, horizontal) != want {
			return false
		}
	}
	return true
}
