package random

// Scripted is an RNG that replays fixed values, for reproducing exact
// generator decisions in tests. Once a script runs out, Intn returns 0,
// Float64 returns 0.99 and Shuffle keeps the input order.
type Scripted struct {
	Ints   []int
	Floats []float64
}

func (s *Scripted) Intn(n int) int {
	if len(s.Ints) == 0 {
		return 0
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	if v < 0 {
		v = 0
	}
	if v >= n {
		v = n - 1
	}
	return v
}

func (s *Scripted) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0.99
	}
	v := s.Floats[0]
	s.Floats = s.Floats[1:]
	return v
}

func (s *Scripted) Shuffle(n int, swap func(i, j int)) {}
