package scoring

type gradeStep struct {
	min   float64
	grade string
}

var gradeTable = []gradeStep{
	{90, "A+"},
	{85, "A"},
	{80, "A-"},
	{75, "B+"},
	{70, "B"},
	{65, "B-"},
	{60, "C+"},
	{55, "C"},
	{50, "C-"},
	{45, "D+"},
	{40, "D"},
}

// Grade maps a percentage to its letter grade. Lower bounds are inclusive.
func Grade(percentage float64) string {
	for _, s := range gradeTable {
		if percentage >= s.min {
			return s.grade
		}
	}
	return "F"
}
