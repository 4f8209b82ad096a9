package timecalc

// DailyHours is the budget split across the projects of a day.
const DailyHours = 6

// Allocation maps a project name to its whole hours for one day.
type Allocation map[string]int

// AllocateHours splits DailyHours across projects. The first 6 mod n
// projects, in the given order, receive the extra hour.
func AllocateHours(projects []string) Allocation {
	hours := Allocation{}
	n := len(projects)
	if n == 0 {
		return hours
	}
	base := DailyHours / n
	remainder := DailyHours % n
	for i, p := range projects {
		h := base
		if i < remainder {
			h++
		}
		hours[p] = h
	}
	return hours
}

// Total sums the allocation.
func (a Allocation) Total() int {
	var sum int
	for _, h := range a {
		sum += h
	}
	return sum
}
