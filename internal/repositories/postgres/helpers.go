package postgres

import (
	"sort"
	"strconv"
)

// sortYearsDescending orders catalog years newest first. Years are stored as
// strings ("Unknown" is a legal value), so numeric years sort numerically and
// anything non-numeric sinks to the end.
func sortYearsDescending(years []string) {
	sort.SliceStable(years, func(i, j int) bool {
		yi, erri := strconv.Atoi(years[i])
		yj, errj := strconv.Atoi(years[j])
		switch {
		case erri == nil && errj == nil:
			return yi > yj
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return years[i] < years[j]
		}
	})
}
