package location

import (
	"sort"
	"strings"
)

// City is a serviceable city and the areas collections run in.
type City struct {
	Key          string
	Name         string
	SubLocations []string
}

var catalog = map[string]City{
	"delhi": {
		Key:          "delhi",
		Name:         "Delhi",
		SubLocations: []string{"Delhi", "Gurgaon", "Noida", "Greater Noida", "Gaziabad", "Faridabad"},
	},
	"mumbai": {
		Key:          "mumbai",
		Name:         "Mumbai",
		SubLocations: []string{"Mumbai West", "Mumbai South", "Mumbai Central", "Navi Mumbai", "Thane"},
	},
	"bangalore": {
		Key:          "bangalore",
		Name:         "Bangalore",
		SubLocations: []string{"Bangalore North", "Bangalore South", "Bangalore East", "Bangalore West", "Electronic City"},
	},
	"hyderabad": {
		Key:          "hyderabad",
		Name:         "Hyderabad",
		SubLocations: []string{"Hyderabad Central", "Secunderabad", "Gachibowli", "Kukatpally", "Hitech City"},
	},
	"odisha": {
		Key:          "odisha",
		Name:         "Odisha",
		SubLocations: []string{"Bhubaneswar", "Cuttack", "Puri", "Rourkela", "Berhampur"},
	},
}

// Cities lists the catalog ordered by key.
func Cities() []City {
	out := make([]City, 0, len(catalog))
	for _, c := range catalog {
		out = append(out, cloneCity(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// LookupCity returns the catalog entry for key.
func LookupCity(key string) (City, bool) {
	c, ok := catalog[key]
	if !ok {
		return City{}, false
	}
	return cloneCity(c), true
}

// MatchCity finds the catalog city whose key is contained in the detected
// name, or which contains it, after lower-casing and dropping whitespace.
// An empty name never matches.
func MatchCity(detected string) (City, bool) {
	normalized := normalize(detected)
	if normalized == "" {
		return City{}, false
	}
	for _, c := range Cities() {
		if strings.Contains(normalized, c.Key) || strings.Contains(c.Key, normalized) {
			return c, true
		}
	}
	return City{}, false
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}

func cloneCity(c City) City {
	c.SubLocations = append([]string(nil), c.SubLocations...)
	return c
}
