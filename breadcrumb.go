package main

// Crumb is one step of the breadcrumb trail
type Crumb struct {
	Label   string
	Href    string
	Current bool
}

// rootCrumbLabel names the root of the trail
const rootCrumbLabel = "Home"

// Breadcrumbs returns the trail from the root to path; the last crumb is current
func Breadcrumbs(segments []string) []Crumb {
	crumbs := []Crumb{{Label: rootCrumbLabel, Href: "/", Current: len(segments) == 0}}
	for i, segment := range segments {
		crumbs = append(crumbs, Crumb{
			Label:   segment,
			Href:    LocationOf(segments[:i+1]),
			Current: i == len(segments)-1,
		})
	}
	return crumbs
}
