package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs([]string{"Event A", "Day1"})

	assert.Equal(t, []Crumb{
		{Label: "Home", Href: "/"},
		{Label: "Event A", Href: "/Event%20A"},
		{Label: "Day1", Href: "/Event%20A/Day1", Current: true},
	}, crumbs)
}

func TestBreadcrumbsRoot(t *testing.T) {
	assert.Equal(t, []Crumb{{Label: "Home", Href: "/", Current: true}}, Breadcrumbs(nil))
}
