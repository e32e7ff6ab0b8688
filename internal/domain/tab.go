package domain

import (
	"fmt"
	"strings"
)

// Tab identifies one of the mutually exclusive panels.
type Tab string

const (
	TabResults   Tab = "results"
	TabFavorites Tab = "favorites"
	TabHistory   Tab = "history"
	TabPhotos    Tab = "photos"
)

// DefaultTab is the panel shown when a session starts.
const DefaultTab = TabResults

// AllTabs lists the panels in display order.
var AllTabs = []Tab{TabResults, TabFavorites, TabHistory, TabPhotos}

// IsValid checks if the tab is one of the known panels
func (t Tab) IsValid() bool {
	switch t {
	case TabResults, TabFavorites, TabHistory, TabPhotos:
		return true
	}
	return false
}

// Collection returns the durable collection backing the panel, if any.
func (t Tab) Collection() (string, bool) {
	switch t {
	case TabFavorites:
		return CollectionFavorites, true
	case TabHistory:
		return CollectionHistory, true
	case TabPhotos:
		return CollectionUploaded, true
	}
	return "", false
}

// ParseTab converts user input into a Tab.
func ParseTab(s string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", NewDomainErrorWithCause(ErrCodeValidation, ErrUnknownTab.Message, fmt.Errorf("no tab named %q", s))
	}
	return t, nil
}
