package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/claimsage/backend/internal/application/services"
)

func TestExtractWaitingPeriods_MonthsWithExplicitPhrase(t *testing.T) {
	// The plain and explicit patterns both match, so the mention is
	// collected twice. Duplicates are kept; callers reduce the pool.
	periods := services.ExtractWaitingPeriods("Knee surgery has a waiting period of 24 months.")

	assert.Equal(t, []int{24, 24}, periods)
}

func TestExtractWaitingPeriods_YearsNormalizeToMonths(t *testing.T) {
	periods := services.ExtractWaitingPeriods("pre-existing conditions are covered after 2 years")

	assert.Equal(t, []int{24}, periods)
}

func TestExtractWaitingPeriods_HyphenatedUnit(t *testing.T) {
	periods := services.ExtractWaitingPeriods("subject to a 2-year exclusion")

	assert.Equal(t, []int{24}, periods)
}

func TestExtractWaitingPeriods_DaysRoundToMonths(t *testing.T) {
	assert.Equal(t, []int{3}, services.ExtractWaitingPeriods("90 days from inception"))
	assert.Equal(t, []int{1}, services.ExtractWaitingPeriods("a 1 day cooling-off window"))
}

func TestExtractWaitingPeriods_NonPositiveDiscarded(t *testing.T) {
	assert.Empty(t, services.ExtractWaitingPeriods("0 months waiting"))
}

func TestExtractWaitingPeriods_NoTemporalMention(t *testing.T) {
	assert.Empty(t, services.ExtractWaitingPeriods("this policy covers hospitalization"))
	assert.Empty(t, services.ExtractWaitingPeriods(""))
}
