package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimsage/backend/internal/application/services"
	"github.com/claimsage/backend/internal/domain/entities"
)

func TestQueryParserService_Parse_CompactQuery(t *testing.T) {
	parser := services.NewQueryParserService()

	parsed := parser.Parse("46M knee surgery 6-month policy Pune")

	require.NotNil(t, parsed.Age)
	assert.Equal(t, 46, *parsed.Age)
	assert.Equal(t, entities.GenderMale, parsed.Gender)
	assert.Equal(t, "Knee Surgery", parsed.Procedure)
	assert.Equal(t, "Pune", parsed.Location)
	require.NotNil(t, parsed.PolicyDurationMonths)
	assert.Equal(t, 6, *parsed.PolicyDurationMonths)
	assert.Equal(t, "46M knee surgery 6-month policy Pune", parsed.RawQuery)
}

func TestQueryParserService_Parse_WordForms(t *testing.T) {
	parser := services.NewQueryParserService()

	parsed := parser.Parse("60 female heart bypass 2 years policy in Mumbai")

	require.NotNil(t, parsed.Age)
	assert.Equal(t, 60, *parsed.Age)
	assert.Equal(t, entities.GenderFemale, parsed.Gender)
	assert.Equal(t, "Heart Bypass", parsed.Procedure)
	assert.Equal(t, "Mumbai", parsed.Location)
	require.NotNil(t, parsed.PolicyDurationMonths)
	assert.Equal(t, 24, *parsed.PolicyDurationMonths)
}

func TestQueryParserService_Parse_AgePrefix(t *testing.T) {
	parser := services.NewQueryParserService()

	parsed := parser.Parse("knee replacement in new delhi, age: 30")

	require.NotNil(t, parsed.Age)
	assert.Equal(t, 30, *parsed.Age)
	assert.Empty(t, parsed.Gender)
	assert.Equal(t, "Knee Replacement", parsed.Procedure)
	assert.Equal(t, "Delhi", parsed.Location)
	assert.Nil(t, parsed.PolicyDurationMonths)
}

func TestQueryParserService_Parse_CityAliases(t *testing.T) {
	parser := services.NewQueryParserService()

	tests := []struct {
		query string
		want  string
	}{
		{"cataract surgery in new delhi", "Delhi"},
		{"cataract surgery in delhi", "Delhi"},
		{"cataract surgery in bengaluru", "Bangalore"},
		{"cataract surgery in calcutta", "Kolkata"},
		{"cataract surgery somewhere remote", ""},
	}

	for _, tt := range tests {
		parsed := parser.Parse(tt.query)
		assert.Equal(t, tt.want, parsed.Location, "query: %s", tt.query)
	}
}

func TestQueryParserService_Parse_OutOfRangeAge(t *testing.T) {
	parser := services.NewQueryParserService()

	parsed := parser.Parse("200 f knee surgery")

	assert.Nil(t, parsed.Age)
	assert.Equal(t, entities.GenderFemale, parsed.Gender)
	assert.Equal(t, "Knee Surgery", parsed.Procedure)
}

func TestQueryParserService_Parse_DurationUnits(t *testing.T) {
	parser := services.NewQueryParserService()

	tests := []struct {
		query string
		want  int
	}{
		{"policy of 6 months", 6},
		{"6-month policy", 6},
		{"policy for 2 years", 24},
		{"90 days policy", 3},
		{"1 day policy", 1},
		{"12m policy", 12},
		{"3 y policy", 36},
	}

	for _, tt := range tests {
		parsed := parser.Parse(tt.query)
		require.NotNil(t, parsed.PolicyDurationMonths, "query: %s", tt.query)
		assert.Equal(t, tt.want, *parsed.PolicyDurationMonths, "query: %s", tt.query)
	}
}

func TestQueryParserService_Parse_ZeroDurationIgnored(t *testing.T) {
	parser := services.NewQueryParserService()

	parsed := parser.Parse("knee surgery 0 months policy")

	assert.Equal(t, "Knee Surgery", parsed.Procedure)
	assert.Nil(t, parsed.PolicyDurationMonths)
}

func TestQueryParserService_Parse_AbsurdDurationIgnored(t *testing.T) {
	parser := services.NewQueryParserService()

	parsed := parser.Parse("knee surgery 99999999999999999999 months policy")

	assert.Equal(t, "Knee Surgery", parsed.Procedure)
	assert.Nil(t, parsed.PolicyDurationMonths)
}

func TestQueryParserService_Parse_LongestProcedureSpanWins(t *testing.T) {
	parser := services.NewQueryParserService()

	parsed := parser.Parse("hip replacement surgery consultation")

	assert.Equal(t, "Hip Replacement Surgery", parsed.Procedure)
}

func TestQueryParserService_Parse_EmptyQuery(t *testing.T) {
	parser := services.NewQueryParserService()

	parsed := parser.Parse("")

	assert.Equal(t, "", parsed.RawQuery)
	assert.Nil(t, parsed.Age)
	assert.Empty(t, parsed.Gender)
	assert.Empty(t, parsed.Procedure)
	assert.Empty(t, parsed.Location)
	assert.Nil(t, parsed.PolicyDurationMonths)
}

func TestQueryParserService_Parse_NoExtractableFields(t *testing.T) {
	parser := services.NewQueryParserService()

	parsed := parser.Parse("hello there general question")

	assert.Equal(t, "hello there general question", parsed.RawQuery)
	assert.Nil(t, parsed.Age)
	assert.Empty(t, parsed.Procedure)
	assert.Nil(t, parsed.PolicyDurationMonths)
}
