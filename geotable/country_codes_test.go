package geotable_test

import (
	"testing"

	"github.com/9seconds/geotable/geotable"
	"github.com/stretchr/testify/suite"
)

type CountryCodesTestSuite struct {
	suite.Suite
}

func (suite *CountryCodesTestSuite) TestNormalize() {
	testData := map[string]string{
		"ru":   "RU",
		" Ru ": "RU",
		"ZZ":   "",
		"--":   "",
		"EU":   "",
		"YU":   "CS",
		"uk":   "GB",
		"FX":   "FR",
		"RUS":  "",
		"":     "",
	}

	for k, v := range testData {
		suite.Equal(v, geotable.NormalizeAlpha2Code(k), k)
	}
}

func (suite *CountryCodesTestSuite) TestLookup() {
	country, ok := geotable.LookupCountry("uk")

	suite.True(ok)
	suite.Equal("GB", country.Alpha2Code)
	suite.Equal("GBR", country.Alpha3Code)
	suite.Equal("United Kingdom", country.CommonName)

	_, ok = geotable.LookupCountry("QQ")

	suite.False(ok)

	_, ok = geotable.LookupCountry("ZZ")

	suite.False(ok)
}

func TestCountryCodes(t *testing.T) {
	suite.Run(t, &CountryCodesTestSuite{})
}
