package geotable_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/9seconds/geotable/geotable"
	"github.com/stretchr/testify/suite"
)

type ResolverTestSuite struct {
	suite.Suite

	r *geotable.Resolver
}

func (suite *ResolverTestSuite) SetupTest() {
	table := geotable.NewTable([]geotable.AddressRange{
		{
			Start: 16777216,
			End:   16777471,
			Info:  geotable.RangeInfo{CountryCode: "AU", Country: "Australia"},
		},
		{
			Start: 1566465792,
			End:   1566466047,
			Info: geotable.RangeInfo{
				CountryCode: "RU",
				Country:     "Russia",
				City:        "Moscow",
				Timezone:    "Europe/Moscow",
			},
		},
		{
			Start: 1566466048,
			End:   1566466303,
			Info:  geotable.RangeInfo{CountryCode: "ZZ"},
		},
	})

	r, err := geotable.NewResolver(table, geotable.ResolverOptions{WithCIDRs: true})

	suite.NoError(err)

	suite.r = r
}

func (suite *ResolverTestSuite) TearDownTest() {
	suite.r.Shutdown()
}

func (suite *ResolverTestSuite) TestResolveOk() {
	res := suite.r.Resolve("93.94.95.96")

	suite.True(res.OK())
	suite.Nil(res.Error)
	suite.Equal("93.94.95.96", res.IP)
	suite.Equal("Moscow", res.Info.City)
	suite.Equal("93.94.95.0", res.Range.Start)
	suite.Equal("93.94.95.255", res.Range.End)
	suite.Equal([]string{"93.94.95.0/24"}, res.Range.CIDRs)
	suite.Equal("RUS", res.Country.Alpha3Code)
	suite.Equal("Russia", res.Country.CommonName)
}

func (suite *ResolverTestSuite) TestResolveUnknownCountry() {
	res := suite.r.Resolve("93.94.96.1")

	suite.True(res.OK())
	suite.Nil(res.Country)
	suite.Equal("ZZ", res.Info.CountryCode)
}

func (suite *ResolverTestSuite) TestResolveNotFound() {
	res := suite.r.Resolve("10.0.0.1")

	suite.False(res.OK())
	suite.Nil(res.Info)
	suite.Nil(res.Range)
	suite.True(errors.Is(res.Error, geotable.ErrNotFound))
	suite.Equal("10.0.0.1", res.Error.Query)
}

func (suite *ResolverTestSuite) TestResolveInvalid() {
	for _, v := range []string{"", "1.2.3", "a.b.c.d", "1.2.3.4.5"} {
		res := suite.r.Resolve(v)

		suite.False(res.OK(), v)
		suite.True(errors.Is(res.Error, geotable.ErrInvalidFormat), v)
	}
}

func (suite *ResolverTestSuite) TestLookup() {
	info, err := suite.r.Lookup("1.0.0.1")

	suite.NoError(err)
	suite.Equal("Australia", info.Country)

	_, err = suite.r.Lookup("1.0.1.0")

	suite.True(errors.Is(err, geotable.ErrNotFound))

	_, err = suite.r.Lookup("1.0.1")

	suite.True(errors.Is(err, geotable.ErrInvalidFormat))
}

func (suite *ResolverTestSuite) TestResolveAll() {
	queries := make([]string, 0, 100)

	for i := 0; i < 100; i++ {
		queries = append(queries, fmt.Sprintf("1.0.0.%d", i))
	}

	queries = append(queries, "10.0.0.1", "93.94.95.96")

	results, err := suite.r.ResolveAll(context.Background(), queries)

	suite.NoError(err)
	suite.Len(results, len(queries))

	for i, v := range queries {
		suite.Equal(v, results[i].IP)
	}

	suite.True(results[0].OK())
	suite.False(results[100].OK())
	suite.Equal("RU", results[101].Info.CountryCode)
}

func (suite *ResolverTestSuite) TestResolveAllClosedContext() {
	ctx, cancel := context.WithCancel(context.Background())

	cancel()

	results, err := suite.r.ResolveAll(ctx, []string{"1.0.0.1", "1.0.0.2"})

	suite.NoError(err)
	suite.Empty(results)
}

func (suite *ResolverTestSuite) TestShutdown() {
	suite.r.Shutdown()

	_, err := suite.r.ResolveAll(context.Background(), []string{"1.0.0.1"})

	suite.True(errors.Is(err, geotable.ErrResolverShutdown))
	suite.True(suite.r.Resolve("1.0.0.1").OK())
}

func (suite *ResolverTestSuite) TestUsageStats() {
	suite.r.Resolve("1.0.0.1")
	suite.r.Resolve("1.0.0.2")
	suite.r.Resolve("10.0.0.1")
	suite.r.Resolve("localhost")

	data, err := json.Marshal(suite.r.UsageStats())

	suite.NoError(err)

	parsed := struct {
		Entries       int    `json:"entries"`
		SuccessCount  uint64 `json:"success_count"`
		NotFoundCount uint64 `json:"not_found_count"`
		InvalidCount  uint64 `json:"invalid_count"`
		LastUsed      int64  `json:"last_used"`
	}{}

	suite.NoError(json.Unmarshal(data, &parsed))
	suite.Equal(3, parsed.Entries)
	suite.EqualValues(2, parsed.SuccessCount)
	suite.EqualValues(1, parsed.NotFoundCount)
	suite.EqualValues(1, parsed.InvalidCount)
	suite.NotZero(parsed.LastUsed)
}

func (suite *ResolverTestSuite) TestStrict() {
	table := geotable.NewTable([]geotable.AddressRange{
		{Start: 0, End: 4294967295},
	})

	lenient, err := geotable.NewResolver(table, geotable.ResolverOptions{})

	suite.NoError(err)

	defer lenient.Shutdown()

	strict, err := geotable.NewResolver(table, geotable.ResolverOptions{Strict: true})

	suite.NoError(err)

	defer strict.Shutdown()

	suite.True(lenient.Resolve("1.2.3.300").OK())
	suite.True(errors.Is(strict.Resolve("1.2.3.300").Error, geotable.ErrInvalidFormat))
	suite.True(strict.Resolve("1.2.3.255").OK())
}

func TestResolver(t *testing.T) {
	suite.Run(t, &ResolverTestSuite{})
}

type CachingQuerierTestSuite struct {
	suite.Suite

	baseMock *QuerierMock
	q        geotable.Querier
}

func (suite *CachingQuerierTestSuite) SetupTest() {
	suite.baseMock = &QuerierMock{}

	q, err := geotable.NewCachingQuerier(suite.baseMock, 100, time.Minute)

	suite.NoError(err)

	suite.q = q
}

func (suite *CachingQuerierTestSuite) TearDownTest() {
	suite.q.(io.Closer).Close() // nolint: errcheck
	suite.baseMock.AssertExpectations(suite.T())
}

func (suite *CachingQuerierTestSuite) TestCached() {
	suite.baseMock.
		On("Resolve", "1.1.1.1").
		Return(geotable.QueryResult{IP: "1.1.1.1", Info: &geotable.RangeInfo{City: "Sydney"}}).
		Once()

	res := suite.q.Resolve("1.1.1.1")

	suite.Equal("Sydney", res.Info.City)

	time.Sleep(100 * time.Millisecond)

	res = suite.q.Resolve("1.1.1.1")

	suite.Equal("Sydney", res.Info.City)
}

func (suite *CachingQuerierTestSuite) TestDifferentKeys() {
	suite.baseMock.
		On("Resolve", "1.1.1.1").
		Return(geotable.QueryResult{IP: "1.1.1.1"}).
		Once()
	suite.baseMock.
		On("Resolve", "8.8.8.8").
		Return(geotable.QueryResult{IP: "8.8.8.8"}).
		Once()

	suite.Equal("1.1.1.1", suite.q.Resolve("1.1.1.1").IP)
	suite.Equal("8.8.8.8", suite.q.Resolve("8.8.8.8").IP)
}

func TestCachingQuerier(t *testing.T) {
	suite.Run(t, &CachingQuerierTestSuite{})
}
