package geotable_test

import (
	"time"

	"github.com/9seconds/geotable/geotable"
	"github.com/stretchr/testify/mock"
)

const testSource = `0,16777215,A,Alpha,ProvA,CityA,1.5000,-2.25,00001,UTC
16777216,33554431,B,Beta,ProvB,CityB,55.7558000,37.6173,,Europe/Moscow
`

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) LoadInfo(origin geotable.Origin, path string, entries int, elapsed time.Duration) {
	m.Called(origin, path, entries, elapsed)
}

func (m *LoggerMock) RecordSkipped(path string, line int, reason string) {
	m.Called(path, line, reason)
}

func (m *LoggerMock) SnapshotError(path string, err error) {
	m.Called(path, err)
}

type QuerierMock struct {
	mock.Mock
}

func (m *QuerierMock) Resolve(query string) geotable.QueryResult {
	return m.Called(query).Get(0).(geotable.QueryResult)
}

func makeTestTable() *geotable.Table {
	return geotable.NewTable([]geotable.AddressRange{
		{
			Start: 0,
			End:   16777215,
			Info:  geotable.RangeInfo{CountryCode: "A", Country: "Alpha"},
		},
		{
			Start: 16777216,
			End:   33554431,
			Info:  geotable.RangeInfo{CountryCode: "B", Country: "Beta"},
		},
	})
}
