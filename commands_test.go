package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/9seconds/geotable/geotable"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"
)

const testSource = `16777216,16777471,AU,Australia,Queensland,Brisbane,-27.467540,153.028090,4000,+10:00
1566465792,1566466047,RU,Russia,Moscow,Moscow,55.7558000,37.6173,101000,+03:00
`

type CommandsTestSuite struct {
	suite.Suite

	fs       afero.Fs
	out      *bytes.Buffer
	loader   *geotable.Loader
	table    *geotable.Table
	resolver *geotable.Resolver
}

func (suite *CommandsTestSuite) SetupTest() {
	suite.fs = afero.NewMemMapFs()
	suite.out = &bytes.Buffer{}

	suite.NoError(afero.WriteFile(suite.fs, "/data/data.csv", []byte(testSource), 0644))

	conf := &config{
		SourcePath:   "/data/data.csv",
		SnapshotPath: "/cache/data.snapshot",
	}
	suite.loader = makeLoader(suite.fs, conf, nil)

	table, err := suite.loader.LoadText()

	suite.NoError(err)

	resolver, err := makeResolver(table, conf)

	suite.NoError(err)

	suite.table = table
	suite.resolver = resolver
}

func (suite *CommandsTestSuite) TearDownTest() {
	suite.resolver.Shutdown()
}

func (suite *CommandsTestSuite) decodeLines() []geotable.QueryResult {
	rv := []geotable.QueryResult{}
	decoder := json.NewDecoder(suite.out)

	for decoder.More() {
		value := struct {
			IP   string              `json:"ip"`
			Info *geotable.RangeInfo `json:"info"`
		}{}

		suite.NoError(decoder.Decode(&value))

		rv = append(rv, geotable.QueryResult{IP: value.IP, Info: value.Info})
	}

	return rv
}

func (suite *CommandsTestSuite) TestLookup() {
	err := runLookup(context.Background(), suite.resolver,
		[]string{"93.94.95.96", "-", "10.0.0.1"},
		strings.NewReader("1.0.0.1\n\n  1.0.0.2  \n"),
		suite.out)

	suite.NoError(err)

	results := suite.decodeLines()

	suite.Len(results, 4)
	suite.Equal("93.94.95.96", results[0].IP)
	suite.Equal("Moscow", results[0].Info.City)
	suite.Equal("1.0.0.1", results[1].IP)
	suite.Equal("Brisbane", results[1].Info.City)
	suite.Equal("1.0.0.2", results[2].IP)
	suite.Equal("10.0.0.1", results[3].IP)
	suite.Nil(results[3].Info)
}

func (suite *CommandsTestSuite) TestLookupError() {
	suite.NoError(runLookup(context.Background(), suite.resolver, []string{"10.0.0.1"}, nil, suite.out))
	suite.JSONEq(`{
        "ip": "10.0.0.1",
        "error": {"message": "IP address not found", "context": "10.0.0.1"}
    }`, suite.out.String())
}

func (suite *CommandsTestSuite) TestSnapshot() {
	suite.NoError(runSnapshot(suite.fs, suite.loader, suite.out))
	suite.Contains(suite.out.String(), "Snapshot /cache/data.snapshot is written: 2 ranges")

	table, err := suite.loader.LoadSnapshot()

	suite.NoError(err)
	suite.True(suite.table.Equal(table))
}

func (suite *CommandsTestSuite) TestSnapshotNoSource() {
	suite.NoError(suite.fs.Remove("/data/data.csv"))
	suite.Error(runSnapshot(suite.fs, suite.loader, suite.out))
}

func (suite *CommandsTestSuite) TestStats() {
	suite.resolver.Resolve("1.0.0.1")

	suite.NoError(runStats(suite.table, suite.resolver, suite.out))

	value := struct {
		Usage struct {
			Origin       string `json:"origin"`
			Entries      int    `json:"entries"`
			SuccessCount int    `json:"success_count"`
		} `json:"usage"`
		FirstRange struct {
			Start string `json:"start"`
		} `json:"first_range"`
		LastRange struct {
			End string `json:"end"`
		} `json:"last_range"`
	}{}

	suite.NoError(json.Unmarshal(suite.out.Bytes(), &value))
	suite.Equal("text", value.Usage.Origin)
	suite.Equal(2, value.Usage.Entries)
	suite.Equal(1, value.Usage.SuccessCount)
	suite.Equal("1.0.0.0", value.FirstRange.Start)
	suite.Equal("93.94.95.255", value.LastRange.End)
}

func TestCommands(t *testing.T) {
	suite.Run(t, &CommandsTestSuite{})
}
