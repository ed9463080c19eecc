package geotable

import (
	"fmt"

	"github.com/EvilSuperstars/go-cidrman"
)

// RangeFieldsCount is a number of positional fields in a text record:
// start, end and 8 fields of RangeInfo.
const RangeFieldsCount = 10

// RangeInfo is a geographic metadata of the address range. All fields are
// opaque text: latitude and longitude are never parsed so precision and
// formatting of the source are kept as is.
type RangeInfo struct {
	CountryCode string `json:"country_code"`
	Country     string `json:"country"`
	Province    string `json:"province"`
	City        string `json:"city"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	ZipCode     string `json:"zip_code"`
	Timezone    string `json:"timezone"`
}

func (r *RangeInfo) fields() [8]*string {
	return [8]*string{
		&r.CountryCode,
		&r.Country,
		&r.Province,
		&r.City,
		&r.Latitude,
		&r.Longitude,
		&r.ZipCode,
		&r.Timezone,
	}
}

// AddressRange is an inclusive interval of addresses which share the same
// metadata.
type AddressRange struct {
	Start uint32
	End   uint32
	Info  RangeInfo
}

func (a AddressRange) Contains(addr uint32) bool {
	return a.Start <= addr && addr <= a.End
}

// CIDRs returns a minimal list of non-overlapping subnets which cover the
// range.
func (a AddressRange) CIDRs() (subnets []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("incorrect range %s-%s: %v", FormatAddr(a.Start), FormatAddr(a.End), rec)
		}
	}()

	subnets, err = cidrman.IPRangeToCIDRs(FormatAddr(a.Start), FormatAddr(a.End))
	if err != nil {
		return nil, fmt.Errorf("cannot build subnets: %w", err)
	}

	return subnets, nil
}

type QueryRange struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	CIDRs []string `json:"cidrs"`
}

type QueryCountry struct {
	Alpha2Code   string `json:"alpha2_code"`
	Alpha3Code   string `json:"alpha3_code"`
	CommonName   string `json:"common_name"`
	OfficialName string `json:"official_name"`
}

// QueryResult is a response on a single textual query. If Error is set,
// other fields except of IP are empty.
type QueryResult struct {
	IP      string        `json:"ip"`
	Info    *RangeInfo    `json:"info,omitempty"`
	Range   *QueryRange   `json:"range,omitempty"`
	Country *QueryCountry `json:"country,omitempty"`
	Error   *QueryError   `json:"error,omitempty"`
}

func (q QueryResult) OK() bool {
	return q.Error == nil && q.Info != nil
}
