package reference

// African sub-regions used to group countries.
const (
	RegionWest     = "West Africa"
	RegionCentral  = "Central Africa"
	RegionEast     = "East Africa"
	RegionSouthern = "Southern Africa"
)

// Country is a malaria-endemic country with headline indicators.
type Country struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Region      string  `json:"region"`
	Population  int64   `json:"population"`
	Incidence   float64 `json:"incidence"`    // cases per 1,000 population at risk
	Mortality   float64 `json:"mortality"`    // deaths per 100,000 population at risk
	ITNCoverage float64 `json:"itn_coverage"` // percent of households
}

func (c Country) RegionCode() string  { return c.Code }
func (c Country) RegionGroup() string { return c.Region }

// Country metrics accepted by CountryMetric.
const (
	MetricIncidence   = "incidence"
	MetricMortality   = "mortality"
	MetricITNCoverage = "itn_coverage"
	MetricPopulation  = "population"
)

// CountryMetric returns an accessor for a named country metric.
func CountryMetric(name string) (func(Country) float64, bool) {
	switch name {
	case MetricIncidence:
		return func(c Country) float64 { return c.Incidence }, true
	case MetricMortality:
		return func(c Country) float64 { return c.Mortality }, true
	case MetricITNCoverage:
		return func(c Country) float64 { return c.ITNCoverage }, true
	case MetricPopulation:
		return func(c Country) float64 { return float64(c.Population) }, true
	}
	return nil, false
}

var countryRows = []Country{
	{Code: "NG", Name: "Nigeria", Region: RegionWest, Population: 223800000, Incidence: 303.0, Mortality: 82.5, ITNCoverage: 52.0},
	{Code: "CD", Name: "Democratic Republic of the Congo", Region: RegionCentral, Population: 102300000, Incidence: 322.4, Mortality: 78.1, ITNCoverage: 55.0},
	{Code: "UG", Name: "Uganda", Region: RegionEast, Population: 48600000, Incidence: 281.2, Mortality: 37.6, ITNCoverage: 60.0},
	{Code: "MZ", Name: "Mozambique", Region: RegionSouthern, Population: 33900000, Incidence: 305.1, Mortality: 37.0, ITNCoverage: 68.0},
	{Code: "NE", Name: "Niger", Region: RegionWest, Population: 27200000, Incidence: 373.5, Mortality: 95.2, ITNCoverage: 58.0},
	{Code: "BF", Name: "Burkina Faso", Region: RegionWest, Population: 23300000, Incidence: 389.0, Mortality: 86.3, ITNCoverage: 62.0},
	{Code: "ML", Name: "Mali", Region: RegionWest, Population: 23300000, Incidence: 352.7, Mortality: 73.4, ITNCoverage: 70.0},
	{Code: "TZ", Name: "Tanzania", Region: RegionEast, Population: 67400000, Incidence: 110.3, Mortality: 28.4, ITNCoverage: 56.0},
	{Code: "GH", Name: "Ghana", Region: RegionWest, Population: 34100000, Incidence: 162.8, Mortality: 35.1, ITNCoverage: 58.0},
	{Code: "CM", Name: "Cameroon", Region: RegionCentral, Population: 28600000, Incidence: 244.6, Mortality: 48.9, ITNCoverage: 57.0},
	{Code: "AO", Name: "Angola", Region: RegionSouthern, Population: 36700000, Incidence: 232.0, Mortality: 44.2, ITNCoverage: 30.0},
	{Code: "CI", Name: "Cote d'Ivoire", Region: RegionWest, Population: 28900000, Incidence: 284.5, Mortality: 54.0, ITNCoverage: 62.0},
	{Code: "SN", Name: "Senegal", Region: RegionWest, Population: 17800000, Incidence: 48.2, Mortality: 11.3, ITNCoverage: 65.0},
	{Code: "KE", Name: "Kenya", Region: RegionEast, Population: 55100000, Incidence: 70.4, Mortality: 21.0, ITNCoverage: 48.0},
	{Code: "ET", Name: "Ethiopia", Region: RegionEast, Population: 126500000, Incidence: 50.1, Mortality: 5.2, ITNCoverage: 40.0},
}

var countries = NewTable(countryRows)

// Countries returns the country reference table.
func Countries() *Table[Country] { return countries }
