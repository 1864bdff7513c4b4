package synthetic

import (
	"fmt"
	"time"

	"github.com/nmep/dashboard/internal/domain/reference"
)

// Thresholds used by the record generators.
const (
	MicroscopyShare    = 0.20
	SevereShare        = 0.08
	UnderFiveShare     = 0.30
	PPMVPositivity     = 0.43
	FacilityReporting  = 0.85
	FacilityTimeliness = 0.75
)

// CaseRecord is one line-listed malaria case.
type CaseRecord struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	StateCode string    `json:"state_code"`
	LGA       string    `json:"lga"`
	Age       int       `json:"age"`
	Sex       string    `json:"sex"`
	Pregnant  bool      `json:"pregnant"`
	Diagnosis string    `json:"diagnosis"`
	Species   string    `json:"species"`
	Severity  string    `json:"severity"`
	Treatment string    `json:"treatment"`
	Outcome   string    `json:"outcome"`
}

var speciesMix = []weighted{
	{"P. falciparum", 0.92},
	{"P. malariae", 0.05},
	{"P. ovale", 0.03},
}

var actMix = []weighted{
	{"Artemether-lumefantrine", 0.70},
	{"Artesunate-amodiaquine", 0.25},
	{"Dihydroartemisinin-piperaquine", 0.05},
}

// CaseRecords returns n case records dated within the 90 days before asOf.
func CaseRecords(src *Source, n int, asOf time.Time) []CaseRecord {
	if n <= 0 {
		return []CaseRecord{}
	}
	states := reference.States().All()
	out := make([]CaseRecord, n)
	for i := range out {
		st := Pick(src, states)
		r := CaseRecord{
			ID:        src.nextID("CASE"),
			Date:      asOf.AddDate(0, 0, -src.Intn(90)).Truncate(24 * time.Hour),
			StateCode: st.Code,
			LGA:       Pick(src, st.LGAs),
			Sex:       "F",
			Diagnosis: "RDT",
			Species:   src.draw(speciesMix),
			Severity:  "uncomplicated",
		}
		if src.Chance(UnderFiveShare) {
			r.Age = src.Intn(5)
		} else {
			r.Age = src.IntBetween(5, 79)
		}
		if src.Chance(0.5) {
			r.Sex = "M"
		}
		if r.Sex == "F" && r.Age >= 15 && r.Age <= 45 {
			r.Pregnant = src.Chance(0.10)
		}
		if src.Chance(MicroscopyShare) {
			r.Diagnosis = "Microscopy"
		}
		if src.Chance(SevereShare) {
			r.Severity = "severe"
			r.Treatment = "Injectable artesunate"
			switch {
			case src.Chance(0.04):
				r.Outcome = "died"
			case src.Chance(0.20):
				r.Outcome = "referred"
			default:
				r.Outcome = "recovered"
			}
		} else {
			r.Treatment = src.draw(actMix)
			r.Outcome = "recovered"
			if src.Chance(0.03) {
				r.Outcome = "referred"
			}
		}
		out[i] = r
	}
	return out
}

// FacilityReport is one facility's monthly HMIS submission.
type FacilityReport struct {
	FacilityID   string `json:"facility_id"`
	FacilityName string `json:"facility_name"`
	FacilityType string `json:"facility_type"`
	StateCode    string `json:"state_code"`
	LGA          string `json:"lga"`
	Period       string `json:"period"`
	Reported     bool   `json:"reported"`
	OnTime       bool   `json:"on_time"`
	Tested       int    `json:"tested"`
	Confirmed    int    `json:"confirmed"`
}

var facilityTypes = []weighted{
	{"Primary Health Centre", 0.70},
	{"General Hospital", 0.20},
	{"Private Clinic", 0.10},
}

// FacilityReports returns n reports for the month before asOf.
func FacilityReports(src *Source, n int, asOf time.Time) []FacilityReport {
	if n <= 0 {
		return []FacilityReport{}
	}
	period := Label(Monthly, periodStart(Monthly, asOf).AddDate(0, -1, 0))
	states := reference.States().All()
	out := make([]FacilityReport, n)
	for i := range out {
		st := Pick(src, states)
		lga := Pick(src, st.LGAs)
		ftype := src.draw(facilityTypes)
		r := FacilityReport{
			FacilityID:   src.nextID("FAC"),
			FacilityType: ftype,
			StateCode:    st.Code,
			LGA:          lga,
			Period:       period,
			Reported:     src.Chance(FacilityReporting),
		}
		r.FacilityName = fmt.Sprintf("%s %s %d", lga, ftype, i+1)
		if r.Reported {
			r.OnTime = src.Chance(FacilityTimeliness)
			r.Tested = src.IntBetween(50, 800)
			r.Confirmed = int(float64(r.Tested) * src.Between(0.3, 0.6))
		}
		out[i] = r
	}
	return out
}

// PPMVRecord is one patent and proprietary medicine vendor.
type PPMVRecord struct {
	VendorID   string `json:"vendor_id"`
	StateCode  string `json:"state_code"`
	LGA        string `json:"lga"`
	Registered bool   `json:"registered"`
	RDTTrained bool   `json:"rdt_trained"`
	Tested     int    `json:"tested"`
	Positive   int    `json:"positive"`
	ACTInStock bool   `json:"act_in_stock"`
}

// PPMVRegistry returns n vendor rows. Each test is positive with probability
// PPMVPositivity.
func PPMVRegistry(src *Source, n int) []PPMVRecord {
	if n <= 0 {
		return []PPMVRecord{}
	}
	states := reference.States().All()
	out := make([]PPMVRecord, n)
	for i := range out {
		st := Pick(src, states)
		r := PPMVRecord{
			VendorID:   src.nextID("PPMV"),
			StateCode:  st.Code,
			LGA:        Pick(src, st.LGAs),
			Registered: src.Chance(0.65),
			RDTTrained: src.Chance(0.40),
			ACTInStock: src.Chance(0.70),
		}
		if r.RDTTrained {
			r.Tested = src.IntBetween(20, 200)
		} else {
			r.Tested = src.Intn(41)
		}
		for j := 0; j < r.Tested; j++ {
			if src.Chance(PPMVPositivity) {
				r.Positive++
			}
		}
		out[i] = r
	}
	return out
}
