package reference

// Geopolitical zones.
const (
	ZoneNorthCentral = "NC"
	ZoneNorthEast    = "NE"
	ZoneNorthWest    = "NW"
	ZoneSouthEast    = "SE"
	ZoneSouthSouth   = "SS"
	ZoneSouthWest    = "SW"
)

// ZoneNames maps zone codes to display names.
var ZoneNames = map[string]string{
	ZoneNorthCentral: "North Central",
	ZoneNorthEast:    "North East",
	ZoneNorthWest:    "North West",
	ZoneSouthEast:    "South East",
	ZoneSouthSouth:   "South South",
	ZoneSouthWest:    "South West",
}

// zoneMultipliers scale state populations into relative malaria burden. The
// northern zones carry the highest parasite prevalence.
var zoneMultipliers = map[string]float64{
	ZoneNorthWest:    1.30,
	ZoneNorthEast:    1.20,
	ZoneNorthCentral: 1.00,
	ZoneSouthSouth:   0.85,
	ZoneSouthEast:    0.80,
	ZoneSouthWest:    0.75,
}

// ZoneMultiplier returns the burden multiplier for a zone.
func ZoneMultiplier(zone string) (float64, bool) {
	m, ok := zoneMultipliers[zone]
	return m, ok
}

// Zones returns the zone codes in display order.
func Zones() []string {
	return []string{ZoneNorthCentral, ZoneNorthEast, ZoneNorthWest, ZoneSouthEast, ZoneSouthSouth, ZoneSouthWest}
}

// State is a first-level administrative division.
type State struct {
	Code             string   `json:"code"`
	Name             string   `json:"name"`
	Zone             string   `json:"zone"`
	Population       int64    `json:"population"`
	BurdenMultiplier float64  `json:"burden_multiplier"`
	LGAs             []string `json:"lgas"`
}

func (s State) RegionCode() string  { return s.Code }
func (s State) RegionGroup() string { return s.Zone }

// Projected 2022 populations.
var stateRows = []State{
	{Code: "AB", Name: "Abia", Zone: ZoneSouthEast, Population: 4143100, BurdenMultiplier: 0.70, LGAs: []string{"Aba North", "Umuahia North", "Ohafia"}},
	{Code: "AD", Name: "Adamawa", Zone: ZoneNorthEast, Population: 4902000, BurdenMultiplier: 1.05, LGAs: []string{"Yola North", "Mubi North", "Numan"}},
	{Code: "AK", Name: "Akwa Ibom", Zone: ZoneSouthSouth, Population: 5482200, BurdenMultiplier: 0.95, LGAs: []string{"Uyo", "Eket", "Ikot Ekpene"}},
	{Code: "AN", Name: "Anambra", Zone: ZoneSouthEast, Population: 5953500, BurdenMultiplier: 0.60, LGAs: []string{"Awka South", "Onitsha North", "Nnewi North"}},
	{Code: "BA", Name: "Bauchi", Zone: ZoneNorthEast, Population: 8308800, BurdenMultiplier: 1.15, LGAs: []string{"Bauchi", "Katagum", "Misau"}},
	{Code: "BY", Name: "Bayelsa", Zone: ZoneSouthSouth, Population: 2537400, BurdenMultiplier: 1.00, LGAs: []string{"Yenagoa", "Brass", "Ogbia"}},
	{Code: "BE", Name: "Benue", Zone: ZoneNorthCentral, Population: 6141300, BurdenMultiplier: 1.10, LGAs: []string{"Makurdi", "Gboko", "Otukpo"}},
	{Code: "BO", Name: "Borno", Zone: ZoneNorthEast, Population: 6111500, BurdenMultiplier: 0.95, LGAs: []string{"Maiduguri", "Jere", "Biu"}},
	{Code: "CR", Name: "Cross River", Zone: ZoneSouthSouth, Population: 4175000, BurdenMultiplier: 0.90, LGAs: []string{"Calabar Municipal", "Ikom", "Ogoja"}},
	{Code: "DE", Name: "Delta", Zone: ZoneSouthSouth, Population: 5663400, BurdenMultiplier: 0.80, LGAs: []string{"Warri South", "Oshimili South", "Ughelli North"}},
	{Code: "EB", Name: "Ebonyi", Zone: ZoneSouthEast, Population: 3242500, BurdenMultiplier: 0.95, LGAs: []string{"Abakaliki", "Afikpo North", "Ezza North"}},
	{Code: "ED", Name: "Edo", Zone: ZoneSouthSouth, Population: 4235600, BurdenMultiplier: 0.75, LGAs: []string{"Oredo", "Egor", "Esan West"}},
	{Code: "EK", Name: "Ekiti", Zone: ZoneSouthWest, Population: 3592200, BurdenMultiplier: 1.05, LGAs: []string{"Ado Ekiti", "Ikere", "Ijero"}},
	{Code: "EN", Name: "Enugu", Zone: ZoneSouthEast, Population: 4690100, BurdenMultiplier: 0.65, LGAs: []string{"Enugu North", "Nsukka", "Udi"}},
	{Code: "FC", Name: "Federal Capital Territory", Zone: ZoneNorthCentral, Population: 3067500, BurdenMultiplier: 0.60, LGAs: []string{"Abuja Municipal", "Bwari", "Gwagwalada"}},
	{Code: "GO", Name: "Gombe", Zone: ZoneNorthEast, Population: 3960100, BurdenMultiplier: 1.00, LGAs: []string{"Gombe", "Billiri", "Kaltungo"}},
	{Code: "IM", Name: "Imo", Zone: ZoneSouthEast, Population: 5459300, BurdenMultiplier: 0.70, LGAs: []string{"Owerri Municipal", "Okigwe", "Orlu"}},
	{Code: "JI", Name: "Jigawa", Zone: ZoneNorthWest, Population: 7499100, BurdenMultiplier: 1.20, LGAs: []string{"Dutse", "Hadejia", "Kazaure"}},
	{Code: "KD", Name: "Kaduna", Zone: ZoneNorthWest, Population: 9032200, BurdenMultiplier: 0.95, LGAs: []string{"Kaduna North", "Zaria", "Kafanchan"}},
	{Code: "KN", Name: "Kano", Zone: ZoneNorthWest, Population: 16076900, BurdenMultiplier: 1.00, LGAs: []string{"Kano Municipal", "Nassarawa", "Gwale"}},
	{Code: "KT", Name: "Katsina", Zone: ZoneNorthWest, Population: 10368500, BurdenMultiplier: 1.15, LGAs: []string{"Katsina", "Daura", "Funtua"}},
	{Code: "KE", Name: "Kebbi", Zone: ZoneNorthWest, Population: 5563900, BurdenMultiplier: 1.45, LGAs: []string{"Birnin Kebbi", "Argungu", "Yauri"}},
	{Code: "KO", Name: "Kogi", Zone: ZoneNorthCentral, Population: 4466800, BurdenMultiplier: 1.00, LGAs: []string{"Lokoja", "Okene", "Idah"}},
	{Code: "KW", Name: "Kwara", Zone: ZoneNorthCentral, Population: 3551000, BurdenMultiplier: 0.90, LGAs: []string{"Ilorin West", "Offa", "Kaiama"}},
	{Code: "LA", Name: "Lagos", Zone: ZoneSouthWest, Population: 15388000, BurdenMultiplier: 0.40, LGAs: []string{"Ikeja", "Alimosho", "Epe"}},
	{Code: "NA", Name: "Nasarawa", Zone: ZoneNorthCentral, Population: 2886000, BurdenMultiplier: 1.05, LGAs: []string{"Lafia", "Keffi", "Akwanga"}},
	{Code: "NI", Name: "Niger", Zone: ZoneNorthCentral, Population: 6783300, BurdenMultiplier: 1.25, LGAs: []string{"Chanchaga", "Bida", "Kontagora"}},
	{Code: "OG", Name: "Ogun", Zone: ZoneSouthWest, Population: 6379500, BurdenMultiplier: 0.85, LGAs: []string{"Abeokuta South", "Ijebu Ode", "Sagamu"}},
	{Code: "ON", Name: "Ondo", Zone: ZoneSouthWest, Population: 5316600, BurdenMultiplier: 1.00, LGAs: []string{"Akure South", "Ondo West", "Owo"}},
	{Code: "OS", Name: "Osun", Zone: ZoneSouthWest, Population: 4705600, BurdenMultiplier: 0.95, LGAs: []string{"Osogbo", "Ife Central", "Ilesa East"}},
	{Code: "OY", Name: "Oyo", Zone: ZoneSouthWest, Population: 7976100, BurdenMultiplier: 0.90, LGAs: []string{"Ibadan North", "Ogbomosho North", "Oyo East"}},
	{Code: "PL", Name: "Plateau", Zone: ZoneNorthCentral, Population: 4717300, BurdenMultiplier: 0.80, LGAs: []string{"Jos North", "Shendam", "Pankshin"}},
	{Code: "RI", Name: "Rivers", Zone: ZoneSouthSouth, Population: 7476800, BurdenMultiplier: 0.75, LGAs: []string{"Port Harcourt", "Obio/Akpor", "Bonny"}},
	{Code: "SO", Name: "Sokoto", Zone: ZoneNorthWest, Population: 6391000, BurdenMultiplier: 1.35, LGAs: []string{"Sokoto North", "Wamako", "Tambuwal"}},
	{Code: "TA", Name: "Taraba", Zone: ZoneNorthEast, Population: 3331900, BurdenMultiplier: 1.10, LGAs: []string{"Jalingo", "Wukari", "Takum"}},
	{Code: "YO", Name: "Yobe", Zone: ZoneNorthEast, Population: 3649700, BurdenMultiplier: 1.00, LGAs: []string{"Damaturu", "Potiskum", "Nguru"}},
	{Code: "ZA", Name: "Zamfara", Zone: ZoneNorthWest, Population: 5317800, BurdenMultiplier: 1.40, LGAs: []string{"Gusau", "Kaura Namoda", "Talata Mafara"}},
}

var states = NewTable(stateRows)

// States returns the state reference table.
func States() *Table[State] { return states }
