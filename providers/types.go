package providers

// Profile identifiziert ein SINTA-Dozentenprofil, von dem Listing-Seiten
// über view-Parameter abgeleitet werden.
type Profile struct {
	LecturerName string
	SintaID      string
	ProfileURL   string
}

// StopReason dokumentiert, warum die Pagination beendet wurde. Eine leere
// Seite und ein Fetch-Fehler stoppen beide, sind aber nicht dasselbe.
type StopReason string

const (
	StopEmptyPage  StopReason = "empty_page"
	StopFetchError StopReason = "fetch_error"
	StopPageCap    StopReason = "page_cap"
)

// FetchStats zählt mit, was ein Scrape-Durchlauf auf der Leitung getan hat.
type FetchStats struct {
	PagesFetched int
	FetchErrors  int
	Stopped      StopReason
}

// Add summiert andere Statistiken auf (für Aggregation über Profile).
func (s *FetchStats) Add(other *FetchStats) {
	if other == nil {
		return
	}
	s.PagesFetched += other.PagesFetched
	s.FetchErrors += other.FetchErrors
}

// PaperRecord ist der getypte Zwischendatensatz einer Publikation zwischen
// Extraktion und Reconciler. Source taggt die Herkunft.
type PaperRecord struct {
	Source string

	Title           string
	PublicationLink string
	Journal         string
	Accred          string
	Creator         string
	University      string

	DOI           *string
	Year          *int
	CitationCount *int

	// AuthorOrder der Profilinhaberin; nil wenn weder geliefert noch
	// herleitbar.
	AuthorOrder *int
	Authors     []string
}

// GrantRecord ist der getypte Zwischendatensatz eines Forschungsprojekts.
type GrantRecord struct {
	Title      string
	LeaderName string
	FundType   string
	Personils  []string

	Year       *int
	Fund       *float64
	FundStatus string
	FundSource string
}

// AuthorRecord ist ein Eintrag aus dem Autoren-Verzeichnis eines
// Departments. Die json-Tags bestimmen die Feldnamen des
// raw_profile-Schnappschusses.
type AuthorRecord struct {
	LecturerName    string `json:"lecturer_name"`
	SintaID         string `json:"sinta_id"`
	SintaProfileURL string `json:"sinta_profile_url"`

	SintaScore3Yr   string `json:"sinta_score_3yr"`
	SintaScoreTotal string `json:"sinta_score_total"`
	AffilScore3Yr   string `json:"affil_score_3yr"`
	AffilScoreTotal string `json:"affil_score_total"`
}

// Result bündelt, was ein Provider für ein Profil geliefert hat.
type Result struct {
	Papers []PaperRecord
	Grants []GrantRecord
	Stats  FetchStats
}
