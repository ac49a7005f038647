package notice

// Link is a single hyperlink reference in a response.
type Link struct {
	Href string `json:"href"`
}

// Links groups the hyperlinks attached to a notice.
type Links struct {
	Self      *Link `json:"self,omitempty"`
	Images    *Link `json:"images,omitempty"`
	Thumbnail *Link `json:"thumbnail,omitempty"`
}

// Notice is one entry of a red notice search result.
type Notice struct {
	Forename      string   `json:"forename"`
	DateOfBirth   string   `json:"date_of_birth"`
	EntityID      string   `json:"entity_id"`
	Nationalities []string `json:"nationalities"`
	Name          string   `json:"name"`
	Links         Links    `json:"_links"`
}

// Page is the envelope returned by the search endpoint.
type Page struct {
	Total    int `json:"total"`
	Embedded struct {
		Notices []*Notice `json:"notices"`
	} `json:"_embedded"`
	Links PageLinks `json:"_links"`
}

// PageLinks holds the navigation links of a search page.
type PageLinks struct {
	Self  *Link `json:"self,omitempty"`
	First *Link `json:"first,omitempty"`
	Next  *Link `json:"next,omitempty"`
	Last  *Link `json:"last,omitempty"`
}

// Notices returns the embedded notice list, never nil.
func (p *Page) Notices() []*Notice {
	if p == nil || p.Embedded.Notices == nil {
		return []*Notice{}
	}
	return p.Embedded.Notices
}

// Warrant is an arrest warrant listed on a notice detail.
type Warrant struct {
	Charge            string `json:"charge"`
	IssuingCountryID  string `json:"issuing_country_id"`
	ChargeTranslation string `json:"charge_translation"`
}

// Detail is the full record behind a notice's self link.
type Detail struct {
	EntityID            string    `json:"entity_id"`
	Forename            string    `json:"forename"`
	Name                string    `json:"name"`
	DateOfBirth         string    `json:"date_of_birth"`
	SexID               string    `json:"sex_id"`
	PlaceOfBirth        string    `json:"place_of_birth"`
	CountryOfBirthID    string    `json:"country_of_birth_id"`
	Nationalities       []string  `json:"nationalities"`
	Height              float64   `json:"height"`
	Weight              float64   `json:"weight"`
	EyesColorsID        []string  `json:"eyes_colors_id"`
	HairsID             []string  `json:"hairs_id"`
	DistinguishingMarks string    `json:"distinguishing_marks"`
	LanguagesSpokenIDs  []string  `json:"languages_spoken_ids"`
	ArrestWarrants      []Warrant `json:"arrest_warrants"`
	Links               Links     `json:"_links"`
}

// Image is a single picture attached to a notice.
type Image struct {
	PictureID string `json:"picture_id"`
	Links     struct {
		Self *Link `json:"self,omitempty"`
	} `json:"_links"`
}

// URL returns the picture location, or "" if the API omitted it.
func (i Image) URL() string {
	if i.Links.Self == nil {
		return ""
	}
	return i.Links.Self.Href
}

// ImagePage is the envelope returned by a notice's images link.
type ImagePage struct {
	Embedded struct {
		Images []Image `json:"images"`
	} `json:"_embedded"`
}
