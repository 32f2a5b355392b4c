package jellyfin

// Raw wire shapes for the subset of the Jellyfin API this service reads.

type rawUser struct {
	ID       string `json:"Id"`
	Name     string `json:"Name"`
	IsHidden bool   `json:"IsHidden"`
}

type rawItemPage struct {
	Items            []rawItem `json:"Items"`
	TotalRecordCount int       `json:"TotalRecordCount"`
}

type rawItem struct {
	ID                string            `json:"Id"`
	Name              string            `json:"Name"`
	Type              string            `json:"Type"`
	CollectionType    string            `json:"CollectionType,omitempty"`
	ProductionYear    int               `json:"ProductionYear,omitempty"`
	ImageTags         map[string]string `json:"ImageTags,omitempty"`
	BackdropImageTags []string          `json:"BackdropImageTags,omitempty"`
}
