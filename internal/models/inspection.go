package models

// InspectionRecord is one normalized row of the inspection status table.
type InspectionRecord struct {
	ReleaseDate string `json:"リリース日"`
	Date        string `json:"date"`
	TestedOn    string `json:"検査日"`
	Inspections int    `json:"検査件数(件)"`
	Positives   int    `json:"陽性者数(人)"`
}
