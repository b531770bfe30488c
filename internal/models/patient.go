// Package models defines data structures shared by the feed pipelines.
package models

// Missing is the sentinel written for any value the source did not provide.
const Missing = "―"

// PatientRecord is one normalized row of the patient disclosure table. Field
// order is the JSON column order consumed by the dashboard.
type PatientRecord struct {
	ReleaseDate string `json:"リリース日"`
	Residence   string `json:"居住地"`
	Weekday     string `json:"曜日"`
	Age         string `json:"年代"`
	Sex         string `json:"性別"`
	Discharged  string `json:"退院"`
	Date        string `json:"date"`
	ShortDate   string `json:"short_date"`
	Nationality string `json:"国籍"`
	Contact     string `json:"接触状況"`
	Notes       string `json:"備考"`
}

// FillMissing replaces empty categorical fields with the Missing sentinel.
// Applying it twice yields the same record.
func (r *PatientRecord) FillMissing() {
	for _, f := range []*string{
		&r.Residence, &r.Weekday, &r.Age, &r.Sex, &r.Discharged,
		&r.Nationality, &r.Contact, &r.Notes,
	} {
		if *f == "" {
			*f = Missing
		}
	}
}
